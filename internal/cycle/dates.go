package cycle

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Normalize strips the time component and pins the calendar date to UTC.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight date.
func ParseDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return parsed, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return Normalize(t).Format(DateLayout)
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// MondayOf returns the Monday on or before t.
func MondayOf(t time.Time) time.Time {
	t = Normalize(t)
	return t.AddDate(0, 0, -WeekdayIndex(t))
}

// WeekdayIndex numbers days from Monday (0) to Sunday (6).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekdayName returns the English day name for t.
func WeekdayName(t time.Time) string {
	return t.Weekday().String()
}

func daysBetween(from, to time.Time) int {
	return int(Normalize(to).Sub(Normalize(from)).Hours() / 24)
}
