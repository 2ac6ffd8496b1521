// Package cycle maps calendar dates onto a fixed-length instructional rotation
// split into two labelled halves (Week A and Week B).
//
// A Calendar is immutable once built and safe for concurrent use.
package cycle

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// DefaultLength is the rotation length used when none is configured.
const DefaultLength = 10

// Label identifies the half of the rotation a cycle day belongs to.
type Label string

const (
	WeekA Label = "A"
	WeekB Label = "B"
)

// ErrConfiguration is the sentinel wrapped by every ConfigurationError.
var ErrConfiguration = errors.New("invalid cycle calendar configuration")

// ConfigurationError reports why a Config cannot back a Calendar.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration.Error(), e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// Config describes the rotation.
type Config struct {
	Length         int
	Anchor         time.Time
	ExclusionDates []time.Time
}

// Result is the cycle position of a single date. CycleDay and Label are nil
// when the date is not instructional.
type Result struct {
	Date     time.Time
	CycleDay *int
	Label    *Label
}

// Instructional reports whether the result carries a cycle position.
func (r Result) Instructional() bool {
	return r.CycleDay != nil
}

// Calendar answers cycle-day queries for a fixed Config.
type Calendar struct {
	length     int
	anchor     time.Time
	exclusions []time.Time
	excluded   map[time.Time]struct{}
}

// New validates cfg and builds a Calendar.
func New(cfg Config) (*Calendar, error) {
	if cfg.Length <= 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("cycle length must be positive, got %d", cfg.Length)}
	}
	if cfg.Anchor.IsZero() {
		return nil, &ConfigurationError{Reason: "cycle start date is not configured"}
	}

	anchor := Normalize(cfg.Anchor)
	excluded := make(map[time.Time]struct{}, len(cfg.ExclusionDates))
	exclusions := make([]time.Time, 0, len(cfg.ExclusionDates))
	for _, d := range cfg.ExclusionDates {
		d = Normalize(d)
		// weekends are already ineligible; keeping them out of the list keeps counting exact
		if IsWeekend(d) {
			continue
		}
		if _, dup := excluded[d]; dup {
			continue
		}
		excluded[d] = struct{}{}
		exclusions = append(exclusions, d)
	}
	sort.Slice(exclusions, func(i, j int) bool { return exclusions[i].Before(exclusions[j]) })

	if IsWeekend(anchor) {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("cycle start date %s falls on a weekend", FormatDate(anchor))}
	}
	if _, ok := excluded[anchor]; ok {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("cycle start date %s is an excluded date", FormatDate(anchor))}
	}

	return &Calendar{
		length:     cfg.Length,
		anchor:     anchor,
		exclusions: exclusions,
		excluded:   excluded,
	}, nil
}

// Length returns the number of cycle days in the rotation.
func (c *Calendar) Length() int { return c.length }

// Anchor returns the date assigned cycle day 1.
func (c *Calendar) Anchor() time.Time { return c.anchor }

// IsInstructional reports whether date is neither a weekend nor excluded.
func (c *Calendar) IsInstructional(date time.Time) bool {
	date = Normalize(date)
	if IsWeekend(date) {
		return false
	}
	_, excluded := c.excluded[date]
	return !excluded
}

// CycleDayFor returns the cycle position of date.
func (c *Calendar) CycleDayFor(date time.Time) Result {
	date = Normalize(date)
	result := Result{Date: date}
	if !c.IsInstructional(date) {
		return result
	}

	// k counts eligible dates in (anchor, date] moving forward, or [date, anchor)
	// moving backward (as a negative number); the anchor itself is k = 1.
	var k int
	if date.Before(c.anchor) {
		k = 1 - c.eligibleBetween(date, c.anchor.AddDate(0, 0, -1))
	} else {
		k = c.eligibleBetween(c.anchor, date)
	}

	day := mod(k-1, c.length) + 1
	label := c.WeekLabelFor(day)
	result.CycleDay = &day
	result.Label = &label
	return result
}

// WeekLabelFor returns the half of the rotation cycleDay falls in.
func (c *Calendar) WeekLabelFor(cycleDay int) Label {
	if cycleDay <= (c.length+1)/2 {
		return WeekA
	}
	return WeekB
}

// NextInstructionalDate returns the first eligible date strictly after date.
func (c *Calendar) NextInstructionalDate(date time.Time) time.Time {
	next := Normalize(date).AddDate(0, 0, 1)
	for !c.IsInstructional(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// eligibleBetween counts eligible dates in the closed range [from, to].
func (c *Calendar) eligibleBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return weekdaysBetween(from, to) - c.exclusionsBetween(from, to)
}

func (c *Calendar) exclusionsBetween(from, to time.Time) int {
	lo := sort.Search(len(c.exclusions), func(i int) bool { return !c.exclusions[i].Before(from) })
	hi := sort.Search(len(c.exclusions), func(i int) bool { return c.exclusions[i].After(to) })
	return hi - lo
}

// weekdaysBetween counts Monday–Friday dates in the closed range [from, to].
func weekdaysBetween(from, to time.Time) int {
	days := daysBetween(from, to) + 1
	count := (days / 7) * 5
	start := int(from.Weekday())
	for i := 0; i < days%7; i++ {
		wd := time.Weekday((start + i) % 7)
		if wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
