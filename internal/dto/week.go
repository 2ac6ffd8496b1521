package dto

import (
	"github.com/noah-isme/lesson-planner-api/internal/cycle"
	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// WeekTimetable is the assembled Monday to Friday view of planned lessons.
type WeekTimetable struct {
	WeekStart     string    `json:"week_start"`
	WeekEnd       string    `json:"week_end"`
	PrimaryWeek   *string   `json:"primary_week"`
	PeriodsPerDay int       `json:"periods_per_day"`
	Days          []DayInfo `json:"days"`
}

// DayInfo carries the cycle position and lessons of one weekday.
type DayInfo struct {
	Date        string         `json:"date"`
	Weekday     int            `json:"weekday"`
	WeekdayName string         `json:"weekday_name"`
	CycleDay    *int           `json:"cycle_day"`
	IsWeekA     *bool          `json:"is_week_a"`
	WeekLabel   *string        `json:"week_label"`
	Lessons     []LessonDetail `json:"lessons"`
}

// LessonDetail is a lesson with its subject and attachments.
type LessonDetail struct {
	ID        string            `json:"id"`
	Date      string            `json:"date"`
	Period    int               `json:"period"`
	SubjectID string            `json:"subject_id"`
	CycleDay  *int              `json:"cycle_day"`
	Title     *string           `json:"title"`
	Subject   *models.Subject   `json:"subject"`
	Notes     []models.Note     `json:"notes"`
	Resources []models.Resource `json:"resources"`
	Todos     []TodoItem        `json:"todos"`
}

// CycleDayInfo answers a single-date cycle lookup.
type CycleDayInfo struct {
	Date          string  `json:"date"`
	CycleDay      *int    `json:"cycle_day"`
	WeekLabel     *string `json:"week_label"`
	Instructional bool    `json:"instructional"`
}

// WeekExportResult points at a rendered week plan.
type WeekExportResult struct {
	URL       string `json:"url"`
	Format    string `json:"format"`
	ExpiresAt string `json:"expires_at"`
}

// NewCycleDayInfo converts a calendar lookup.
func NewCycleDayInfo(result cycle.Result) *CycleDayInfo {
	info := &CycleDayInfo{
		Date:          cycle.FormatDate(result.Date),
		CycleDay:      result.CycleDay,
		Instructional: result.Instructional(),
	}
	if result.Label != nil {
		label := string(*result.Label)
		info.WeekLabel = &label
	}
	return info
}

// NewDayInfo builds the lesson-free part of a day from a calendar lookup.
func NewDayInfo(result cycle.Result) DayInfo {
	day := DayInfo{
		Date:        cycle.FormatDate(result.Date),
		Weekday:     cycle.WeekdayIndex(result.Date),
		WeekdayName: cycle.WeekdayName(result.Date),
		CycleDay:    result.CycleDay,
		Lessons:     []LessonDetail{},
	}
	if result.Label != nil {
		label := string(*result.Label)
		isWeekA := *result.Label == cycle.WeekA
		day.WeekLabel = &label
		day.IsWeekA = &isWeekA
	}
	return day
}

// NewLessonDetail builds a lesson detail with empty attachment lists.
func NewLessonDetail(lesson models.Lesson, subject *models.Subject) LessonDetail {
	return LessonDetail{
		ID:        lesson.ID,
		Date:      cycle.FormatDate(lesson.Date),
		Period:    lesson.Period,
		SubjectID: lesson.SubjectID,
		CycleDay:  lesson.CycleDay,
		Title:     lesson.Title,
		Subject:   subject,
		Notes:     []models.Note{},
		Resources: []models.Resource{},
		Todos:     []TodoItem{},
	}
}
