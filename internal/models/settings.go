package models

import "time"

// SettingsID is the primary key of the single settings row.
const SettingsID = 1

// Settings is the planner-wide configuration row.
type Settings struct {
	ID              int        `db:"id" json:"-"`
	PeriodsPerDay   int        `db:"periods_per_day" json:"periods_per_day"`
	CurrentYear     int        `db:"current_year" json:"current_year"`
	CurrentSemester int        `db:"current_semester" json:"current_semester"`
	CycleLength     int        `db:"cycle_length" json:"cycle_length"`
	CycleStartDate  *time.Time `db:"cycle_start_date" json:"cycle_start_date,omitempty"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// ExclusionDate marks a weekday on which the rotation does not advance.
type ExclusionDate struct {
	ID        string    `db:"id" json:"id"`
	Date      time.Time `db:"date" json:"date"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Period is reference metadata for a numbered teaching period.
type Period struct {
	Number    int     `db:"number" json:"number"`
	StartTime *string `db:"start_time" json:"start_time,omitempty"`
	EndTime   *string `db:"end_time" json:"end_time,omitempty"`
}

// TimetableEntry is the default subject taught in a cycle day slot.
type TimetableEntry struct {
	CycleDay  int       `db:"cycle_day" json:"cycle_day"`
	Period    int       `db:"period" json:"period"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
