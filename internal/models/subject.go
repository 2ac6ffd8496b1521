package models

import "time"

// Subject is a class the teacher delivers during a semester.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Code         *string   `db:"code" json:"code,omitempty"`
	YearLevel    *int      `db:"year_level" json:"year_level,omitempty"`
	AcademicYear int       `db:"academic_year" json:"academic_year"`
	Semester     int       `db:"semester" json:"semester"`
	Room         *string   `db:"room" json:"room,omitempty"`
	Colour       *string   `db:"colour" json:"colour,omitempty"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	AcademicYear *int
	Semester     *int
	IsActive     *bool
	YearLevel    *int
	Page         int
	PageSize     int
}
