package dto

// CreateSubjectRequest captures fields for creating subjects.
type CreateSubjectRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	Code         *string `json:"code" validate:"omitempty,max=20"`
	YearLevel    *int    `json:"year_level" validate:"omitempty,min=1,max=13"`
	AcademicYear int     `json:"academic_year" validate:"required,min=2000,max=2100"`
	Semester     int     `json:"semester" validate:"required,oneof=1 2"`
	Room         *string `json:"room" validate:"omitempty,max=50"`
	Colour       *string `json:"colour" validate:"omitempty,hexcolor"`
	Notes        *string `json:"notes"`
	IsActive     *bool   `json:"is_active"`
}

// UpdateSubjectRequest modifies any subset of subject fields.
type UpdateSubjectRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	Code         *string `json:"code" validate:"omitempty,max=20"`
	YearLevel    *int    `json:"year_level" validate:"omitempty,min=1,max=13"`
	AcademicYear *int    `json:"academic_year" validate:"omitempty,min=2000,max=2100"`
	Semester     *int    `json:"semester" validate:"omitempty,oneof=1 2"`
	Room         *string `json:"room" validate:"omitempty,max=50"`
	Colour       *string `json:"colour" validate:"omitempty,hexcolor"`
	Notes        *string `json:"notes"`
	IsActive     *bool   `json:"is_active"`
}
