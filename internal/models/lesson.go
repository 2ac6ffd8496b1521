package models

import "time"

// Lesson is a planned occurrence of a subject in a (date, period) slot.
type Lesson struct {
	ID        string    `db:"id" json:"id"`
	Date      time.Time `db:"date" json:"date"`
	Period    int       `db:"period" json:"period"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CycleDay  *int      `db:"cycle_day" json:"cycle_day,omitempty"`
	Title     *string   `db:"title" json:"title,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Note is free text attached to a lesson.
type Note struct {
	ID        string    `db:"id" json:"id"`
	LessonID  string    `db:"lesson_id" json:"lesson_id"`
	Title     *string   `db:"title" json:"title,omitempty"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Resource is a link or file reference attached to a lesson.
type Resource struct {
	ID           string    `db:"id" json:"id"`
	LessonID     string    `db:"lesson_id" json:"lesson_id"`
	Title        string    `db:"title" json:"title"`
	URL          *string   `db:"url" json:"url,omitempty"`
	FilePath     *string   `db:"file_path" json:"file_path,omitempty"`
	ResourceType *string   `db:"resource_type" json:"resource_type,omitempty"`
	Description  *string   `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Todo is a preparation task attached to a lesson.
type Todo struct {
	ID          string     `db:"id" json:"id"`
	LessonID    string     `db:"lesson_id" json:"lesson_id"`
	Content     string     `db:"content" json:"content"`
	IsCompleted bool       `db:"is_completed" json:"is_completed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Priority    *int       `db:"priority" json:"priority,omitempty"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
