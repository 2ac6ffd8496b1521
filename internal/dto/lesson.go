package dto

import (
	"time"

	"github.com/noah-isme/lesson-planner-api/internal/cycle"
	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// CreateLessonRequest places a subject in a (date, period) slot.
type CreateLessonRequest struct {
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Period    int     `json:"period" validate:"required,min=1"`
	SubjectID string  `json:"subject_id" validate:"required"`
	Title     *string `json:"title" validate:"omitempty,max=255"`
}

// UpdateLessonRequest changes any subset of a lesson's fields.
type UpdateLessonRequest struct {
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Period    *int    `json:"period" validate:"omitempty,min=1"`
	SubjectID *string `json:"subject_id" validate:"omitempty,min=1"`
	Title     *string `json:"title" validate:"omitempty,max=255"`
}

// CreateNoteRequest attaches a note to a lesson.
type CreateNoteRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=255"`
	Content string  `json:"content" validate:"required"`
}

// UpdateNoteRequest changes a note.
type UpdateNoteRequest struct {
	Title   *string `json:"title" validate:"omitempty,max=255"`
	Content *string `json:"content" validate:"omitempty,min=1"`
}

// CreateResourceRequest attaches a resource to a lesson.
type CreateResourceRequest struct {
	Title        string  `json:"title" validate:"required,max=255"`
	URL          *string `json:"url" validate:"omitempty,url"`
	FilePath     *string `json:"file_path"`
	ResourceType *string `json:"resource_type" validate:"omitempty,max=50"`
	Description  *string `json:"description"`
}

// UpdateResourceRequest changes a resource.
type UpdateResourceRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=255"`
	URL          *string `json:"url" validate:"omitempty,url"`
	FilePath     *string `json:"file_path"`
	ResourceType *string `json:"resource_type" validate:"omitempty,max=50"`
	Description  *string `json:"description"`
}

// CreateTodoRequest attaches a todo to a lesson. Priority 1 is highest.
type CreateTodoRequest struct {
	Content     string  `json:"content" validate:"required"`
	IsCompleted bool    `json:"is_completed"`
	Priority    *int    `json:"priority" validate:"omitempty,min=1,max=3"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateTodoRequest changes a todo.
type UpdateTodoRequest struct {
	Content     *string `json:"content" validate:"omitempty,min=1"`
	IsCompleted *bool   `json:"is_completed"`
	Priority    *int    `json:"priority" validate:"omitempty,min=1,max=3"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// TodoItem is the wire form of a todo with a date-only due date.
type TodoItem struct {
	ID          string     `json:"id"`
	LessonID    string     `json:"lesson_id"`
	Content     string     `json:"content"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	Priority    *int       `json:"priority"`
	DueDate     *string    `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTodoItem converts a stored todo.
func NewTodoItem(todo models.Todo) TodoItem {
	item := TodoItem{
		ID:          todo.ID,
		LessonID:    todo.LessonID,
		Content:     todo.Content,
		IsCompleted: todo.IsCompleted,
		CompletedAt: todo.CompletedAt,
		Priority:    todo.Priority,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
	if todo.DueDate != nil {
		due := cycle.FormatDate(*todo.DueDate)
		item.DueDate = &due
	}
	return item
}

// NewTodoItems converts a list of stored todos.
func NewTodoItems(todos []models.Todo) []TodoItem {
	items := make([]TodoItem, 0, len(todos))
	for _, todo := range todos {
		items = append(items, NewTodoItem(todo))
	}
	return items
}
