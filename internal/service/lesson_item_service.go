package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/cycle"
	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

type lessonFinder interface {
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
}

type noteRepository interface {
	ListByLesson(ctx context.Context, lessonID string) ([]models.Note, error)
	FindByID(ctx context.Context, lessonID, id string) (*models.Note, error)
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, lessonID, id string) error
}

type resourceRepository interface {
	ListByLesson(ctx context.Context, lessonID string) ([]models.Resource, error)
	FindByID(ctx context.Context, lessonID, id string) (*models.Resource, error)
	Create(ctx context.Context, resource *models.Resource) error
	Update(ctx context.Context, resource *models.Resource) error
	Delete(ctx context.Context, lessonID, id string) error
}

type todoRepository interface {
	ListOutstandingFirst(ctx context.Context, lessonID string) ([]models.Todo, error)
	FindByID(ctx context.Context, lessonID, id string) (*models.Todo, error)
	Create(ctx context.Context, todo *models.Todo) error
	Update(ctx context.Context, todo *models.Todo) error
	Toggle(ctx context.Context, lessonID, id string) (*models.Todo, error)
	Delete(ctx context.Context, lessonID, id string) error
}

// LessonItemService manages notes, resources and todos attached to lessons.
type LessonItemService struct {
	lessons   lessonFinder
	notes     noteRepository
	resources resourceRepository
	todos     todoRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLessonItemService constructs a LessonItemService.
func NewLessonItemService(lessons lessonFinder, notes noteRepository, resources resourceRepository, todos todoRepository, validate *validator.Validate, logger *zap.Logger) *LessonItemService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonItemService{
		lessons:   lessons,
		notes:     notes,
		resources: resources,
		todos:     todos,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *LessonItemService) ensureLesson(ctx context.Context, lessonID string) error {
	if _, err := s.lessons.FindByID(ctx, lessonID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return internalError(err, "failed to load lesson")
	}
	return nil
}

func itemLookupError(err error, kind string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, kind+" not found")
	}
	return internalError(err, "failed to load "+kind)
}

// ListNotes returns a lesson's notes.
func (s *LessonItemService) ListNotes(ctx context.Context, lessonID string) ([]models.Note, error) {
	if err := s.ensureLesson(ctx, lessonID); err != nil {
		return nil, err
	}
	notes, err := s.notes.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, internalError(err, "failed to list notes")
	}
	return notes, nil
}

// GetNote returns a single note.
func (s *LessonItemService) GetNote(ctx context.Context, lessonID, id string) (*models.Note, error) {
	note, err := s.notes.FindByID(ctx, lessonID, id)
	if err != nil {
		return nil, itemLookupError(err, "note")
	}
	return note, nil
}

// CreateNote attaches a note to a lesson.
func (s *LessonItemService) CreateNote(ctx context.Context, lessonID string, req dto.CreateNoteRequest) (*models.Note, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid note payload")
	}
	if err := s.ensureLesson(ctx, lessonID); err != nil {
		return nil, err
	}
	note := &models.Note{LessonID: lessonID, Title: req.Title, Content: req.Content}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, internalError(err, "failed to create note")
	}
	return note, nil
}

// UpdateNote changes a note.
func (s *LessonItemService) UpdateNote(ctx context.Context, lessonID, id string, req dto.UpdateNoteRequest) (*models.Note, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid note payload")
	}
	note, err := s.GetNote(ctx, lessonID, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		note.Title = req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if err := s.notes.Update(ctx, note); err != nil {
		return nil, internalError(err, "failed to update note")
	}
	return note, nil
}

// DeleteNote removes a note.
func (s *LessonItemService) DeleteNote(ctx context.Context, lessonID, id string) error {
	if err := s.notes.Delete(ctx, lessonID, id); err != nil {
		return itemLookupError(err, "note")
	}
	return nil
}

// ListResources returns a lesson's resources.
func (s *LessonItemService) ListResources(ctx context.Context, lessonID string) ([]models.Resource, error) {
	if err := s.ensureLesson(ctx, lessonID); err != nil {
		return nil, err
	}
	resources, err := s.resources.ListByLesson(ctx, lessonID)
	if err != nil {
		return nil, internalError(err, "failed to list resources")
	}
	return resources, nil
}

// GetResource returns a single resource.
func (s *LessonItemService) GetResource(ctx context.Context, lessonID, id string) (*models.Resource, error) {
	resource, err := s.resources.FindByID(ctx, lessonID, id)
	if err != nil {
		return nil, itemLookupError(err, "resource")
	}
	return resource, nil
}

// CreateResource attaches a resource to a lesson.
func (s *LessonItemService) CreateResource(ctx context.Context, lessonID string, req dto.CreateResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid resource payload")
	}
	if err := s.ensureLesson(ctx, lessonID); err != nil {
		return nil, err
	}
	resource := &models.Resource{
		LessonID:     lessonID,
		Title:        req.Title,
		URL:          req.URL,
		FilePath:     req.FilePath,
		ResourceType: req.ResourceType,
		Description:  req.Description,
	}
	if err := s.resources.Create(ctx, resource); err != nil {
		return nil, internalError(err, "failed to create resource")
	}
	return resource, nil
}

// UpdateResource changes a resource.
func (s *LessonItemService) UpdateResource(ctx context.Context, lessonID, id string, req dto.UpdateResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid resource payload")
	}
	resource, err := s.GetResource(ctx, lessonID, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		resource.Title = *req.Title
	}
	if req.URL != nil {
		resource.URL = req.URL
	}
	if req.FilePath != nil {
		resource.FilePath = req.FilePath
	}
	if req.ResourceType != nil {
		resource.ResourceType = req.ResourceType
	}
	if req.Description != nil {
		resource.Description = req.Description
	}
	if err := s.resources.Update(ctx, resource); err != nil {
		return nil, internalError(err, "failed to update resource")
	}
	return resource, nil
}

// DeleteResource removes a resource.
func (s *LessonItemService) DeleteResource(ctx context.Context, lessonID, id string) error {
	if err := s.resources.Delete(ctx, lessonID, id); err != nil {
		return itemLookupError(err, "resource")
	}
	return nil
}

// ListTodos returns a lesson's todos, open ones first and highest priority first.
func (s *LessonItemService) ListTodos(ctx context.Context, lessonID string) ([]dto.TodoItem, error) {
	if err := s.ensureLesson(ctx, lessonID); err != nil {
		return nil, err
	}
	todos, err := s.todos.ListOutstandingFirst(ctx, lessonID)
	if err != nil {
		return nil, internalError(err, "failed to list todos")
	}
	return dto.NewTodoItems(todos), nil
}

// GetTodo returns a single todo.
func (s *LessonItemService) GetTodo(ctx context.Context, lessonID, id string) (*dto.TodoItem, error) {
	todo, err := s.todos.FindByID(ctx, lessonID, id)
	if err != nil {
		return nil, itemLookupError(err, "todo")
	}
	item := dto.NewTodoItem(*todo)
	return &item, nil
}

// CreateTodo attaches a todo to a lesson.
func (s *LessonItemService) CreateTodo(ctx context.Context, lessonID string, req dto.CreateTodoRequest) (*dto.TodoItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid todo payload")
	}
	due, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	if err := s.ensureLesson(ctx, lessonID); err != nil {
		return nil, err
	}
	todo := &models.Todo{
		LessonID:    lessonID,
		Content:     req.Content,
		IsCompleted: req.IsCompleted,
		Priority:    req.Priority,
		DueDate:     due,
	}
	if todo.IsCompleted {
		now := s.now()
		todo.CompletedAt = &now
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, internalError(err, "failed to create todo")
	}
	item := dto.NewTodoItem(*todo)
	return &item, nil
}

// UpdateTodo changes a todo. completed_at follows changes to is_completed.
func (s *LessonItemService) UpdateTodo(ctx context.Context, lessonID, id string, req dto.UpdateTodoRequest) (*dto.TodoItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid todo payload")
	}
	due, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	todo, err := s.todos.FindByID(ctx, lessonID, id)
	if err != nil {
		return nil, itemLookupError(err, "todo")
	}
	if req.Content != nil {
		todo.Content = *req.Content
	}
	if req.Priority != nil {
		todo.Priority = req.Priority
	}
	if due != nil {
		todo.DueDate = due
	}
	if req.IsCompleted != nil && *req.IsCompleted != todo.IsCompleted {
		todo.IsCompleted = *req.IsCompleted
		if todo.IsCompleted {
			now := s.now()
			todo.CompletedAt = &now
		} else {
			todo.CompletedAt = nil
		}
	}
	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, internalError(err, "failed to update todo")
	}
	item := dto.NewTodoItem(*todo)
	return &item, nil
}

// ToggleTodo flips a todo's completion.
func (s *LessonItemService) ToggleTodo(ctx context.Context, lessonID, id string) (*dto.TodoItem, error) {
	todo, err := s.todos.Toggle(ctx, lessonID, id)
	if err != nil {
		return nil, itemLookupError(err, "todo")
	}
	item := dto.NewTodoItem(*todo)
	return &item, nil
}

// DeleteTodo removes a todo.
func (s *LessonItemService) DeleteTodo(ctx context.Context, lessonID, id string) error {
	if err := s.todos.Delete(ctx, lessonID, id); err != nil {
		return itemLookupError(err, "todo")
	}
	return nil
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	parsed, err := cycle.ParseDate(*raw)
	if err != nil {
		return nil, validationError(err, "invalid due_date")
	}
	return &parsed, nil
}
