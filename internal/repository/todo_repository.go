package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

const todoColumns = "id, lesson_id, content, is_completed, completed_at, priority, due_date, created_at, updated_at"

// TodoRepository persists lesson todos.
type TodoRepository struct {
	db *sqlx.DB
}

// NewTodoRepository constructs the repository.
func NewTodoRepository(db *sqlx.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// ListByLesson returns a lesson's todos in insertion order.
func (r *TodoRepository) ListByLesson(ctx context.Context, lessonID string) ([]models.Todo, error) {
	query := fmt.Sprintf("SELECT %s FROM todos WHERE lesson_id = $1 ORDER BY created_at ASC, id ASC", todoColumns)
	todos := []models.Todo{}
	if err := r.db.SelectContext(ctx, &todos, query, lessonID); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// ListOutstandingFirst returns open todos before completed ones, highest priority first.
func (r *TodoRepository) ListOutstandingFirst(ctx context.Context, lessonID string) ([]models.Todo, error) {
	query := fmt.Sprintf("SELECT %s FROM todos WHERE lesson_id = $1 ORDER BY is_completed ASC, priority ASC NULLS LAST, created_at ASC", todoColumns)
	todos := []models.Todo{}
	if err := r.db.SelectContext(ctx, &todos, query, lessonID); err != nil {
		return nil, fmt.Errorf("list todos by priority: %w", err)
	}
	return todos, nil
}

// FindByID returns a todo belonging to lessonID.
func (r *TodoRepository) FindByID(ctx context.Context, lessonID, id string) (*models.Todo, error) {
	query := fmt.Sprintf("SELECT %s FROM todos WHERE id = $1 AND lesson_id = $2", todoColumns)
	var todo models.Todo
	if err := r.db.GetContext(ctx, &todo, query, id, lessonID); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Create persists a new todo.
func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	const query = `INSERT INTO todos (id, lesson_id, content, is_completed, completed_at, priority, due_date, created_at, updated_at)
VALUES (:id, :lesson_id, :content, :is_completed, :completed_at, :priority, :due_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, todo); err != nil {
		return fmt.Errorf("create todo: %w", err)
	}
	return nil
}

// Update modifies a todo.
func (r *TodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	todo.UpdatedAt = time.Now().UTC()
	const query = `UPDATE todos SET content = :content, is_completed = :is_completed, completed_at = :completed_at,
priority = :priority, due_date = :due_date, updated_at = :updated_at WHERE id = :id AND lesson_id = :lesson_id`
	if _, err := r.db.NamedExecContext(ctx, query, todo); err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return nil
}

// Toggle flips completion in a single statement and stamps completed_at.
// It returns sql.ErrNoRows when the todo does not exist.
func (r *TodoRepository) Toggle(ctx context.Context, lessonID, id string) (*models.Todo, error) {
	query := fmt.Sprintf(`UPDATE todos SET is_completed = NOT is_completed,
completed_at = CASE WHEN is_completed THEN NULL ELSE $3 END, updated_at = $3
WHERE id = $1 AND lesson_id = $2 RETURNING %s`, todoColumns)
	var todo models.Todo
	if err := r.db.GetContext(ctx, &todo, query, id, lessonID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Delete removes a todo. It returns sql.ErrNoRows when nothing matched.
func (r *TodoRepository) Delete(ctx context.Context, lessonID, id string) error {
	return deleteAttachment(ctx, r.db, "todos", lessonID, id)
}
