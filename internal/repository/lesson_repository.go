package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

const lessonColumns = "id, date, period, subject_id, cycle_day, title, created_at, updated_at"

// LessonRepository persists planned lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs the repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// ListByDate returns the lessons planned on date ordered by period.
func (r *LessonRepository) ListByDate(ctx context.Context, date time.Time) ([]models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE date = $1 ORDER BY period ASC", lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, date); err != nil {
		return nil, fmt.Errorf("list lessons by date: %w", err)
	}
	return lessons, nil
}

// FindByID returns a lesson by id.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE id = $1", lessonColumns)
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// FindBySlot returns the lesson occupying (date, period) or sql.ErrNoRows.
func (r *LessonRepository) FindBySlot(ctx context.Context, date time.Time, period int) (*models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE date = $1 AND period = $2", lessonColumns)
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, date, period); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Create persists a new lesson.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now

	const query = `INSERT INTO lessons (id, date, period, subject_id, cycle_day, title, created_at, updated_at)
VALUES (:id, :date, :period, :subject_id, :cycle_day, :title, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// Update modifies a lesson.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	lesson.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lessons SET date = :date, period = :period, subject_id = :subject_id, cycle_day = :cycle_day,
title = :title, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return nil
}

// Delete removes a lesson and its attachments. It returns sql.ErrNoRows when the lesson does not exist.
func (r *LessonRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete lesson tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"notes", "resources", "todos"} {
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE lesson_id = $1", table), id); err != nil {
			return fmt.Errorf("delete lesson %s: %w", table, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete lesson rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete lesson: %w", err)
	}
	return nil
}
