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

const noteColumns = "id, lesson_id, title, content, created_at, updated_at"

// NoteRepository persists lesson notes.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository constructs the repository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// ListByLesson returns a lesson's notes in insertion order.
func (r *NoteRepository) ListByLesson(ctx context.Context, lessonID string) ([]models.Note, error) {
	query := fmt.Sprintf("SELECT %s FROM notes WHERE lesson_id = $1 ORDER BY created_at ASC, id ASC", noteColumns)
	notes := []models.Note{}
	if err := r.db.SelectContext(ctx, &notes, query, lessonID); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// FindByID returns a note belonging to lessonID.
func (r *NoteRepository) FindByID(ctx context.Context, lessonID, id string) (*models.Note, error) {
	query := fmt.Sprintf("SELECT %s FROM notes WHERE id = $1 AND lesson_id = $2", noteColumns)
	var note models.Note
	if err := r.db.GetContext(ctx, &note, query, id, lessonID); err != nil {
		return nil, err
	}
	return &note, nil
}

// Create persists a new note.
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now
	const query = `INSERT INTO notes (id, lesson_id, title, content, created_at, updated_at)
VALUES (:id, :lesson_id, :title, :content, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// Update modifies a note.
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	note.UpdatedAt = time.Now().UTC()
	const query = `UPDATE notes SET title = :title, content = :content, updated_at = :updated_at WHERE id = :id AND lesson_id = :lesson_id`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return nil
}

// Delete removes a note. It returns sql.ErrNoRows when nothing matched.
func (r *NoteRepository) Delete(ctx context.Context, lessonID, id string) error {
	return deleteAttachment(ctx, r.db, "notes", lessonID, id)
}

func deleteAttachment(ctx context.Context, db *sqlx.DB, table, lessonID, id string) error {
	res, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1 AND lesson_id = $2", table), id, lessonID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s rows: %w", table, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
