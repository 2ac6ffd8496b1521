package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

const subjectColumns = "id, name, code, year_level, academic_year, semester, room, colour, notes, is_active, created_at, updated_at"

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects matching filters ordered by year level then name.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	var conditions []string
	var args []interface{}

	if filter.AcademicYear != nil {
		args = append(args, *filter.AcademicYear)
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)))
	}
	if filter.Semester != nil {
		args = append(args, *filter.Semester)
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if filter.YearLevel != nil {
		args = append(args, *filter.YearLevel)
		conditions = append(conditions, fmt.Sprintf("year_level = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM subjects WHERE 1=1", subjectColumns)
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY year_level ASC NULLS LAST, name ASC"

	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE id = $1", subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// FindByIDs resolves several subjects in one round trip, keyed by id.
func (r *SubjectRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Subject, error) {
	result := make(map[string]models.Subject, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE id = ANY($1)", subjectColumns)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find subjects by ids: %w", err)
	}
	for _, subject := range subjects {
		result[subject.ID] = subject
	}
	return result, nil
}

// Create persists a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (id, name, code, year_level, academic_year, semester, room, colour, notes, is_active, created_at, updated_at)
VALUES (:id, :name, :code, :year_level, :academic_year, :semester, :room, :colour, :notes, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies a subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET name = :name, code = :code, year_level = :year_level, academic_year = :academic_year,
semester = :semester, room = :room, colour = :colour, notes = :notes, is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject together with its lessons, their attachments and its timetable slots.
func (r *SubjectRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete subject tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	statements := []string{
		`DELETE FROM notes WHERE lesson_id IN (SELECT id FROM lessons WHERE subject_id = $1)`,
		`DELETE FROM resources WHERE lesson_id IN (SELECT id FROM lessons WHERE subject_id = $1)`,
		`DELETE FROM todos WHERE lesson_id IN (SELECT id FROM lessons WHERE subject_id = $1)`,
		`DELETE FROM lessons WHERE subject_id = $1`,
		`DELETE FROM timetable_entries WHERE subject_id = $1`,
		`DELETE FROM subjects WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete subject: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete subject: %w", err)
	}
	return nil
}
