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

// ExclusionRepository persists dates removed from the rotation.
type ExclusionRepository struct {
	db *sqlx.DB
}

// NewExclusionRepository constructs the repository.
func NewExclusionRepository(db *sqlx.DB) *ExclusionRepository {
	return &ExclusionRepository{db: db}
}

// List returns all exclusion dates in ascending order.
func (r *ExclusionRepository) List(ctx context.Context) ([]models.ExclusionDate, error) {
	const query = `SELECT id, date, reason, created_at FROM exclusion_dates ORDER BY date ASC`
	var dates []models.ExclusionDate
	if err := r.db.SelectContext(ctx, &dates, query); err != nil {
		return nil, fmt.Errorf("list exclusion dates: %w", err)
	}
	return dates, nil
}

// FindByDate returns the exclusion on date or sql.ErrNoRows.
func (r *ExclusionRepository) FindByDate(ctx context.Context, date time.Time) (*models.ExclusionDate, error) {
	const query = `SELECT id, date, reason, created_at FROM exclusion_dates WHERE date = $1`
	var exclusion models.ExclusionDate
	if err := r.db.GetContext(ctx, &exclusion, query, date); err != nil {
		return nil, err
	}
	return &exclusion, nil
}

// Create inserts an exclusion date.
func (r *ExclusionRepository) Create(ctx context.Context, exclusion *models.ExclusionDate) error {
	if exclusion.ID == "" {
		exclusion.ID = uuid.NewString()
	}
	exclusion.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO exclusion_dates (id, date, reason, created_at) VALUES (:id, :date, :reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exclusion); err != nil {
		return fmt.Errorf("create exclusion date: %w", err)
	}
	return nil
}

// DeleteByDate removes the exclusion on date. It returns sql.ErrNoRows when none existed.
func (r *ExclusionRepository) DeleteByDate(ctx context.Context, date time.Time) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exclusion_dates WHERE date = $1`, date)
	if err != nil {
		return fmt.Errorf("delete exclusion date: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete exclusion date rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
