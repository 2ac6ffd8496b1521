package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// TimetableRepository persists the default subject for each cycle slot.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// List returns entries ordered by cycle day then period, optionally for a single cycle day.
func (r *TimetableRepository) List(ctx context.Context, cycleDay *int) ([]models.TimetableEntry, error) {
	query := `SELECT cycle_day, period, subject_id, updated_at FROM timetable_entries`
	var args []interface{}
	if cycleDay != nil {
		query += ` WHERE cycle_day = $1`
		args = append(args, *cycleDay)
	}
	query += ` ORDER BY cycle_day ASC, period ASC`

	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// Upsert assigns a subject to a slot, replacing any previous assignment.
func (r *TimetableRepository) Upsert(ctx context.Context, entry *models.TimetableEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO timetable_entries (cycle_day, period, subject_id, updated_at)
VALUES (:cycle_day, :period, :subject_id, :updated_at)
ON CONFLICT (cycle_day, period)
DO UPDATE SET subject_id = EXCLUDED.subject_id, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("upsert timetable entry: %w", err)
	}
	return nil
}

// Delete clears a slot. It returns sql.ErrNoRows when the slot was empty.
func (r *TimetableRepository) Delete(ctx context.Context, cycleDay, period int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timetable_entries WHERE cycle_day = $1 AND period = $2`, cycleDay, period)
	if err != nil {
		return fmt.Errorf("delete timetable entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete timetable entry rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
