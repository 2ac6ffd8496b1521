package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

const settingsColumns = "id, periods_per_day, current_year, current_semester, cycle_length, cycle_start_date, updated_at"

// SettingsRepository persists the single planner settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings row. It returns sql.ErrNoRows when the row has not been created yet.
func (r *SettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	query := fmt.Sprintf("SELECT %s FROM settings WHERE id = $1", settingsColumns)
	var settings models.Settings
	if err := r.db.GetContext(ctx, &settings, query, models.SettingsID); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Create inserts the settings row unless another writer got there first.
func (r *SettingsRepository) Create(ctx context.Context, settings *models.Settings) error {
	settings.ID = models.SettingsID
	settings.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO settings (id, periods_per_day, current_year, current_semester, cycle_length, cycle_start_date, updated_at)
VALUES (:id, :periods_per_day, :current_year, :current_semester, :cycle_length, :cycle_start_date, :updated_at)
ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("create settings: %w", err)
	}
	return nil
}

// Update overwrites the settings row.
func (r *SettingsRepository) Update(ctx context.Context, settings *models.Settings) error {
	settings.ID = models.SettingsID
	settings.UpdatedAt = time.Now().UTC()
	const query = `UPDATE settings SET periods_per_day = :periods_per_day, current_year = :current_year,
current_semester = :current_semester, cycle_length = :cycle_length, cycle_start_date = :cycle_start_date,
updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}
