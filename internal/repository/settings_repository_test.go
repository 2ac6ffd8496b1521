package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

func TestSettingsRepositoryGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	anchor := time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "periods_per_day", "current_year", "current_semester", "cycle_length", "cycle_start_date", "updated_at"}).
		AddRow(1, 6, 2025, 1, 10, anchor, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, periods_per_day, current_year, current_semester, cycle_length, cycle_start_date, updated_at FROM settings WHERE id = $1")).
		WithArgs(models.SettingsID).
		WillReturnRows(rows)

	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, settings.CycleLength)
	require.NotNil(t, settings.CycleStartDate)
	assert.Equal(t, anchor, *settings.CycleStartDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryGetMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery("FROM settings WHERE id").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSettingsRepositoryCreateAndUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectExec("INSERT INTO settings .* ON CONFLICT \\(id\\) DO NOTHING").
		WithArgs(models.SettingsID, 6, 2025, 1, 10, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	settings := &models.Settings{PeriodsPerDay: 6, CurrentYear: 2025, CurrentSemester: 1, CycleLength: 10}
	require.NoError(t, repo.Create(context.Background(), settings))
	assert.Equal(t, models.SettingsID, settings.ID)

	mock.ExpectExec("UPDATE settings SET periods_per_day").
		WithArgs(8, 2025, 1, 10, nil, sqlmock.AnyArg(), models.SettingsID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	settings.PeriodsPerDay = 8
	require.NoError(t, repo.Update(context.Background(), settings))
	assert.NoError(t, mock.ExpectationsWereMet())
}
