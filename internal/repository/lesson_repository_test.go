package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

var lessonRowColumns = []string{"id", "date", "period", "subject_id", "cycle_day", "title", "created_at", "updated_at"}

func TestLessonRepositoryListByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	day := time.Date(2025, 1, 28, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(lessonRowColumns).
		AddRow("l1", day, 1, "s1", 2, "Fractions", time.Now(), time.Now()).
		AddRow("l2", day, 4, "s2", 2, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, date, period, subject_id, cycle_day, title, created_at, updated_at FROM lessons WHERE date = $1 ORDER BY period ASC")).
		WithArgs(day).
		WillReturnRows(rows)

	lessons, err := repo.ListByDate(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, 1, lessons[0].Period)
	require.NotNil(t, lessons[0].Title)
	assert.Nil(t, lessons[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryListByDateError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery("FROM lessons WHERE date").WillReturnError(errors.New("connection reset"))

	_, err := repo.ListByDate(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list lessons by date")
}

func TestLessonRepositoryFindBySlotMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	day := time.Date(2025, 1, 28, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM lessons WHERE date = $1 AND period = $2")).
		WithArgs(day, 3).
		WillReturnRows(sqlmock.NewRows(lessonRowColumns))

	_, err := repo.FindBySlot(context.Background(), day, 3)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLessonRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	day := time.Date(2025, 1, 28, 0, 0, 0, 0, time.UTC)
	cycleDay := 2
	mock.ExpectExec("INSERT INTO lessons").
		WithArgs(sqlmock.AnyArg(), day, 3, "s1", 2, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	lesson := &models.Lesson{Date: day, Period: 3, SubjectID: "s1", CycleDay: &cycleDay}
	require.NoError(t, repo.Create(context.Background(), lesson))
	assert.NotEmpty(t, lesson.ID)
	assert.False(t, lesson.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notes WHERE lesson_id = $1")).WithArgs("l1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resources WHERE lesson_id = $1")).WithArgs("l1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM todos WHERE lesson_id = $1")).WithArgs("l1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lessons WHERE id = $1")).WithArgs("l1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "l1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryDeleteMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM notes").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM resources").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM todos").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM lessons").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
