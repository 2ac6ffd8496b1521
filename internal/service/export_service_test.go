package service

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
	"github.com/noah-isme/lesson-planner-api/pkg/export"
	"github.com/noah-isme/lesson-planner-api/pkg/storage"
)

type weekAssemblerStub struct {
	week *dto.WeekTimetable
	err  error
	got  time.Time
}

func (s *weekAssemblerStub) AssembleWeek(ctx context.Context, weekStart time.Time) (*dto.WeekTimetable, error) {
	s.got = weekStart
	return s.week, s.err
}

func sampleWeek() *dto.WeekTimetable {
	labelA := "A"
	lesson := dto.LessonDetail{
		ID:        "lesson-1",
		Date:      "2025-01-27",
		Period:    2,
		SubjectID: "subject-1",
		CycleDay:  intPtr(1),
		Title:     strPtr("Fractions"),
		Subject:   &models.Subject{ID: "subject-1", Name: "Maths"},
		Notes:     []models.Note{{ID: "n1"}},
		Resources: []models.Resource{},
		Todos:     []dto.TodoItem{{ID: "t1"}, {ID: "t2", IsCompleted: true}},
	}
	return &dto.WeekTimetable{
		WeekStart:     "2025-01-27",
		WeekEnd:       "2025-01-31",
		PrimaryWeek:   &labelA,
		PeriodsPerDay: 6,
		Days: []dto.DayInfo{
			{Date: "2025-01-27", WeekdayName: "Monday", CycleDay: intPtr(1), WeekLabel: &labelA, Lessons: []dto.LessonDetail{lesson}},
			{Date: "2025-01-28", WeekdayName: "Tuesday", Lessons: []dto.LessonDetail{}},
		},
	}
}

func newExportServiceForTest(t *testing.T, weeks weekAssembler) (*ExportService, *storage.LocalStorage, *MetricsService) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	metrics := NewMetricsService()
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(weeks, store, signer, cfg, metrics, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return svc, store, metrics
}

func TestExportServiceExportWeekCSV(t *testing.T) {
	weeks := &weekAssemblerStub{week: sampleWeek()}
	svc, _, metrics := newExportServiceForTest(t, weeks)

	result, err := svc.ExportWeek(context.Background(), mustDate(t, "2025-01-29"), ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2025-01-29"), weeks.got)
	assert.True(t, strings.HasPrefix(result.RelativePath, "weeks/2025-01-27_"))
	assert.True(t, strings.HasSuffix(result.RelativePath, ".csv"))
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/exports/download?token="))

	parsed, err := url.Parse(result.URL)
	require.NoError(t, err)
	assert.Equal(t, result.Token, parsed.Query().Get("token"))

	file, rel, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	assert.Equal(t, result.RelativePath, rel)
	body, err := io.ReadAll(file)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Day,Cycle Day,Week,Period,Subject,Title,Notes,Resources,Open Todos", lines[0])
	assert.Equal(t, "2025-01-27,Monday,1,A,2,Maths,Fractions,1,0,1", lines[1])
	assert.Equal(t, "2025-01-28,Tuesday,,,,No school,,,,", lines[2])

	assert.EqualValues(t, 1, metrics.Snapshot().ExportsGenerated)
}

func TestExportServiceExportWeekPDF(t *testing.T) {
	svc, store, _ := newExportServiceForTest(t, &weekAssemblerStub{week: sampleWeek()})

	result, err := svc.ExportWeek(context.Background(), mustDate(t, "2025-01-27"), ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, ExportFormatPDF, result.Format)
	assert.NotEmpty(t, store.Path(result.RelativePath))

	file, _, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	head := make([]byte, 4)
	_, err = io.ReadFull(file, head)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(head))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	weeks := &weekAssemblerStub{week: sampleWeek()}
	svc, _, metrics := newExportServiceForTest(t, weeks)

	_, err := svc.ExportWeek(context.Background(), mustDate(t, "2025-01-27"), ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.True(t, weeks.got.IsZero())
	assert.Zero(t, metrics.Snapshot().ExportsGenerated)
}

func TestExportServicePropagatesAssemblyFailure(t *testing.T) {
	failure := appErrors.Clone(appErrors.ErrConfiguration, "cycle start date is not configured")
	svc, _, _ := newExportServiceForTest(t, &weekAssemblerStub{err: failure})

	_, err := svc.ExportWeek(context.Background(), mustDate(t, "2025-01-27"), ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConfiguration.Code, appErrors.FromError(err).Code)
}

func TestExportServiceOpenRejectsBadToken(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, &weekAssemblerStub{week: sampleWeek()})

	_, _, err := svc.Open("garbage")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestParseExportFormat(t *testing.T) {
	assert.Equal(t, ExportFormatCSV, ParseExportFormat(""))
	assert.Equal(t, ExportFormatCSV, ParseExportFormat("CSV"))
	assert.Equal(t, ExportFormatPDF, ParseExportFormat(" pdf "))
	assert.Equal(t, ExportFormat("xlsx"), ParseExportFormat("XLSX"))
}
