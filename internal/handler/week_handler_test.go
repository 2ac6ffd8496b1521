package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/service"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

type weekServiceMock struct {
	resp      *dto.WeekTimetable
	err       error
	lastStart time.Time
	called    bool
}

func (m *weekServiceMock) AssembleWeek(ctx context.Context, weekStart time.Time) (*dto.WeekTimetable, error) {
	m.called = true
	m.lastStart = weekStart
	return m.resp, m.err
}

type exportServiceMock struct {
	result     *service.ExportResult
	err        error
	lastFormat service.ExportFormat
	file       string
}

func (m *exportServiceMock) ExportWeek(ctx context.Context, weekStart time.Time, format service.ExportFormat) (*service.ExportResult, error) {
	m.lastFormat = format
	return m.result, m.err
}

func (m *exportServiceMock) Open(token string) (*os.File, string, error) {
	if token != "good" {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export link is invalid or has expired")
	}
	f, err := os.Open(m.file)
	return f, "weeks/" + filepath.Base(m.file), err
}

func TestWeekHandlerWeek(t *testing.T) {
	label := "A"
	days := []dto.DayInfo{
		{Date: "2025-01-27", CycleDay: intPtr(1), Lessons: []dto.LessonDetail{{ID: "l-1"}, {ID: "l-2"}}},
		{Date: "2025-01-28", Lessons: []dto.LessonDetail{}},
		{Date: "2025-01-29", CycleDay: intPtr(2), Lessons: []dto.LessonDetail{{ID: "l-3"}}},
	}
	svc := &weekServiceMock{resp: &dto.WeekTimetable{WeekStart: "2025-01-27", WeekEnd: "2025-01-31", PrimaryWeek: &label, Days: days}}
	h := NewWeekHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodGet, "/lessons/week?start_date=2025-01-29", "")
	h.Week(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2025, 1, 29, 0, 0, 0, 0, time.UTC), svc.lastStart)
	env := decodeEnvelope(t, w)
	assert.EqualValues(t, 3, env.Meta["lesson_count"])
	assert.EqualValues(t, 2, env.Meta["instructional_days"])
	var week dto.WeekTimetable
	require.NoError(t, json.Unmarshal(env.Data, &week))
	assert.Equal(t, "2025-01-27", week.WeekStart)
	assert.Equal(t, "A", *week.PrimaryWeek)
}

func TestWeekHandlerDefaultsToToday(t *testing.T) {
	svc := &weekServiceMock{resp: &dto.WeekTimetable{}}
	h := NewWeekHandler(svc, &exportServiceMock{})
	h.now = func() time.Time { return time.Date(2025, 3, 5, 14, 0, 0, 0, time.UTC) }

	c, w := newTestContext(http.MethodGet, "/lessons/week", "")
	h.Week(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), svc.lastStart)
}

func TestWeekHandlerRejectsMalformedDate(t *testing.T) {
	svc := &weekServiceMock{}
	h := NewWeekHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodGet, "/lessons/week?start_date=27-01-2025", "")
	h.Week(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.called)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, w).Error.Code)
}

func TestWeekHandlerConfigurationError(t *testing.T) {
	svc := &weekServiceMock{err: appErrors.Clone(appErrors.ErrConfiguration, "cycle start date is not configured")}
	h := NewWeekHandler(svc, &exportServiceMock{})

	c, w := newTestContext(http.MethodGet, "/lessons/week?start_date=2025-01-27", "")
	h.Week(c)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFIGURATION_ERROR", decodeEnvelope(t, w).Error.Code)
}

func TestWeekHandlerExport(t *testing.T) {
	exports := &exportServiceMock{result: &service.ExportResult{
		URL:       "/api/v1/exports/download?token=abc",
		Format:    service.ExportFormatPDF,
		ExpiresAt: time.Date(2025, 1, 27, 10, 0, 0, 0, time.UTC),
	}}
	h := NewWeekHandler(&weekServiceMock{}, exports)

	c, w := newTestContext(http.MethodGet, "/lessons/week/export?start_date=2025-01-27&format=PDF", "")
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ExportFormatPDF, exports.lastFormat)
	var result dto.WeekExportResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &result))
	assert.Equal(t, "/api/v1/exports/download?token=abc", result.URL)
	assert.Equal(t, "2025-01-27T10:00:00Z", result.ExpiresAt)
}

func TestWeekHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2025-01-27_abcd.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Day\n"), 0o600))
	h := NewWeekHandler(&weekServiceMock{}, &exportServiceMock{file: path})

	c, w := newTestContext(http.MethodGet, "/exports/download?token=good", "")
	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "2025-01-27_abcd.csv")
	assert.Equal(t, "Date,Day\n", w.Body.String())

	c, w = newTestContext(http.MethodGet, "/exports/download?token=bad", "")
	h.Download(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
