package handler

import (
	"context"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/middleware"
	"github.com/noah-isme/lesson-planner-api/internal/service"
	"github.com/noah-isme/lesson-planner-api/pkg/response"
)

type weekService interface {
	AssembleWeek(ctx context.Context, weekStart time.Time) (*dto.WeekTimetable, error)
}

type exportService interface {
	ExportWeek(ctx context.Context, weekStart time.Time, format service.ExportFormat) (*service.ExportResult, error)
	Open(token string) (*os.File, string, error)
}

// WeekHandler serves the assembled week view and its exports.
type WeekHandler struct {
	weeks   weekService
	exports exportService
	now     func() time.Time
}

// NewWeekHandler constructs a week handler.
func NewWeekHandler(weeks weekService, exports exportService) *WeekHandler {
	return &WeekHandler{weeks: weeks, exports: exports, now: time.Now}
}

// Week godoc
// @Summary Assembled week timetable
// @Description Monday to Friday view with cycle days, lessons and their attachments. Any date in the week is accepted.
// @Description The WeekTimetable is returned under data in the standard envelope, with lesson_count and instructional_days under meta.
// @Tags Lessons
// @Produce json
// @Param start_date query string false "Date within the week (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lessons/week [get]
func (h *WeekHandler) Week(c *gin.Context) {
	start, err := dateQuery(c, "start_date", h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	week, err := h.weeks.AssembleWeek(c.Request.Context(), start)
	if err != nil {
		response.Error(c, err)
		return
	}
	lessons, instructional := 0, 0
	for _, day := range week.Days {
		lessons += len(day.Lessons)
		if day.CycleDay != nil {
			instructional++
		}
	}
	middleware.SetMeta(c, "lesson_count", lessons)
	middleware.SetMeta(c, "instructional_days", instructional)
	response.JSON(c, http.StatusOK, week, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export week plan
// @Tags Lessons
// @Produce json
// @Param start_date query string false "Date within the week (YYYY-MM-DD)"
// @Param format query string false "csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /lessons/week/export [get]
func (h *WeekHandler) Export(c *gin.Context) {
	start, err := dateQuery(c, "start_date", h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.ExportWeek(c.Request.Context(), start, service.ParseExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.WeekExportResult{
		URL:       result.URL,
		Format:    string(result.Format),
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	}, nil)
}

// Download godoc
// @Summary Download a rendered week plan
// @Tags Lessons
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /exports/download [get]
func (h *WeekHandler) Download(c *gin.Context) {
	file, relPath, err := h.exports.Open(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, err)
		return
	}
	contentType := "text/csv"
	if path.Ext(relPath) == ".pdf" {
		contentType = "application/pdf"
	}
	response.Attachment(c, path.Base(relPath), contentType, info.Size(), file)
}
