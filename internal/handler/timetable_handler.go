package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	"github.com/noah-isme/lesson-planner-api/pkg/response"
)

type timetableService interface {
	List(ctx context.Context, cycleDay *int) ([]models.TimetableEntry, error)
	Set(ctx context.Context, cycleDay, period int, req dto.SetTimetableEntryRequest) (*models.TimetableEntry, error)
	Clear(ctx context.Context, cycleDay, period int) error
	Periods(ctx context.Context) ([]models.Period, error)
}

// TimetableHandler exposes the default subject per cycle slot and period metadata.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler builds a timetable handler.
func NewTimetableHandler(service timetableService) *TimetableHandler {
	return &TimetableHandler{service: service}
}

// List godoc
// @Summary List timetable entries
// @Tags Timetable
// @Produce json
// @Param cycle_day query int false "Restrict to one cycle day"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	cycleDay, err := optionalIntQuery(c, "cycle_day")
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.service.List(c.Request.Context(), cycleDay)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

func slotParams(c *gin.Context) (int, int, bool) {
	cycleDay, err := intParam(c, "cycle_day")
	if err != nil {
		response.Error(c, err)
		return 0, 0, false
	}
	period, err := intParam(c, "period")
	if err != nil {
		response.Error(c, err)
		return 0, 0, false
	}
	return cycleDay, period, true
}

// Set godoc
// @Summary Assign a subject to a cycle slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param cycle_day path int true "Cycle day"
// @Param period path int true "Period"
// @Param payload body dto.SetTimetableEntryRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/{cycle_day}/{period} [put]
func (h *TimetableHandler) Set(c *gin.Context) {
	cycleDay, period, ok := slotParams(c)
	if !ok {
		return
	}
	var req dto.SetTimetableEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.service.Set(c.Request.Context(), cycleDay, period, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Clear godoc
// @Summary Clear a cycle slot
// @Tags Timetable
// @Param cycle_day path int true "Cycle day"
// @Param period path int true "Period"
// @Success 204
// @Router /timetable/{cycle_day}/{period} [delete]
func (h *TimetableHandler) Clear(c *gin.Context) {
	cycleDay, period, ok := slotParams(c)
	if !ok {
		return
	}
	if err := h.service.Clear(c.Request.Context(), cycleDay, period); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Periods godoc
// @Summary List period metadata
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /periods [get]
func (h *TimetableHandler) Periods(c *gin.Context) {
	periods, err := h.service.Periods(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}
