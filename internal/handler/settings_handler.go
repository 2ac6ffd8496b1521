package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	"github.com/noah-isme/lesson-planner-api/pkg/response"
)

type settingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, req dto.UpdateSettingsRequest) (*models.Settings, error)
	SetPeriodsPerDay(ctx context.Context, periods int) (*models.Settings, error)
	CycleDay(ctx context.Context, date time.Time) (*dto.CycleDayInfo, error)
	ListExclusions(ctx context.Context) ([]models.ExclusionDate, error)
	AddExclusion(ctx context.Context, req dto.CreateExclusionRequest) (*models.ExclusionDate, error)
	RemoveExclusion(ctx context.Context, date time.Time) error
}

// SettingsHandler exposes the planner settings, which double as the cycle
// calendar configuration.
type SettingsHandler struct {
	service settingsService
	now     func() time.Time
}

// NewSettingsHandler builds a settings handler.
func NewSettingsHandler(service settingsService) *SettingsHandler {
	return &SettingsHandler{service: service, now: time.Now}
}

// Get godoc
// @Summary Get planner settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSettingsResponse(*settings), nil)
}

// Update godoc
// @Summary Update planner settings
// @Description Changes to cycle_length or cycle_start_date are rejected with CONFIGURATION_ERROR when they would leave the calendar unusable.
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.UpdateSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	settings, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSettingsResponse(*settings), nil)
}

// SetPeriods godoc
// @Summary Set periods per day
// @Tags Settings
// @Produce json
// @Param periods query int true "Periods per day (1-12)"
// @Success 200 {object} response.Envelope
// @Router /settings/periods [put]
func (h *SettingsHandler) SetPeriods(c *gin.Context) {
	periods, err := strconv.Atoi(c.Query("periods"))
	if err != nil {
		response.Error(c, invalidParam(err, "periods"))
		return
	}
	settings, err := h.service.SetPeriodsPerDay(c.Request.Context(), periods)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSettingsResponse(*settings), nil)
}

// CycleDay godoc
// @Summary Resolve the cycle day of a date
// @Tags Settings
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Router /settings/cycle-day [get]
func (h *SettingsHandler) CycleDay(c *gin.Context) {
	date, err := dateQuery(c, "date", h.now)
	if err != nil {
		response.Error(c, err)
		return
	}
	info, err := h.service.CycleDay(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// ListExclusions godoc
// @Summary List exclusion dates
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/exclusions [get]
func (h *SettingsHandler) ListExclusions(c *gin.Context) {
	exclusions, err := h.service.ListExclusions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewExclusionResponses(exclusions), nil)
}

// AddExclusion godoc
// @Summary Exclude a weekday from the rotation
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.CreateExclusionRequest true "Exclusion payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /settings/exclusions [post]
func (h *SettingsHandler) AddExclusion(c *gin.Context) {
	var req dto.CreateExclusionRequest
	if !bindJSON(c, &req) {
		return
	}
	exclusion, err := h.service.AddExclusion(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewExclusionResponse(*exclusion))
}

// RemoveExclusion godoc
// @Summary Return a date to the rotation
// @Tags Settings
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 204
// @Router /settings/exclusions/{date} [delete]
func (h *SettingsHandler) RemoveExclusion(c *gin.Context) {
	date, err := parseDate(c.Param("date"), "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.RemoveExclusion(c.Request.Context(), date); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
