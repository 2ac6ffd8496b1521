package dto

import (
	"time"

	"github.com/noah-isme/lesson-planner-api/internal/cycle"
	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// SettingsResponse exposes the planner configuration.
type SettingsResponse struct {
	PeriodsPerDay   int     `json:"periods_per_day"`
	CurrentYear     int     `json:"current_year"`
	CurrentSemester int     `json:"current_semester"`
	CycleLength     int     `json:"cycle_length"`
	CycleStartDate  *string `json:"cycle_start_date"`
	UpdatedAt       string  `json:"updated_at"`
}

// UpdateSettingsRequest changes any subset of the settings.
type UpdateSettingsRequest struct {
	PeriodsPerDay   *int    `json:"periods_per_day" validate:"omitempty,min=1,max=12"`
	CurrentYear     *int    `json:"current_year" validate:"omitempty,min=2000,max=2100"`
	CurrentSemester *int    `json:"current_semester" validate:"omitempty,oneof=1 2"`
	CycleLength     *int    `json:"cycle_length" validate:"omitempty,min=1,max=60"`
	CycleStartDate  *string `json:"cycle_start_date" validate:"omitempty,datetime=2006-01-02"`
}

// CreateExclusionRequest removes a weekday from the rotation.
type CreateExclusionRequest struct {
	Date   string  `json:"date" validate:"required,datetime=2006-01-02"`
	Reason *string `json:"reason" validate:"omitempty,max=255"`
}

// ExclusionResponse is the wire form of an exclusion date.
type ExclusionResponse struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Reason *string `json:"reason"`
}

// SetTimetableEntryRequest assigns a default subject to a cycle slot.
type SetTimetableEntryRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
}

// NewSettingsResponse converts stored settings.
func NewSettingsResponse(settings models.Settings) SettingsResponse {
	resp := SettingsResponse{
		PeriodsPerDay:   settings.PeriodsPerDay,
		CurrentYear:     settings.CurrentYear,
		CurrentSemester: settings.CurrentSemester,
		CycleLength:     settings.CycleLength,
		UpdatedAt:       settings.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if settings.CycleStartDate != nil {
		anchor := cycle.FormatDate(*settings.CycleStartDate)
		resp.CycleStartDate = &anchor
	}
	return resp
}

// NewExclusionResponses converts stored exclusion dates.
func NewExclusionResponses(exclusions []models.ExclusionDate) []ExclusionResponse {
	items := make([]ExclusionResponse, 0, len(exclusions))
	for _, exclusion := range exclusions {
		items = append(items, NewExclusionResponse(exclusion))
	}
	return items
}

// NewExclusionResponse converts a stored exclusion date.
func NewExclusionResponse(exclusion models.ExclusionDate) ExclusionResponse {
	return ExclusionResponse{ID: exclusion.ID, Date: cycle.FormatDate(exclusion.Date), Reason: exclusion.Reason}
}
