package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

type timetableRepository interface {
	List(ctx context.Context, cycleDay *int) ([]models.TimetableEntry, error)
	Upsert(ctx context.Context, entry *models.TimetableEntry) error
	Delete(ctx context.Context, cycleDay, period int) error
}

type periodRepository interface {
	List(ctx context.Context) ([]models.Period, error)
}

type settingsReader interface {
	Get(ctx context.Context) (*models.Settings, error)
}

// TimetableService manages the default subject for each (cycle day, period)
// slot and exposes period reference data.
type TimetableService struct {
	entries   timetableRepository
	periods   periodRepository
	subjects  subjectFinder
	settings  settingsReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(entries timetableRepository, periods periodRepository, subjects subjectFinder, settings settingsReader, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		entries:   entries,
		periods:   periods,
		subjects:  subjects,
		settings:  settings,
		validator: validate,
		logger:    logger,
	}
}

// List returns timetable entries, optionally restricted to one cycle day.
func (s *TimetableService) List(ctx context.Context, cycleDay *int) ([]models.TimetableEntry, error) {
	entries, err := s.entries.List(ctx, cycleDay)
	if err != nil {
		return nil, internalError(err, "failed to list timetable")
	}
	if entries == nil {
		entries = []models.TimetableEntry{}
	}
	return entries, nil
}

// Set assigns a subject to a slot.
func (s *TimetableService) Set(ctx context.Context, cycleDay, period int, req dto.SetTimetableEntryRequest) (*models.TimetableEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid timetable payload")
	}
	if err := s.checkSlot(ctx, cycleDay, period); err != nil {
		return nil, err
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, validationError(nil, "subject not found")
		}
		return nil, internalError(err, "failed to load subject")
	}

	entry := &models.TimetableEntry{CycleDay: cycleDay, Period: period, SubjectID: req.SubjectID}
	if err := s.entries.Upsert(ctx, entry); err != nil {
		return nil, internalError(err, "failed to save timetable entry")
	}
	return entry, nil
}

// Clear empties a slot.
func (s *TimetableService) Clear(ctx context.Context, cycleDay, period int) error {
	if err := s.entries.Delete(ctx, cycleDay, period); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable entry not found")
		}
		return internalError(err, "failed to clear timetable entry")
	}
	return nil
}

// Periods returns period reference metadata.
func (s *TimetableService) Periods(ctx context.Context) ([]models.Period, error) {
	periods, err := s.periods.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list periods")
	}
	if periods == nil {
		periods = []models.Period{}
	}
	return periods, nil
}

func (s *TimetableService) checkSlot(ctx context.Context, cycleDay, period int) error {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if cycleDay < 1 || cycleDay > settings.CycleLength {
		return validationError(nil, fmt.Sprintf("cycle day must be between 1 and %d", settings.CycleLength))
	}
	if period < 1 || period > settings.PeriodsPerDay {
		return validationError(nil, fmt.Sprintf("period must be between 1 and %d", settings.PeriodsPerDay))
	}
	return nil
}
