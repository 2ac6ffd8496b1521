package service

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/cycle"
	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

const (
	calendarCacheKey     = "planner:calendar"
	calendarCachePattern = "planner:calendar*"

	minPeriodsPerDay = 1
	maxPeriodsPerDay = 12
)

type settingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Create(ctx context.Context, settings *models.Settings) error
	Update(ctx context.Context, settings *models.Settings) error
}

type exclusionRepository interface {
	List(ctx context.Context) ([]models.ExclusionDate, error)
	FindByDate(ctx context.Context, date time.Time) (*models.ExclusionDate, error)
	Create(ctx context.Context, exclusion *models.ExclusionDate) error
	DeleteByDate(ctx context.Context, date time.Time) error
}

// SettingsDefaults seeds the settings row the first time it is read.
type SettingsDefaults struct {
	PeriodsPerDay   int
	CycleLength     int
	CycleStartDate  string
	CurrentYear     int
	CurrentSemester int
}

// SettingsService owns the planner settings, exclusion dates and the cycle
// calendar derived from them.
type SettingsService struct {
	repo       settingsRepository
	exclusions exclusionRepository
	cache      *CacheService
	cacheTTL   time.Duration
	validator  *validator.Validate
	logger     *zap.Logger
	seed       models.Settings

	// generation counts calendar invalidations.
	generation atomic.Uint64
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingsRepository, exclusions exclusionRepository, cache *CacheService, cacheTTL time.Duration, defaults SettingsDefaults, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	seed := models.Settings{
		PeriodsPerDay:   defaults.PeriodsPerDay,
		CycleLength:     defaults.CycleLength,
		CurrentYear:     defaults.CurrentYear,
		CurrentSemester: defaults.CurrentSemester,
	}
	if seed.PeriodsPerDay < minPeriodsPerDay || seed.PeriodsPerDay > maxPeriodsPerDay {
		seed.PeriodsPerDay = 6
	}
	if seed.CycleLength <= 0 {
		seed.CycleLength = cycle.DefaultLength
	}
	if seed.CurrentYear == 0 {
		seed.CurrentYear = time.Now().Year()
	}
	if seed.CurrentSemester != 2 {
		seed.CurrentSemester = 1
	}
	if defaults.CycleStartDate != "" {
		anchor, err := cycle.ParseDate(defaults.CycleStartDate)
		if err != nil {
			logger.Warn("ignoring invalid default cycle start date", zap.String("value", defaults.CycleStartDate), zap.Error(err))
		} else {
			seed.CycleStartDate = &anchor
		}
	}

	return &SettingsService{
		repo:       repo,
		exclusions: exclusions,
		cache:      cache,
		cacheTTL:   cacheTTL,
		validator:  validate,
		logger:     logger,
		seed:       seed,
	}
}

// Get returns the settings row, creating it from defaults on first access.
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, internalError(err, "failed to load settings")
	}

	seed := s.seed
	if err := s.repo.Create(ctx, &seed); err != nil {
		return nil, internalError(err, "failed to create settings")
	}
	// re-read so a concurrent initialiser's row wins
	settings, err = s.repo.Get(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load settings")
	}
	s.logger.Info("settings initialised from defaults",
		zap.Int("periods_per_day", settings.PeriodsPerDay),
		zap.Int("cycle_length", settings.CycleLength),
	)
	return settings, nil
}

// Update applies any subset of settings fields. Changes to the rotation are
// rejected when they would leave the calendar unusable.
func (s *SettingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest) (*models.Settings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid settings payload")
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	updated := *current

	if req.PeriodsPerDay != nil {
		updated.PeriodsPerDay = *req.PeriodsPerDay
	}
	if req.CurrentYear != nil {
		updated.CurrentYear = *req.CurrentYear
	}
	if req.CurrentSemester != nil {
		updated.CurrentSemester = *req.CurrentSemester
	}
	if req.CycleLength != nil {
		updated.CycleLength = *req.CycleLength
	}
	if req.CycleStartDate != nil {
		anchor, err := cycle.ParseDate(*req.CycleStartDate)
		if err != nil {
			return nil, validationError(err, "invalid cycle_start_date")
		}
		updated.CycleStartDate = &anchor
	}

	if req.CycleLength != nil || req.CycleStartDate != nil {
		snapshot, err := s.loadSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		snapshot.Settings = updated
		if _, err := snapshot.calendar(); err != nil {
			return nil, configurationError(err)
		}
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, internalError(err, "failed to update settings")
	}
	s.invalidate(ctx)
	return &updated, nil
}

// SetPeriodsPerDay changes only the number of teaching periods per day.
func (s *SettingsService) SetPeriodsPerDay(ctx context.Context, periods int) (*models.Settings, error) {
	if periods < minPeriodsPerDay || periods > maxPeriodsPerDay {
		return nil, validationError(nil, "periods per day must be between 1 and 12")
	}
	return s.Update(ctx, dto.UpdateSettingsRequest{PeriodsPerDay: &periods})
}

// Calendar returns the cycle calendar for the stored configuration together
// with the settings it was built from.
func (s *SettingsService) Calendar(ctx context.Context) (*cycle.Calendar, *models.Settings, error) {
	gen := s.generation.Load()
	fresh := func() bool { return s.generation.Load() == gen }
	snapshot, _, err := cachedLoad(ctx, s.cache, calendarCacheKey, s.cacheTTL, s.loadSnapshot, fresh)
	if err != nil {
		return nil, nil, err
	}
	cal, err := snapshot.calendar()
	if err != nil {
		return nil, nil, configurationError(err)
	}
	settings := snapshot.Settings
	return cal, &settings, nil
}

// CycleDay resolves the cycle position of a single date.
func (s *SettingsService) CycleDay(ctx context.Context, date time.Time) (*dto.CycleDayInfo, error) {
	cal, _, err := s.Calendar(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewCycleDayInfo(cal.CycleDayFor(date)), nil
}

// ListExclusions returns every exclusion date in ascending order.
func (s *SettingsService) ListExclusions(ctx context.Context) ([]models.ExclusionDate, error) {
	exclusions, err := s.exclusions.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list exclusion dates")
	}
	return exclusions, nil
}

// AddExclusion removes a weekday from the rotation.
func (s *SettingsService) AddExclusion(ctx context.Context, req dto.CreateExclusionRequest) (*models.ExclusionDate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid exclusion payload")
	}
	date, err := cycle.ParseDate(req.Date)
	if err != nil {
		return nil, validationError(err, "invalid date")
	}
	if cycle.IsWeekend(date) {
		return nil, validationError(nil, "weekends are never instructional")
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings.CycleStartDate != nil && cycle.Normalize(*settings.CycleStartDate).Equal(date) {
		return nil, appErrors.Clone(appErrors.ErrConfiguration, "the cycle start date cannot be excluded")
	}

	if _, err := s.exclusions.FindByDate(ctx, date); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "date is already excluded")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, internalError(err, "failed to check exclusion date")
	}

	exclusion := &models.ExclusionDate{Date: date, Reason: req.Reason}
	if err := s.exclusions.Create(ctx, exclusion); err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "date is already excluded")
		}
		return nil, internalError(err, "failed to create exclusion date")
	}
	s.invalidate(ctx)
	return exclusion, nil
}

// RemoveExclusion returns a date to the rotation.
func (s *SettingsService) RemoveExclusion(ctx context.Context, date time.Time) error {
	if err := s.exclusions.DeleteByDate(ctx, cycle.Normalize(date)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exclusion date not found")
		}
		return internalError(err, "failed to delete exclusion date")
	}
	s.invalidate(ctx)
	return nil
}

func (s *SettingsService) invalidate(ctx context.Context) {
	s.generation.Add(1)
	if err := s.cache.Invalidate(ctx, calendarCachePattern); err != nil {
		s.logger.Warn("calendar cache not invalidated", zap.Error(err))
	}
}

func (s *SettingsService) loadSnapshot(ctx context.Context) (calendarSnapshot, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return calendarSnapshot{}, err
	}
	exclusions, err := s.exclusions.List(ctx)
	if err != nil {
		return calendarSnapshot{}, internalError(err, "failed to list exclusion dates")
	}
	snapshot := calendarSnapshot{Settings: *settings, Exclusions: make([]time.Time, 0, len(exclusions))}
	for _, exclusion := range exclusions {
		snapshot.Exclusions = append(snapshot.Exclusions, exclusion.Date)
	}
	return snapshot, nil
}

// calendarSnapshot is the cached input of a cycle calendar.
type calendarSnapshot struct {
	Settings   models.Settings `json:"settings"`
	Exclusions []time.Time     `json:"exclusions"`
}

func (s calendarSnapshot) calendar() (*cycle.Calendar, error) {
	cfg := cycle.Config{Length: s.Settings.CycleLength, ExclusionDates: s.Exclusions}
	if s.Settings.CycleStartDate != nil {
		cfg.Anchor = *s.Settings.CycleStartDate
	}
	return cycle.New(cfg)
}
