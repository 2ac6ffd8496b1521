package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/cycle"
	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

type lessonRepository interface {
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	FindBySlot(ctx context.Context, date time.Time, period int) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
}

type subjectFinder interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// LessonService manages planned lessons. A lesson's cycle_day is recorded when
// it is placed on a date and re-recorded only when it moves to another date.
type LessonService struct {
	lessons     lessonRepository
	subjects    subjectFinder
	calendars   calendarSource
	attachments AttachmentSources
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewLessonService constructs a LessonService.
func NewLessonService(lessons lessonRepository, subjects subjectFinder, calendars calendarSource, attachments AttachmentSources, validate *validator.Validate, logger *zap.Logger) *LessonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonService{
		lessons:     lessons,
		subjects:    subjects,
		calendars:   calendars,
		attachments: attachments,
		validator:   validate,
		logger:      logger,
	}
}

// Get returns a lesson with its subject and attachments.
func (s *LessonService) Get(ctx context.Context, id string) (*dto.LessonDetail, error) {
	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, lesson, nil)
}

// Create places a subject in a free (date, period) slot on an instructional day.
func (s *LessonService) Create(ctx context.Context, req dto.CreateLessonRequest) (*dto.LessonDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid lesson payload")
	}
	date, err := cycle.ParseDate(req.Date)
	if err != nil {
		return nil, validationError(err, "invalid lesson date")
	}

	cal, settings, err := s.calendars.Calendar(ctx)
	if err != nil {
		return nil, err
	}
	placement := cal.CycleDayFor(date)
	if err := checkPlacement(placement, req.Period, settings); err != nil {
		return nil, err
	}

	subject, err := s.resolveSubject(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlotFree(ctx, date, req.Period, ""); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		Date:      date,
		Period:    req.Period,
		SubjectID: subject.ID,
		CycleDay:  placement.CycleDay,
		Title:     req.Title,
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		if isUniqueViolation(err) {
			return nil, slotTaken(date, req.Period)
		}
		return nil, internalError(err, "failed to create lesson")
	}

	s.logger.Debug("lesson created",
		zap.String("lesson_id", lesson.ID),
		zap.String("date", cycle.FormatDate(date)),
		zap.Int("period", lesson.Period),
	)
	detail := dto.NewLessonDetail(*lesson, subject)
	return &detail, nil
}

// Update changes any subset of a lesson's date, period, subject and title.
func (s *LessonService) Update(ctx context.Context, id string, req dto.UpdateLessonRequest) (*dto.LessonDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid lesson payload")
	}
	lesson, err := s.findLesson(ctx, id)
	if err != nil {
		return nil, err
	}

	moved := false
	if req.Date != nil {
		date, err := cycle.ParseDate(*req.Date)
		if err != nil {
			return nil, validationError(err, "invalid lesson date")
		}
		moved = moved || !date.Equal(cycle.Normalize(lesson.Date))
		lesson.Date = date
	}
	if req.Period != nil {
		moved = moved || *req.Period != lesson.Period
		lesson.Period = *req.Period
	}

	if moved {
		cal, settings, err := s.calendars.Calendar(ctx)
		if err != nil {
			return nil, err
		}
		placement := cal.CycleDayFor(lesson.Date)
		if err := checkPlacement(placement, lesson.Period, settings); err != nil {
			return nil, err
		}
		if err := s.ensureSlotFree(ctx, lesson.Date, lesson.Period, lesson.ID); err != nil {
			return nil, err
		}
		lesson.CycleDay = placement.CycleDay
	}

	var subject *models.Subject
	if req.SubjectID != nil {
		subject, err = s.resolveSubject(ctx, *req.SubjectID)
		if err != nil {
			return nil, err
		}
		lesson.SubjectID = subject.ID
	}
	if req.Title != nil {
		lesson.Title = req.Title
	}

	if err := s.lessons.Update(ctx, lesson); err != nil {
		if isUniqueViolation(err) {
			return nil, slotTaken(lesson.Date, lesson.Period)
		}
		return nil, internalError(err, "failed to update lesson")
	}
	return s.detail(ctx, lesson, subject)
}

// Delete removes a lesson and its attachments.
func (s *LessonService) Delete(ctx context.Context, id string) error {
	if err := s.lessons.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return internalError(err, "failed to delete lesson")
	}
	return nil
}

func (s *LessonService) findLesson(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, internalError(err, "failed to load lesson")
	}
	return lesson, nil
}

func (s *LessonService) resolveSubject(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, validationError(nil, "subject not found")
		}
		return nil, internalError(err, "failed to load subject")
	}
	return subject, nil
}

func (s *LessonService) ensureSlotFree(ctx context.Context, date time.Time, period int, lessonID string) error {
	existing, err := s.lessons.FindBySlot(ctx, date, period)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return internalError(err, "failed to check lesson slot")
	}
	if existing.ID == lessonID {
		return nil
	}
	return slotTaken(date, period)
}

func (s *LessonService) detail(ctx context.Context, lesson *models.Lesson, subject *models.Subject) (*dto.LessonDetail, error) {
	if subject == nil {
		found, err := s.subjects.FindByID(ctx, lesson.SubjectID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, internalError(err, "failed to load subject")
		}
		subject = found
	}
	detail := dto.NewLessonDetail(*lesson, subject)
	if err := s.attachments.load(ctx, &detail); err != nil {
		return nil, internalError(err, "failed to load lesson attachments")
	}
	return &detail, nil
}

func checkPlacement(placement cycle.Result, period int, settings *models.Settings) error {
	if !placement.Instructional() {
		return validationError(nil, fmt.Sprintf("%s is not an instructional day", cycle.FormatDate(placement.Date)))
	}
	if period < 1 || period > settings.PeriodsPerDay {
		return validationError(nil, fmt.Sprintf("period must be between 1 and %d", settings.PeriodsPerDay))
	}
	return nil
}

func slotTaken(date time.Time, period int) error {
	return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a lesson already exists on %s in period %d", cycle.FormatDate(date), period))
}
