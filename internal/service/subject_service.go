package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
}

// SubjectService handles subject workflows.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// List returns subjects matching filter. When filter.PageSize is set the
// result is a single page and pagination metadata is returned.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	subjects, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	if filter.PageSize <= 0 {
		return subjects, nil, nil
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pagination := &models.Pagination{Page: page, PageSize: filter.PageSize, TotalCount: len(subjects)}
	start := (page - 1) * filter.PageSize
	if start >= len(subjects) {
		return []models.Subject{}, pagination, nil
	}
	end := start + filter.PageSize
	if end > len(subjects) {
		end = len(subjects)
	}
	return subjects[start:end], pagination, nil
}

// Get returns subject by identifier.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, internalError(err, "failed to load subject")
	}
	return subject, nil
}

// Create adds a new subject. Subjects are active unless stated otherwise.
func (s *SubjectService) Create(ctx context.Context, req dto.CreateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}

	subject := &models.Subject{
		Name:         strings.TrimSpace(req.Name),
		Code:         normaliseCode(req.Code),
		YearLevel:    req.YearLevel,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		Room:         req.Room,
		Colour:       req.Colour,
		Notes:        req.Notes,
		IsActive:     true,
	}
	if req.IsActive != nil {
		subject.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, internalError(err, "failed to create subject")
	}
	return subject, nil
}

// Update modifies an existing subject. Setting is_active=false retires a
// subject without deleting its lessons.
func (s *SubjectService) Update(ctx context.Context, id string, req dto.UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid subject payload")
	}

	subject, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		subject.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		subject.Code = normaliseCode(req.Code)
	}
	if req.YearLevel != nil {
		subject.YearLevel = req.YearLevel
	}
	if req.AcademicYear != nil {
		subject.AcademicYear = *req.AcademicYear
	}
	if req.Semester != nil {
		subject.Semester = *req.Semester
	}
	if req.Room != nil {
		subject.Room = req.Room
	}
	if req.Colour != nil {
		subject.Colour = req.Colour
	}
	if req.Notes != nil {
		subject.Notes = req.Notes
	}
	if req.IsActive != nil {
		subject.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, internalError(err, "failed to update subject")
	}
	return subject, nil
}

// Delete removes a subject along with every lesson planned for it.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return internalError(err, "failed to delete subject")
	}
	s.logger.Info("subject deleted", zap.String("subject_id", id))
	return nil
}

func normaliseCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.ToUpper(strings.TrimSpace(*code))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
