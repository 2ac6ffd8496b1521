package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

type subjectServiceMock struct {
	subjects   []models.Subject
	pagination *models.Pagination
	err        error
	lastFilter models.SubjectFilter
	lastCreate dto.CreateSubjectRequest
	deletedID  string
	listCalled bool
}

func (m *subjectServiceMock) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	m.listCalled = true
	m.lastFilter = filter
	return m.subjects, m.pagination, m.err
}

func (m *subjectServiceMock) Get(ctx context.Context, id string) (*models.Subject, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &m.subjects[0], nil
}

func (m *subjectServiceMock) Create(ctx context.Context, req dto.CreateSubjectRequest) (*models.Subject, error) {
	m.lastCreate = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Subject{ID: "s-new", Name: req.Name}, nil
}

func (m *subjectServiceMock) Update(ctx context.Context, id string, req dto.UpdateSubjectRequest) (*models.Subject, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &m.subjects[0], nil
}

func (m *subjectServiceMock) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return m.err
}

func TestSubjectHandlerListParsesFilters(t *testing.T) {
	svc := &subjectServiceMock{
		subjects:   []models.Subject{{ID: "s-1", Name: "Maths"}},
		pagination: &models.Pagination{Page: 2, PageSize: 1, TotalCount: 3},
	}
	h := NewSubjectHandler(svc)

	c, w := newTestContext(http.MethodGet, "/subjects?academic_year=2025&semester=1&is_active=true&year_level=9&page=2&limit=1", "")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2025, *svc.lastFilter.AcademicYear)
	assert.Equal(t, 1, *svc.lastFilter.Semester)
	assert.True(t, *svc.lastFilter.IsActive)
	assert.Equal(t, 9, *svc.lastFilter.YearLevel)
	assert.Equal(t, 2, svc.lastFilter.Page)
	assert.Equal(t, 1, svc.lastFilter.PageSize)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 3, env.Pagination.TotalCount)
	var subjects []models.Subject
	require.NoError(t, json.Unmarshal(env.Data, &subjects))
	assert.Equal(t, "Maths", subjects[0].Name)
}

func TestSubjectHandlerListWithoutFilters(t *testing.T) {
	svc := &subjectServiceMock{subjects: []models.Subject{}}
	h := NewSubjectHandler(svc)

	c, w := newTestContext(http.MethodGet, "/subjects", "")
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.lastFilter.AcademicYear)
	assert.Nil(t, svc.lastFilter.IsActive)
	assert.Equal(t, 0, svc.lastFilter.PageSize)
	assert.Nil(t, decodeEnvelope(t, w).Pagination)
}

func TestSubjectHandlerListRejectsMalformedFilter(t *testing.T) {
	svc := &subjectServiceMock{}
	h := NewSubjectHandler(svc)

	c, w := newTestContext(http.MethodGet, "/subjects?is_active=sometimes", "")
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.listCalled)
}

func TestSubjectHandlerCreate(t *testing.T) {
	svc := &subjectServiceMock{}
	h := NewSubjectHandler(svc)

	c, w := newTestContext(http.MethodPost, "/subjects", `{"name":"Physics","academic_year":2025,"semester":1}`)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Physics", svc.lastCreate.Name)
}

func TestSubjectHandlerDelete(t *testing.T) {
	svc := &subjectServiceMock{}
	h := NewSubjectHandler(svc)

	c, w := newTestContext(http.MethodDelete, "/subjects/s-1", "", gin.Param{Key: "id", Value: "s-1"})
	h.Delete(c)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "s-1", svc.deletedID)

	svc.err = appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	c, w = newTestContext(http.MethodDelete, "/subjects/s-9", "", gin.Param{Key: "id", Value: "s-9"})
	h.Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
