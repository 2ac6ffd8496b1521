package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lesson-planner-api/internal/dto"
	"github.com/noah-isme/lesson-planner-api/internal/models"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

func TestSubjectServiceCreateDefaults(t *testing.T) {
	repo := newMemSubjectRepo()
	svc := NewSubjectService(repo, nil, zap.NewNop())

	subject, err := svc.Create(context.Background(), dto.CreateSubjectRequest{
		Name:         "  Mathematics ",
		Code:         strPtr(" ma9 "),
		AcademicYear: 2025,
		Semester:     1,
		Colour:       strPtr("#3366ff"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", subject.Name)
	assert.Equal(t, "MA9", *subject.Code)
	assert.True(t, subject.IsActive)
	assert.Contains(t, repo.subjects, subject.ID)
}

func TestSubjectServiceCreateValidation(t *testing.T) {
	svc := NewSubjectService(newMemSubjectRepo(), nil, zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateSubjectRequest{Name: "Art", AcademicYear: 2025, Semester: 3})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))

	_, err = svc.Create(context.Background(), dto.CreateSubjectRequest{Name: "Art", AcademicYear: 2025, Semester: 1, Colour: strPtr("red")})
	assert.Equal(t, appErrors.ErrValidation.Code, errorCode(err))
}

func TestSubjectServiceUpdateIsPartial(t *testing.T) {
	repo := newMemSubjectRepo(models.Subject{ID: "s1", Name: "Science", AcademicYear: 2025, Semester: 1, Room: strPtr("L2"), IsActive: true})
	svc := NewSubjectService(repo, nil, zap.NewNop())

	updated, err := svc.Update(context.Background(), "s1", dto.UpdateSubjectRequest{IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Science", updated.Name)
	assert.Equal(t, "L2", *updated.Room)

	_, err = svc.Update(context.Background(), "missing", dto.UpdateSubjectRequest{Name: strPtr("x")})
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(err))
}

func TestSubjectServiceListAndDelete(t *testing.T) {
	repo := newMemSubjectRepo(
		models.Subject{ID: "s1", Name: "Science", IsActive: true},
		models.Subject{ID: "s2", Name: "Latin", IsActive: false},
	)
	svc := NewSubjectService(repo, nil, zap.NewNop())

	active := true
	subjects, pagination, err := svc.List(context.Background(), models.SubjectFilter{IsActive: &active})
	require.NoError(t, err)
	assert.Nil(t, pagination)
	require.Len(t, subjects, 1)
	assert.Equal(t, "s1", subjects[0].ID)

	subjects, pagination, err = svc.List(context.Background(), models.SubjectFilter{Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "s1", subjects[0].ID)
	assert.Equal(t, 2, pagination.TotalCount)

	subjects, _, err = svc.List(context.Background(), models.SubjectFilter{Page: 3, PageSize: 1})
	require.NoError(t, err)
	assert.Empty(t, subjects)

	require.NoError(t, svc.Delete(context.Background(), "s2"))
	assert.Equal(t, []string{"s2"}, repo.deleted)
	assert.Equal(t, appErrors.ErrNotFound.Code, errorCode(svc.Delete(context.Background(), "s2")))
	assert.Len(t, repo.deleted, 1)
}
