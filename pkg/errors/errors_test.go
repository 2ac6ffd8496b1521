package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", Clone(ErrNotFound, "lesson not found"))
	got := FromError(wrapped)
	assert.Equal(t, "NOT_FOUND", got.Code)
	assert.Equal(t, "lesson not found", got.Message)

	plain := FromError(fmt.Errorf("boom"))
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotShareFields(t *testing.T) {
	base := &Error{Code: "X", Fields: map[string]string{"a": "1"}}
	clone := Clone(base, "")
	clone.Fields["a"] = "2"
	assert.Equal(t, "1", base.Fields["a"])
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Clone(ErrConflict, "slot taken"))
	assert.True(t, HasCode(err, ErrConflict))
	assert.False(t, HasCode(err, ErrNotFound))
	assert.False(t, HasCode(nil, ErrConflict))
}

type lessonPayload struct {
	SubjectID string `validate:"required,uuid"`
	Period    int    `validate:"min=1,max=12"`
	Title     string `validate:"max=5"`
}

func TestValidationListsFields(t *testing.T) {
	err := validator.New().Struct(lessonPayload{Period: 20, Title: "too long"})
	require.Error(t, err)

	got := Validation(err, "invalid lesson")
	assert.Equal(t, "VALIDATION_ERROR", got.Code)
	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.Equal(t, "invalid lesson", got.Message)
	assert.Equal(t, []string{"period", "subject_id", "title"}, got.FieldNames())
	assert.Equal(t, "is required", got.Fields["subject_id"])
	assert.Equal(t, "must be at most 12", got.Fields["period"])
}

func TestValidationWithoutCause(t *testing.T) {
	got := Validation(nil, "")
	assert.Equal(t, ErrValidation.Message, got.Message)
	assert.Nil(t, got.Fields)
	assert.Nil(t, got.Unwrap())
}

func TestToSnake(t *testing.T) {
	cases := map[string]string{
		"SubjectID":      "subject_id",
		"Period":         "period",
		"CycleStartDate": "cycle_start_date",
		"URL":            "url",
	}
	for in, want := range cases {
		assert.Equal(t, want, toSnake(in), in)
	}
}
