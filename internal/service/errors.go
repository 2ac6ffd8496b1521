package service

import (
	"errors"

	"github.com/lib/pq"

	"github.com/noah-isme/lesson-planner-api/internal/cycle"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
)

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func validationError(err error, message string) error {
	return appErrors.Validation(err, message)
}

// configurationError maps a calendar construction failure to CONFIGURATION_ERROR.
func configurationError(err error) error {
	var cfgErr *cycle.ConfigurationError
	if errors.As(err, &cfgErr) {
		return appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Status, cfgErr.Reason)
	}
	return internalError(err, "failed to build cycle calendar")
}
