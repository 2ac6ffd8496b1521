package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lesson-planner-api/internal/cycle"
	appErrors "github.com/noah-isme/lesson-planner-api/pkg/errors"
	"github.com/noah-isme/lesson-planner-api/pkg/response"
)

func invalidParam(err error, name string) error {
	return appErrors.Validation(err, fmt.Sprintf("invalid %s", name))
}

// bindJSON decodes the request body into dest, writing a 400 on failure.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid payload"))
		return false
	}
	return true
}

func parseDate(raw, name string) (time.Time, error) {
	date, err := cycle.ParseDate(raw)
	if err != nil {
		return time.Time{}, invalidParam(err, name)
	}
	return date, nil
}

// dateQuery reads a YYYY-MM-DD query value, falling back to today when absent.
func dateQuery(c *gin.Context, name string, now func() time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return cycle.Normalize(now()), nil
	}
	return parseDate(raw, name)
}

func intParam(c *gin.Context, name string) (int, error) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, invalidParam(err, name)
	}
	return value, nil
}

func optionalIntQuery(c *gin.Context, name string) (*int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalidParam(err, name)
	}
	return &value, nil
}

func optionalBoolQuery(c *gin.Context, name string) (*bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalidParam(err, name)
	}
	return &value, nil
}
