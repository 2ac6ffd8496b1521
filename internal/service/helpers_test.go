package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lesson-planner-api/internal/cycle"
)

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := cycle.ParseDate(raw)
	require.NoError(t, err)
	return d
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }
