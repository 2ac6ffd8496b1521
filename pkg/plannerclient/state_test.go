package plannerclient

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestStateTransitions(t *testing.T) {
	start := time.Date(2025, 1, 27, 9, 0, 0, 0, time.UTC)
	end := start.Add(150 * time.Millisecond)

	var state RequestState
	assert.Equal(t, Idle, state.Status)

	state = state.Start(start)
	assert.True(t, state.Loading())
	assert.Equal(t, start, state.StartedAt)

	ok := state.Finish(nil, end)
	assert.Equal(t, Succeeded, ok.Status)
	assert.Nil(t, ok.Err)
	assert.Equal(t, end, ok.FinishedAt)

	failed := state.Finish(errors.New("boom"), end)
	assert.Equal(t, Failed, failed.Status)
	assert.EqualError(t, failed.Err, "boom")

	cancelled := state.Finish(fmt.Errorf("week: %w", context.Canceled), end)
	assert.Equal(t, Idle, cancelled.Status)
	assert.Nil(t, cancelled.Err)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "in flight", InFlight.String())
	assert.Equal(t, "unknown", Status(42).String())
}
