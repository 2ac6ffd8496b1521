package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerRejectsBeforeStart(t *testing.T) {
	r := NewRunner("test", func(context.Context, Task) error { return nil }, RunnerConfig{})
	assert.Error(t, r.Submit("noop"))
	assert.Error(t, r.Every("noop", time.Second))
}

func TestRunnerRetriesFailedTasks(t *testing.T) {
	var calls atomic.Int32
	done := make(chan Task, 1)
	r := NewRunner("test", func(_ context.Context, task Task) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		done <- task
		return nil
	}, RunnerConfig{RetryDelay: time.Millisecond})
	r.Start(context.Background())
	defer r.Stop()

	require.NoError(t, r.Submit("exports.cleanup"))

	select {
	case task := <-done:
		assert.Equal(t, "exports.cleanup", task.Name)
		assert.Equal(t, 2, task.Attempt)
	case <-time.After(2 * time.Second):
		t.Fatal("task never succeeded")
	}
}

func TestRunnerEverySchedulesUntilStopped(t *testing.T) {
	var calls atomic.Int32
	r := NewRunner("test", func(context.Context, Task) error {
		calls.Add(1)
		return nil
	}, RunnerConfig{})
	r.Start(context.Background())

	require.NoError(t, r.Every("tick", 5*time.Millisecond))
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	r.Stop()
	stopped := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
}

func TestRunnerEveryIgnoresNonPositiveInterval(t *testing.T) {
	r := NewRunner("test", func(context.Context, Task) error { return nil }, RunnerConfig{})
	assert.NoError(t, r.Every("never", 0))
}
