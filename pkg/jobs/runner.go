// Package jobs runs background housekeeping tasks on a small worker pool.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of background work.
type Task struct {
	Name     string
	Attempt  int
	Enqueued time.Time
}

// Handler performs a task. A returned error schedules a retry.
type Handler func(context.Context, Task) error

// RunnerConfig tunes the worker pool.
type RunnerConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Runner dispatches tasks to a fixed set of workers.
type Runner struct {
	name    string
	handler Handler

	workers    int
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger

	tasks   chan Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewRunner builds a runner that hands every task to handler.
func NewRunner(name string, handler Handler, cfg RunnerConfig) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Runner{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     cfg.Logger,
		tasks:      make(chan Task, cfg.BufferSize),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
	r.started = true
	r.logger.Info("job runner started", zap.String("runner", r.name), zap.Int("workers", r.workers))
}

// Stop cancels the workers and any schedules and waits for them to exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
	r.logger.Info("job runner stopped", zap.String("runner", r.name))
}

// Submit queues a task by name.
func (r *Runner) Submit(name string) error {
	return r.enqueue(Task{Name: name})
}

// Every submits the named task once per interval until the runner stops.
// A non-positive interval disables the schedule.
func (r *Runner) Every(name string, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	r.mu.Lock()
	ctx, started := r.ctx, r.started
	if started {
		r.wg.Add(1)
	}
	r.mu.Unlock()
	if !started {
		return fmt.Errorf("runner %s not started", r.name)
	}

	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.Submit(name); err != nil {
					r.logger.Warn("scheduled task dropped", zap.String("runner", r.name), zap.String("task", name), zap.Error(err))
				}
			}
		}
	}()
	return nil
}

func (r *Runner) enqueue(task Task) error {
	r.mu.Lock()
	ctx, started := r.ctx, r.started
	r.mu.Unlock()

	if !started {
		return fmt.Errorf("runner %s not started", r.name)
	}
	if task.Enqueued.IsZero() {
		task.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("runner %s stopped: %w", r.name, ctx.Err())
	case r.tasks <- task:
		return nil
	}
}

func (r *Runner) work() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case task := <-r.tasks:
			if err := r.handler(r.ctx, task); err != nil {
				r.retry(task, err)
			}
		}
	}
}

func (r *Runner) retry(task Task, err error) {
	task.Attempt++
	if task.Attempt > r.maxRetries {
		r.logger.Error("task exceeded retries", zap.String("runner", r.name), zap.String("task", task.Name), zap.Error(err))
		return
	}
	r.logger.Warn("task failed, retrying", zap.String("runner", r.name), zap.String("task", task.Name), zap.Int("attempt", task.Attempt), zap.Error(err))

	go func(t Task) {
		timer := time.NewTimer(r.retryDelay)
		defer timer.Stop()
		select {
		case <-r.ctx.Done():
		case <-timer.C:
			if err := r.enqueue(t); err != nil {
				r.logger.Error("failed to requeue task", zap.String("runner", r.name), zap.String("task", t.Name), zap.Error(err))
			}
		}
	}(task)
}
