package plannerclient

import (
	"context"
	"errors"
	"time"
)

// Status is the lifecycle stage of a tracked request.
type Status int

const (
	Idle Status = iota
	InFlight
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case InFlight:
		return "in flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// RequestState tracks one kind of request. Values are immutable; each
// transition returns a new state.
type RequestState struct {
	Status     Status
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Start marks the request as in flight.
func (s RequestState) Start(now time.Time) RequestState {
	return RequestState{Status: InFlight, StartedAt: now}
}

// Finish records the outcome of the request. A cancelled request returns to
// Idle, since it was superseded rather than failed.
func (s RequestState) Finish(err error, now time.Time) RequestState {
	next := RequestState{StartedAt: s.StartedAt, FinishedAt: now}
	switch {
	case err == nil:
		next.Status = Succeeded
	case errors.Is(err, context.Canceled):
		next.Status = Idle
	default:
		next.Status = Failed
		next.Err = err
	}
	return next
}

// Loading reports whether the request is in flight.
func (s RequestState) Loading() bool {
	return s.Status == InFlight
}
