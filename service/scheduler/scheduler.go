package scheduler

import (
	"context"
	"errors"
)

// Body is a unit of work submitted for execution.  Bodies must honour ctx
// cancellation; cancellation is cooperative.
type Body func(ctx context.Context) error

// Ref identifies a scheduled body within the scheduler that accepted it.
// Callers treat it as an opaque value.
type Ref string

// Service abstracts the component that actually runs task bodies.  The
// registry only performs bookkeeping; starting and cancelling the underlying
// work is delegated to a Service implementation.
type Service interface {
	// Schedule submits body for execution and returns a reference that can be
	// used to cancel it later.
	Schedule(ctx context.Context, body Body) (Ref, error)

	// Cancel withdraws a previously scheduled body.  Implementations signal
	// the body's context; they do not wait for the body to return.
	Cancel(ctx context.Context, ref Ref) error
}

// Scheduler errors, detectable via errors.Is.
var (
	// ErrNotFound is returned by Cancel when the reference is unknown or the
	// body already finished.
	ErrNotFound = errors.New("scheduler: not found")

	// ErrClosed is returned when the scheduler no longer accepts work.
	ErrClosed = errors.New("scheduler: closed")
)
