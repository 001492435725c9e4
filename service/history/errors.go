package history

import "errors"

// History errors, detectable via errors.Is.
var (
	// ErrNilHandle is returned when the caller attempts to record a nil
	// handle.
	ErrNilHandle = errors.New("history: nil handle")

	// ErrStillRunning is returned when the handle has not transitioned to
	// ended yet; only finished runs belong in history.
	ErrStillRunning = errors.New("history: handle still running")
)
