package registry

import "errors"

// Registry errors, detectable via errors.Is.
var (
	// ErrNilOwner is returned by Start when no owner identity was supplied.
	ErrNilOwner = errors.New("registry: nil owner")

	// ErrNilTask is returned by Start when the task or its body is missing.
	ErrNilTask = errors.New("registry: nil task")

	// ErrSchedulerRequired is returned by New when no scheduler was
	// configured.
	ErrSchedulerRequired = errors.New("registry: scheduler is required")
)
