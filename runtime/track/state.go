package track

// RunState represents the current state of a tracked run.
type RunState string

const (
	// RunStateRunning marks a run between its start and the single
	// transition to ended.
	RunStateRunning RunState = "running"

	// RunStateEnded marks a run whose body returned or was stopped.
	RunStateEnded RunState = "ended"
)

// IsRunning reports whether the state denotes a live run.
func (s RunState) IsRunning() bool {
	return s == RunStateRunning
}

// IsEnded reports whether the state denotes a finished run.
func (s RunState) IsEnded() bool {
	return s == RunStateEnded
}
