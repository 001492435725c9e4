package track

import (
	"context"
	"sync"
	"time"

	"github.com/viant/taskly/internal/clock"
	"github.com/viant/taskly/internal/idgen"
	"github.com/viant/taskly/service/scheduler"
)

// Handle represents a single run of a task.  Its identity (ID, name, owner,
// start time) is immutable; the run state transitions exactly once, from
// running to ended, and the handle is never reused for another run.
//
// Handles are owned by the registry that created them.  Callers hold a
// reference for querying and waiting only; End and Settle are invoked by
// the registry as part of its completion bookkeeping.
type Handle struct {
	id        string
	name      string
	owner     *Owner
	startedAt time.Time

	mux     sync.RWMutex
	state   RunState
	endedAt *time.Time
	ref     scheduler.Ref

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a running handle for one invocation of the named task.
func New(name string, owner *Owner) *Handle {
	return &Handle{
		id:        idgen.New(),
		name:      name,
		owner:     owner,
		startedAt: clock.Now(),
		state:     RunStateRunning,
		done:      make(chan struct{}),
	}
}

// Restore rebuilds an ended handle from persisted attributes.  It is used by
// history backends that load completed runs back from storage; a restored
// handle is already settled.
func Restore(id, name string, owner *Owner, startedAt, endedAt time.Time) *Handle {
	h := &Handle{
		id:        id,
		name:      name,
		owner:     owner,
		startedAt: startedAt,
		state:     RunStateEnded,
		endedAt:   &endedAt,
		done:      make(chan struct{}),
	}
	h.doneOnce.Do(func() { close(h.done) })
	return h
}

// ID returns the unique identifier of this run.
func (h *Handle) ID() string {
	return h.id
}

// Name returns the logical task name shared by all runs of the same task.
func (h *Handle) Name() string {
	return h.name
}

// Owner returns the identity that requested the run.
func (h *Handle) Owner() *Owner {
	return h.owner
}

// StartedAt returns when the run was created.
func (h *Handle) StartedAt() time.Time {
	return h.startedAt
}

// State returns the current run state.
func (h *Handle) State() RunState {
	h.mux.RLock()
	defer h.mux.RUnlock()
	return h.state
}

// Running reports whether the run has not ended yet.
func (h *Handle) Running() bool {
	return h.State() == RunStateRunning
}

// Ended reports whether the run has ended.
func (h *Handle) Ended() bool {
	return h.State() == RunStateEnded
}

// EndedAt returns when the run ended, or nil while it is still running.
func (h *Handle) EndedAt() *time.Time {
	h.mux.RLock()
	defer h.mux.RUnlock()
	if h.endedAt == nil {
		return nil
	}
	t := *h.endedAt
	return &t
}

// Elapsed returns how long the run has been going, or its total duration
// once ended.
func (h *Handle) Elapsed() time.Duration {
	h.mux.RLock()
	defer h.mux.RUnlock()
	if h.endedAt != nil {
		return h.endedAt.Sub(h.startedAt)
	}
	return clock.Now().Sub(h.startedAt)
}

// Ref returns the scheduler reference of the underlying work, once bound.
func (h *Handle) Ref() scheduler.Ref {
	h.mux.RLock()
	defer h.mux.RUnlock()
	return h.ref
}

// Bind attaches the scheduler reference once it is known.  Only the first
// call has an effect.
func (h *Handle) Bind(ref scheduler.Ref) {
	h.mux.Lock()
	defer h.mux.Unlock()
	if h.ref == "" {
		h.ref = ref
	}
}

// End transitions the run to ended and stamps the end time.  The transition
// happens at most once; later calls are no-ops.
func (h *Handle) End() {
	h.mux.Lock()
	defer h.mux.Unlock()
	if h.state == RunStateEnded {
		return
	}
	now := clock.Now()
	h.endedAt = &now
	h.state = RunStateEnded
}

// Settle closes the Done channel.  The registry calls it after completion
// bookkeeping finished so that waiters never observe a run as done before
// the registry reflects it as such.
func (h *Handle) Settle() {
	h.doneOnce.Do(func() { close(h.done) })
}

// Done returns a channel closed once the run ended and the registry settled
// its bookkeeping.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run settles or ctx is cancelled.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return nil
	}
}

// Snapshot returns a plain-data copy of the handle safe to serialise and
// share across API boundaries.
func (h *Handle) Snapshot() Snapshot {
	h.mux.RLock()
	defer h.mux.RUnlock()

	snapshot := Snapshot{
		ID:        h.id,
		Name:      h.name,
		StartedAt: h.startedAt,
		State:     h.state,
	}
	if h.owner != nil {
		owner := *h.owner
		snapshot.Owner = &owner
	}
	if h.endedAt != nil {
		endedAt := *h.endedAt
		snapshot.EndedAt = &endedAt
	}
	return snapshot
}

// Snapshot is a read-only copy of a handle's attributes.
type Snapshot struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Owner     *Owner     `json:"owner,omitempty"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	State     RunState   `json:"state"`
}
