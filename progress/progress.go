package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the registry.
// The fields are signed and therefore can be either positive (increment) or
// negative (decrement).
type Delta struct {
	Started   int
	Completed int
	Stopped   int
	Evicted   int
	Running   int
}

// Snapshot is a read-only copy of the tracker counters.
type Snapshot struct {
	Name      string
	StartedAt time.Time

	Started   int
	Completed int
	Stopped   int
	Evicted   int
	Running   int
}

// Progress keeps aggregated run counters for a registry and everything it
// tracks.  It is safe for concurrent use.
type Progress struct {
	name      string
	startedAt time.Time

	started   int
	completed int
	stopped   int
	evicted   int
	running   int

	mux      sync.Mutex
	onChange func(Snapshot)
}

// New creates a tracker.  The optional onChange callback is invoked with a
// snapshot after every Update.
func New(name string, onChange func(Snapshot)) *Progress {
	return &Progress{
		name:      name,
		startedAt: time.Now(),
		onChange:  onChange,
	}
}

// Update applies the supplied delta to the tracker.  It is safe to call from
// multiple goroutines.  A registered onChange callback is invoked with a copy
// of the updated counters outside the critical section so that the callback
// can perform slow operations (e.g. JSON encoding, I/O) without blocking
// registry internals.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.mux.Lock()

	p.started += d.Started
	p.completed += d.Completed
	p.stopped += d.Stopped
	p.evicted += d.Evicted
	p.running += d.Running

	snapshot := p.snapshot()
	cb := p.onChange

	p.mux.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// snapshot assumes the caller holds the lock.
func (p *Progress) snapshot() Snapshot {
	return Snapshot{
		Name:      p.name,
		StartedAt: p.startedAt,
		Started:   p.started,
		Completed: p.completed,
		Stopped:   p.stopped,
		Evicted:   p.evicted,
		Running:   p.running,
	}
}

// Snapshot returns a copy of the counters suitable for read-only inspection.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.snapshot()
}

// OnChange registers a callback that is invoked after every Update.  Passing
// nil disables the callback.  Only one callback can be active; subsequent
// calls overwrite the previous value.
func (p *Progress) OnChange(cb func(Snapshot)) {
	if p == nil {
		return
	}
	p.mux.Lock()
	p.onChange = cb
	p.mux.Unlock()
}

// ----------------------------------------------------------------------------
// Context helpers
// ----------------------------------------------------------------------------

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a new Progress tracker, embeds it in a derived
// context and returns both.
func WithNewTracker(ctx context.Context, name string, onChange func(Snapshot)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := New(name, onChange)
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the Progress tracker from ctx.  The second return
// value is false when the context carries no tracker.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// GetSnapshot is a convenience wrapper that combines FromContext and
// Snapshot.  The boolean return value is false when the context does not
// carry a tracker.
func GetSnapshot(ctx context.Context) (Snapshot, bool) {
	if tr, ok := FromContext(ctx); ok {
		return tr.Snapshot(), true
	}
	return Snapshot{}, false
}

// UpdateCtx is a helper that looks up the tracker in ctx (if any) and applies
// the supplied delta.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
