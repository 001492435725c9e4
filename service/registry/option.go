package registry

import (
	"github.com/viant/taskly/progress"
	"github.com/viant/taskly/service/event"
	"github.com/viant/taskly/service/history"
	"github.com/viant/taskly/service/scheduler"
)

type Option func(*Service)

// WithScheduler sets the scheduler the registry delegates execution to.
func WithScheduler(svc scheduler.Service) Option {
	return func(s *Service) {
		s.scheduler = svc
	}
}

// WithHistory sets the store retaining completed runs.  Leaving it unset
// disables diagnostic history entirely.
func WithHistory(store history.Store) Option {
	return func(s *Service) {
		s.history = store
	}
}

// WithEventService makes the registry publish lifecycle events.  Publishing
// is best-effort; failures are logged without affecting bookkeeping.
func WithEventService(events *event.Service) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithProgress attaches an aggregate counter tracker updated on every start,
// completion, stop and eviction.
func WithProgress(tracker *progress.Progress) Option {
	return func(s *Service) {
		s.progress = tracker
	}
}
