package registry

import (
	"context"
	"sort"

	"github.com/viant/taskly/runtime/track"
)

// IsRunning reports whether at least one run of the named task is live.
func (s *Service) IsRunning(name string) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.running[name]) > 0
}

// IsRunningFor reports whether owner has a live run of the named task.
func (s *Service) IsRunningFor(name string, owner *track.Owner) bool {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, handle := range s.running[name] {
		if handle.Owner().Equal(owner) {
			return true
		}
	}
	return false
}

// Handle returns the oldest live run of the named task requested by owner,
// or nil when there is none.
func (s *Service) Handle(name string, owner *track.Owner) *track.Handle {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.handleLocked(name, owner)
}

func (s *Service) handleLocked(name string, owner *track.Owner) *track.Handle {
	for _, handle := range s.running[name] {
		if handle.Owner().Equal(owner) {
			return handle
		}
	}
	return nil
}

// Handles returns every live run of the named task in start order.
func (s *Service) Handles(name string) []*track.Handle {
	s.mux.Lock()
	defer s.mux.Unlock()
	bucket := s.running[name]
	if len(bucket) == 0 {
		return nil
	}
	ret := make([]*track.Handle, len(bucket))
	copy(ret, bucket)
	return ret
}

// HandlesFor returns every live run of the named task requested by owner, in
// start order.
func (s *Service) HandlesFor(name string, owner *track.Owner) []*track.Handle {
	s.mux.Lock()
	defer s.mux.Unlock()
	var ret []*track.Handle
	for _, handle := range s.running[name] {
		if handle.Owner().Equal(owner) {
			ret = append(ret, handle)
		}
	}
	return ret
}

// Running returns every live run, grouped by task name in lexical order and
// by start order within a name.
func (s *Service) Running() []*track.Handle {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.runningLocked(nil)
}

// RunningByOwner returns every live run requested by owner, in the same order
// as Running.
func (s *Service) RunningByOwner(owner *track.Owner) []*track.Handle {
	if owner == nil {
		return nil
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.runningLocked(func(handle *track.Handle) bool {
		return handle.Owner().Equal(owner)
	})
}

// RunningCount returns the number of live runs.
func (s *Service) RunningCount() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	count := 0
	for _, bucket := range s.running {
		count += len(bucket)
	}
	return count
}

// runningLocked flattens the name buckets into a deterministic order,
// optionally filtered.  The caller must hold the lock.
func (s *Service) runningLocked(keep func(*track.Handle) bool) []*track.Handle {
	names := make([]string, 0, len(s.running))
	for name := range s.running {
		names = append(names, name)
	}
	sort.Strings(names)

	var ret []*track.Handle
	for _, name := range names {
		for _, handle := range s.running[name] {
			if keep == nil || keep(handle) {
				ret = append(ret, handle)
			}
		}
	}
	return ret
}

// HistoryEnabled reports whether completed runs are being retained.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

// Completed returns the retained completed runs in insertion order.  Without
// a history store it returns nothing.
func (s *Service) Completed(ctx context.Context) ([]*track.Handle, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx)
}

// CompletedByName returns the retained completed runs of the named task.
func (s *Service) CompletedByName(ctx context.Context, name string) ([]*track.Handle, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.ByName(ctx, name)
}

// CompletedByOwner returns the retained completed runs requested by owner.
func (s *Service) CompletedByOwner(ctx context.Context, owner *track.Owner) ([]*track.Handle, error) {
	if s.history == nil || owner == nil {
		return nil, nil
	}
	return s.history.ByOwner(ctx, owner.ID)
}

// CompletedCount returns the number of retained completed runs.
func (s *Service) CompletedCount(ctx context.Context) (int, error) {
	if s.history == nil {
		return 0, nil
	}
	return s.history.Count(ctx)
}

// TotalCount returns the number of live runs plus retained completed runs.
func (s *Service) TotalCount(ctx context.Context) (int, error) {
	completed, err := s.CompletedCount(ctx)
	if err != nil {
		return 0, err
	}
	return s.RunningCount() + completed, nil
}

// ClearCompleted removes every retained completed run.  Live runs are not
// affected.
func (s *Service) ClearCompleted(ctx context.Context) error {
	if s.history == nil {
		return nil
	}
	return s.history.Clear(ctx)
}

// ClearCompletedByOwner removes the retained completed runs requested by
// owner.
func (s *Service) ClearCompletedByOwner(ctx context.Context, owner *track.Owner) error {
	if s.history == nil || owner == nil {
		return nil
	}
	return s.history.ClearByOwner(ctx, owner.ID)
}
