package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/viant/taskly/runtime/track"
	"github.com/viant/taskly/service/history"
)

// Service implements an in-memory, thread-safe history store.  Runs are kept
// in per-name buckets that preserve insertion order; the global bound is
// enforced on every append.
type Service struct {
	maxEntries int

	mux     sync.RWMutex
	buckets map[string][]*entry
	count   int
	seq     uint64
}

// entry caches the attributes eviction ordering depends on so that the scan
// does not have to take each handle's lock.
type entry struct {
	handle  *track.Handle
	endedAt time.Time
	seq     uint64
}

var _ history.Store = (*Service)(nil)

// New creates an in-memory history store.
func New(options ...Option) *Service {
	s := &Service{
		maxEntries: history.DefaultMaxEntries,
		buckets:    map[string][]*entry{},
	}
	for _, opt := range options {
		opt(s)
	}
	if s.maxEntries <= 0 {
		s.maxEntries = history.DefaultMaxEntries
	}
	return s
}

// MaxEntries returns the configured global bound.
func (s *Service) MaxEntries() int {
	return s.maxEntries
}

// Append records an ended handle and evicts the globally oldest entries when
// the bound is exceeded.
func (s *Service) Append(_ context.Context, handle *track.Handle) ([]*track.Handle, error) {
	if handle == nil {
		return nil, history.ErrNilHandle
	}
	endedAt := handle.EndedAt()
	if endedAt == nil {
		return nil, history.ErrStillRunning
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	s.seq++
	s.buckets[handle.Name()] = append(s.buckets[handle.Name()], &entry{
		handle:  handle,
		endedAt: *endedAt,
		seq:     s.seq,
	})
	s.count++

	var evicted []*track.Handle
	for s.count > s.maxEntries {
		evicted = append(evicted, s.evictOldestLocked())
	}
	return evicted, nil
}

// evictOldestLocked removes the entry with the oldest end time, breaking
// ties by insertion order, and deletes its bucket when emptied.
func (s *Service) evictOldestLocked() *track.Handle {
	var oldestName string
	var oldestIndex int
	var oldest *entry

	for name, bucket := range s.buckets {
		for i, candidate := range bucket {
			if oldest == nil ||
				candidate.endedAt.Before(oldest.endedAt) ||
				(candidate.endedAt.Equal(oldest.endedAt) && candidate.seq < oldest.seq) {
				oldest = candidate
				oldestName = name
				oldestIndex = i
			}
		}
	}
	if oldest == nil {
		return nil
	}

	bucket := s.buckets[oldestName]
	s.buckets[oldestName] = append(bucket[:oldestIndex], bucket[oldestIndex+1:]...)
	if len(s.buckets[oldestName]) == 0 {
		delete(s.buckets, oldestName)
	}
	s.count--
	return oldest.handle
}

// ByName returns the retained runs of the named task in insertion order.
func (s *Service) ByName(_ context.Context, name string) ([]*track.Handle, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	bucket := s.buckets[name]
	out := make([]*track.Handle, 0, len(bucket))
	for _, item := range bucket {
		out = append(out, item.handle)
	}
	return out, nil
}

// ByOwner returns the retained runs requested by the owner with the given
// ID, in insertion order.
func (s *Service) ByOwner(_ context.Context, ownerID string) ([]*track.Handle, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return collectLocked(s.buckets, func(e *entry) bool {
		owner := e.handle.Owner()
		return owner != nil && owner.ID == ownerID
	}), nil
}

// List returns every retained run in insertion order.
func (s *Service) List(_ context.Context) ([]*track.Handle, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return collectLocked(s.buckets, func(*entry) bool { return true }), nil
}

// Count returns the number of retained runs.
func (s *Service) Count(_ context.Context) (int, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.count, nil
}

// Clear removes every retained run.
func (s *Service) Clear(_ context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.buckets = map[string][]*entry{}
	s.count = 0
	return nil
}

// ClearByOwner removes the retained runs requested by the owner with the
// given ID, deleting buckets it empties.
func (s *Service) ClearByOwner(_ context.Context, ownerID string) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	for name, bucket := range s.buckets {
		kept := bucket[:0]
		for _, item := range bucket {
			owner := item.handle.Owner()
			if owner != nil && owner.ID == ownerID {
				s.count--
				continue
			}
			kept = append(kept, item)
		}
		if len(kept) == 0 {
			delete(s.buckets, name)
			continue
		}
		s.buckets[name] = kept
	}
	return nil
}

// Close implements history.Store; the in-memory store holds no resources.
func (s *Service) Close() error {
	return nil
}

// collectLocked gathers matching entries across all buckets in insertion
// order.  The caller holds at least a read lock.
func collectLocked(buckets map[string][]*entry, match func(*entry) bool) []*track.Handle {
	var matched []*entry
	for _, bucket := range buckets {
		for _, item := range bucket {
			if match(item) {
				matched = append(matched, item)
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })

	out := make([]*track.Handle, 0, len(matched))
	for _, item := range matched {
		out = append(out, item.handle)
	}
	return out
}
