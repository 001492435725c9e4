package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/viant/taskly/model/task"
	"github.com/viant/taskly/policy"
	"github.com/viant/taskly/progress"
	"github.com/viant/taskly/runtime/track"
	"github.com/viant/taskly/service/event"
	"github.com/viant/taskly/service/history"
	"github.com/viant/taskly/service/scheduler"
	"github.com/viant/taskly/tracing"
)

// Lifecycle event types published when an event service is attached.
const (
	EventTaskStarted   = "task.started"
	EventTaskCompleted = "task.completed"
	EventTaskStopped   = "task.stopped"
	EventTaskEvicted   = "task.evicted"
)

// publishTimeout bounds how long a lifecycle publish may hold up completion
// bookkeeping when the queue is saturated.
const publishTimeout = time.Second

// completionReason distinguishes a body that returned on its own from one
// that was stopped.
type completionReason int

const (
	reasonCompleted completionReason = iota
	reasonStopped
)

func (r completionReason) eventType() string {
	if r == reasonStopped {
		return EventTaskStopped
	}
	return EventTaskCompleted
}

// Service tracks live runs keyed by task name.  All mutations happen under a
// single lock held only across the non-suspending bookkeeping step, never
// across a task body's execution.
type Service struct {
	scheduler scheduler.Service
	history   history.Store
	events    *event.Service
	publisher *event.Publisher[track.Snapshot]
	progress  *progress.Progress

	mux     sync.Mutex
	running map[string][]*track.Handle
}

// New creates a registry.  A scheduler is required; history, events and
// progress are optional collaborators.
func New(options ...Option) (*Service, error) {
	s := &Service{running: map[string][]*track.Handle{}}
	for _, opt := range options {
		opt(s)
	}
	if s.scheduler == nil {
		return nil, ErrSchedulerRequired
	}
	if s.events != nil {
		publisher, err := event.PublisherOf[track.Snapshot](s.events)
		if err != nil {
			return nil, fmt.Errorf("lifecycle publisher: %w", err)
		}
		s.publisher = publisher
	}
	return s, nil
}

// Start launches a run of the task on behalf of owner, subject to the start
// policy.  Under UseExisting a live run with the same name and owner is
// returned instead of starting a new one; under StopExisting such runs are
// stopped first.  The returned handle is already tracked; its Done channel
// closes only after completion bookkeeping settled.
func (s *Service) Start(ctx context.Context, owner *track.Owner, aTask *task.Task, aPolicy policy.Policy) (handle *track.Handle, err error) {
	if owner == nil {
		log.Printf("registry: start of task %q rejected: nil owner", aTask.Ident())
		return nil, ErrNilOwner
	}
	if aTask == nil || aTask.Body == nil {
		return nil, ErrNilTask
	}
	name := aTask.Ident()

	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("registry.start %s", name), "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithAttributes(map[string]string{"task.name": name, "owner.id": owner.ID})

	resolved := policy.Resolve(ctx, aPolicy)
	if resolved == policy.StopExisting {
		s.Stop(ctx, name, owner)
	}

	// the existing-run check and the insert share one critical section so two
	// concurrent UseExisting starts cannot both miss the other's run
	s.mux.Lock()
	if resolved == policy.UseExisting {
		if existing := s.handleLocked(name, owner); existing != nil {
			s.mux.Unlock()
			return existing, nil
		}
	}
	handle = track.New(name, owner)
	s.running[name] = append(s.running[name], handle)
	s.mux.Unlock()

	body := aTask.Body
	wrapped := func(runCtx context.Context) error {
		runErr := body(track.WithHandle(runCtx, handle))
		// completion bookkeeping settles before the scheduler or any waiter
		// observes the run as finished
		s.onCompleted(handle, reasonCompleted)
		return runErr
	}

	ref, err := s.scheduler.Schedule(ctx, wrapped)
	if err != nil {
		s.mux.Lock()
		s.removeRunningLocked(handle)
		s.mux.Unlock()
		handle.End()
		handle.Settle()
		return nil, fmt.Errorf("schedule %v: %w", name, err)
	}
	handle.Bind(ref)

	s.publish(EventTaskStarted, handle)
	s.progress.Update(progress.Delta{Started: 1, Running: 1})
	return handle, nil
}

// Stop stops every live run matching both name and owner.  Unknown names or
// owners are a no-op.
func (s *Service) Stop(ctx context.Context, name string, owner *track.Owner) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("registry.stop %s", name), "INTERNAL")
	defer tracing.EndSpan(span, nil)
	s.stopHandles(ctx, s.HandlesFor(name, owner))
}

// StopHandle stops one specific run.  It is a no-op when the handle is nil
// or already ended.
func (s *Service) StopHandle(ctx context.Context, handle *track.Handle) {
	if handle == nil || handle.Ended() {
		return
	}
	s.stopHandles(ctx, []*track.Handle{handle})
}

// StopAll stops every live run across all names and owners.
func (s *Service) StopAll(ctx context.Context) {
	ctx, span := tracing.StartSpan(ctx, "registry.stopAll", "INTERNAL")
	defer tracing.EndSpan(span, nil)
	s.stopHandles(ctx, s.Running())
}

// StopAllByOwner stops every live run requested by owner.
func (s *Service) StopAllByOwner(ctx context.Context, owner *track.Owner) {
	s.stopHandles(ctx, s.RunningByOwner(owner))
}

// stopHandles cancels the underlying work of each handle and settles its
// bookkeeping.  Cancellation failures are tolerated so that the registry
// never keeps a live entry for work whose executor is already gone.
func (s *Service) stopHandles(ctx context.Context, handles []*track.Handle) {
	for _, handle := range handles {
		if handle.Ended() {
			continue
		}
		if ref := handle.Ref(); ref != "" {
			if err := s.scheduler.Cancel(ctx, ref); err != nil && !errors.Is(err, scheduler.ErrNotFound) {
				log.Printf("registry: cancelling %v (%v) failed: %v", handle.Name(), handle.ID(), err)
			}
		}
		s.onCompleted(handle, reasonStopped)
	}
}

// onCompleted settles a run: it removes the handle from the running set,
// marks it ended, records it in history and only then releases waiters.
// Natural completion and explicit stops both funnel through here; removal
// from the running set doubles as the idempotency guard, so a stop followed
// by the natural completion signal counts once.
func (s *Service) onCompleted(handle *track.Handle, reason completionReason) {
	if handle == nil {
		return
	}
	s.mux.Lock()
	if !s.removeRunningLocked(handle) {
		s.mux.Unlock()
		return
	}
	handle.End()
	s.mux.Unlock()

	delta := progress.Delta{Running: -1}
	if reason == reasonStopped {
		delta.Stopped = 1
	} else {
		delta.Completed = 1
	}

	var evicted []*track.Handle
	if s.history != nil {
		// bookkeeping must not depend on the caller's context; a stopped
		// run's context is already cancelled
		var err error
		if evicted, err = s.history.Append(context.Background(), handle); err != nil {
			log.Printf("registry: failed to record %v (%v) in history: %v", handle.Name(), handle.ID(), err)
		}
		delta.Evicted = len(evicted)
	}

	s.publish(reason.eventType(), handle)
	for _, old := range evicted {
		s.publish(EventTaskEvicted, old)
	}
	s.progress.Update(delta)
	handle.Settle()
}

// removeRunningLocked removes the handle from its name bucket, deleting the
// bucket when it empties.  It reports whether the handle was still tracked.
func (s *Service) removeRunningLocked(handle *track.Handle) bool {
	bucket := s.running[handle.Name()]
	for i, candidate := range bucket {
		if candidate == handle {
			bucket = append(bucket[:i], bucket[i+1:]...)
			if len(bucket) == 0 {
				delete(s.running, handle.Name())
			} else {
				s.running[handle.Name()] = bucket
			}
			return true
		}
	}
	return false
}

// publish emits a lifecycle event when an event service is attached.
func (s *Service) publish(eventType string, handle *track.Handle) {
	if s.publisher == nil {
		return
	}
	snapshot := handle.Snapshot()
	aContext := &event.Context{
		TaskID:    snapshot.ID,
		TaskName:  snapshot.Name,
		EventType: eventType,
	}
	if snapshot.Owner != nil {
		aContext.OwnerID = snapshot.Owner.ID
		aContext.OwnerLabel = snapshot.Owner.Label
	}
	if snapshot.EndedAt != nil {
		aContext.TimeTakenMs = int(snapshot.EndedAt.Sub(snapshot.StartedAt).Milliseconds())
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(ctx, event.NewEvent(aContext, snapshot)); err != nil {
		log.Printf("registry: failed to publish %v for %v: %v", eventType, snapshot.ID, err)
	}
}
