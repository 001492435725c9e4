package memory

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/viant/taskly/internal/idgen"
	"github.com/viant/taskly/service/scheduler"
)

// Config represents scheduler service configuration
type Config struct {
	// ShutdownTimeout bounds how long Shutdown waits for running bodies to
	// return after their contexts were cancelled.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		ShutdownTimeout: 5 * time.Second,
	}
}

// Service runs every scheduled body on its own goroutine.  Each body gets a
// cancellable context; Cancel and Shutdown signal those contexts and rely on
// the bodies to return.
type Service struct {
	config Config

	mux    sync.Mutex
	jobs   map[scheduler.Ref]*job
	closed bool

	wg sync.WaitGroup
}

type job struct {
	ref      scheduler.Ref
	cancelFn context.CancelFunc
}

var _ scheduler.Service = (*Service)(nil)

// New creates an in-process scheduler service
func New(options ...Option) *Service {
	s := &Service{
		config: DefaultConfig(),
		jobs:   make(map[scheduler.Ref]*job),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Schedule runs body on a new goroutine.  The body's context preserves the
// values of ctx but not its cancellation; a scheduled body outlives the call
// that started it and stops only via Cancel or Shutdown.
func (s *Service) Schedule(ctx context.Context, body scheduler.Body) (scheduler.Ref, error) {
	if body == nil {
		return "", fmt.Errorf("body is required")
	}

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	s.mux.Lock()
	if s.closed {
		s.mux.Unlock()
		cancel()
		return "", scheduler.ErrClosed
	}
	ref := scheduler.Ref(idgen.New())
	s.jobs[ref] = &job{ref: ref, cancelFn: cancel}
	s.wg.Add(1)
	s.mux.Unlock()

	go s.run(jobCtx, ref, body)
	return ref, nil
}

// run executes the body and releases the job entry once it returns.
func (s *Service) run(ctx context.Context, ref scheduler.Ref, body scheduler.Body) {
	defer s.wg.Done()
	defer func() {
		s.mux.Lock()
		delete(s.jobs, ref)
		s.mux.Unlock()
	}()

	if err := body(ctx); err != nil && ctx.Err() == nil {
		log.Printf("scheduler: job %v failed: %v", ref, err)
	}
}

// Cancel signals the job's context.  It does not wait for the body to return;
// cancellation is cooperative.
func (s *Service) Cancel(ctx context.Context, ref scheduler.Ref) error {
	s.mux.Lock()
	aJob, ok := s.jobs[ref]
	s.mux.Unlock()
	if !ok {
		return scheduler.ErrNotFound
	}
	aJob.cancelFn()
	return nil
}

// Active returns the number of bodies that have not returned yet.
func (s *Service) Active() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.jobs)
}

// Shutdown cancels every job and waits for the bodies to return, up to the
// configured timeout.
func (s *Service) Shutdown() {
	s.mux.Lock()
	if s.closed {
		s.mux.Unlock()
		return
	}
	s.closed = true
	jobs := make([]*job, 0, len(s.jobs))
	for _, aJob := range s.jobs {
		jobs = append(jobs, aJob)
	}
	s.mux.Unlock()

	for _, aJob := range jobs {
		aJob.cancelFn()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(s.config.ShutdownTimeout):
		log.Printf("scheduler: shutdown timed out after %s with %d jobs still running", s.config.ShutdownTimeout, s.Active())
	}
}
