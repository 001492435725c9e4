package taskly

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/viant/taskly/catalog"
	"github.com/viant/taskly/model/task"
	"github.com/viant/taskly/policy"
	"github.com/viant/taskly/progress"
	"github.com/viant/taskly/runtime/track"
	"github.com/viant/taskly/service/event"
	"github.com/viant/taskly/service/history"
	histmem "github.com/viant/taskly/service/history/memory"
	histsqlite "github.com/viant/taskly/service/history/sqlite"
	"github.com/viant/taskly/service/registry"
	"github.com/viant/taskly/service/scheduler"
	schedmem "github.com/viant/taskly/service/scheduler/memory"
)

// ErrUnknownTask is returned by StartNamed when the catalog holds no
// definition under the requested name.
var ErrUnknownTask = errors.New("taskly: unknown task")

// Service is the facade tying registry, scheduler, history, catalog and
// events together.
type Service struct {
	config    *Config
	scheduler scheduler.Service
	history   history.Store
	events    *event.Service
	catalog   *catalog.Service
	progress  *progress.Progress
	registry  *registry.Service

	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates the facade.  Unset collaborators are wired from the
// configuration: an in-process scheduler, a memory or sqlite history store
// when retention is enabled, an empty catalog.
func New(options ...Option) (*Service, error) {
	s := &Service{}
	for _, opt := range options {
		opt(s)
	}
	if err := s.ensureBaseSetup(); err != nil {
		return nil, err
	}

	registryOptions := []registry.Option{registry.WithScheduler(s.scheduler)}
	if s.history != nil {
		registryOptions = append(registryOptions, registry.WithHistory(s.history))
	}
	if s.events != nil {
		registryOptions = append(registryOptions, registry.WithEventService(s.events))
	}
	if s.progress != nil {
		registryOptions = append(registryOptions, registry.WithProgress(s.progress))
	}
	aRegistry, err := registry.New(registryOptions...)
	if err != nil {
		return nil, err
	}
	s.registry = aRegistry
	return s, nil
}

func (s *Service) ensureBaseSetup() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.scheduler == nil {
		s.scheduler = schedmem.New(schedmem.WithShutdownTimeout(
			time.Duration(s.config.Scheduler.ShutdownTimeoutMs) * time.Millisecond))
	}
	if s.history == nil && s.config.History.Enabled {
		switch s.config.History.Backend {
		case "", HistoryBackendMemory:
			s.history = histmem.New(histmem.WithMaxEntries(s.config.History.MaxEntries))
		case HistoryBackendSQLite:
			store, err := histsqlite.New(
				histsqlite.WithDSN(s.config.History.DSN),
				histsqlite.WithMaxEntries(s.config.History.MaxEntries))
			if err != nil {
				return fmt.Errorf("history store: %w", err)
			}
			s.history = store
		}
	}
	if s.catalog == nil {
		s.catalog = catalog.New()
	}
	return nil
}

// Registry returns the run registry.
func (s *Service) Registry() *registry.Service {
	return s.registry
}

// Catalog returns the named-definition catalog.
func (s *Service) Catalog() *catalog.Service {
	return s.catalog
}

// Progress returns the attached counter tracker, or nil.
func (s *Service) Progress() *progress.Progress {
	return s.progress
}

// Register adds a task definition to the catalog.
func (s *Service) Register(aTask *task.Task) error {
	return s.catalog.Register(aTask)
}

// Start launches a run of the task on behalf of owner, subject to the start
// policy.
func (s *Service) Start(ctx context.Context, owner *track.Owner, aTask *task.Task, aPolicy policy.Policy) (*track.Handle, error) {
	return s.registry.Start(ctx, owner, aTask, aPolicy)
}

// StartNamed starts a catalogued task by name.
func (s *Service) StartNamed(ctx context.Context, owner *track.Owner, name string, aPolicy policy.Policy) (*track.Handle, error) {
	aTask := s.catalog.Lookup(name)
	if aTask == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownTask, name)
	}
	return s.registry.Start(ctx, owner, aTask, aPolicy)
}

// Shutdown stops every live run, shuts the scheduler and event listeners
// down and closes the history store.  It is idempotent; later calls return
// the first outcome.
func (s *Service) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.registry.StopAll(ctx)
		if closer, ok := s.scheduler.(interface{ Shutdown() }); ok {
			closer.Shutdown()
		}
		if s.events != nil {
			s.events.Shutdown()
		}
		if s.history != nil {
			s.shutdownErr = s.history.Close()
		}
	})
	return s.shutdownErr
}
