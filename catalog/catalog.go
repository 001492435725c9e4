package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/taskly/model/task"
)

// ErrDuplicate is returned when a definition is registered under a name that
// is already taken.
var ErrDuplicate = errors.New("catalog: duplicate task")

// Service provides named task definitions
type Service struct {
	definitions map[string]*task.Task
	mux         sync.RWMutex
}

// Lookup returns a definition by name, or nil when the name is unknown.
func (s *Service) Lookup(name string) *task.Task {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.definitions[name]
}

// Register registers a task definition under its Ident.  Registering a nil
// task or a body-less task is rejected, as is reusing a taken name.
func (s *Service) Register(aTask *task.Task) error {
	if aTask == nil || aTask.Body == nil {
		return fmt.Errorf("catalog: task body is required")
	}
	name := aTask.Ident()
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.definitions[name]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicate, name)
	}
	s.definitions[name] = aTask
	return nil
}

// MustRegister registers a definition and panics on failure.  Intended for
// package init-time registration.
func (s *Service) MustRegister(aTask *task.Task) {
	if err := s.Register(aTask); err != nil {
		panic(err)
	}
}

// Names returns the registered names in lexical order.
func (s *Service) Names() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	names := make([]string, 0, len(s.definitions))
	for name := range s.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the number of registered definitions.
func (s *Service) Size() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return len(s.definitions)
}

// New creates a catalog, registering the supplied definitions.  Nil entries
// are skipped; registration failures panic, matching init-time usage.
func New(tasks ...*task.Task) *Service {
	ret := &Service{definitions: make(map[string]*task.Task)}
	for _, aTask := range tasks {
		if aTask != nil {
			ret.MustRegister(aTask)
		}
	}
	return ret
}
