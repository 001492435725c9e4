package event

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/taskly/service/messaging"
	"github.com/viant/taskly/service/messaging/fs"
	"github.com/viant/taskly/service/messaging/memory"
)

// Service fans notifications out to typed publishers backed by the configured
// queue vendor.  Every typed publisher mirrors its events onto an untyped
// fan-in queue so a single listener can observe every payload type at once.
type Service struct {
	vendor    messaging.Vendor
	fsConfig  func(name string) fs.Config
	memConfig func(name string) memory.Config

	fanin    *Publisher[any]
	observer *Listener[any]

	mux        sync.RWMutex
	publishers map[reflect.Type]any
	stops      map[reflect.Type]func()
}

// New creates an event service on top of the given queue vendor.  The vendor
// must come with a queue configuration factory; see the options.
func New(vendor messaging.Vendor, options ...Option) (*Service, error) {
	s := &Service{
		vendor:     vendor,
		publishers: make(map[reflect.Type]any),
		stops:      make(map[reflect.Type]func()),
	}
	for _, option := range options {
		option(s)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	queue, err := QueueOf[Event[any]](s, "any")
	if err != nil {
		return nil, err
	}
	s.fanin = NewPublisher[any](queue)
	return s, nil
}

func (s *Service) validate() error {
	switch s.vendor {
	case messaging.VendorFs:
		if s.fsConfig == nil {
			return fmt.Errorf("event: fs vendor requires a queue config factory")
		}
	case messaging.VendorMemory:
		if s.memConfig == nil {
			return fmt.Errorf("event: memory vendor requires a queue config factory")
		}
	default:
		return fmt.Errorf("event: unsupported queue vendor: %q", s.vendor)
	}
	return nil
}

// SetListener installs handler as the observer of the untyped fan-in queue,
// replacing any previous one.
func (s *Service) SetListener(handler func(*Event[any])) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.observer != nil {
		s.observer.Stop()
	}
	s.observer = NewListener[any](s.fanin, handler)
	s.observer.Start()
}

// Shutdown stops the observer and every typed listener.  Publishing remains
// possible afterwards; nothing consumes the queues.
func (s *Service) Shutdown() {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.observer != nil {
		s.observer.Stop()
		s.observer = nil
	}
	for key, stop := range s.stops {
		stop()
		delete(s.stops, key)
	}
}

// QueueOf builds a vendor queue carrying T under the given name.
func QueueOf[T any](s *Service, name string) (messaging.Queue[T], error) {
	switch s.vendor {
	case messaging.VendorFs:
		return fs.NewQueue[T](afs.New(), s.fsConfig(name))
	case messaging.VendorMemory:
		return memory.NewQueue[T](s.memConfig(name)), nil
	}
	return nil, fmt.Errorf("event: unsupported queue vendor: %q", s.vendor)
}

// PublisherOf returns the publisher carrying T, creating it on first use.
// Publishers are cached so that every caller shares one queue per type.
func PublisherOf[T any](s *Service) (*Publisher[T], error) {
	key := typeKey[T]()
	if key == nil {
		if publisher, ok := any(s.fanin).(*Publisher[T]); ok {
			return publisher, nil
		}
		return nil, fmt.Errorf("event: unsupported payload type")
	}
	s.mux.RLock()
	cached, ok := s.publishers[key]
	s.mux.RUnlock()
	if ok {
		return cached.(*Publisher[T]), nil
	}

	s.mux.Lock()
	defer s.mux.Unlock()
	if cached, ok := s.publishers[key]; ok {
		return cached.(*Publisher[T]), nil
	}
	queue, err := QueueOf[Event[T]](s, key.String())
	if err != nil {
		return nil, err
	}
	publisher := NewPublisher[T](queue)
	publisher.fanout = s.fanin.queue
	s.publishers[key] = publisher
	return publisher, nil
}

// SetListenerOf consumes events carrying T on a background goroutine,
// replacing any previous listener for the same type.
func SetListenerOf[T any](s *Service, handler func(*Event[T])) error {
	publisher, err := PublisherOf[T](s)
	if err != nil {
		return err
	}
	listener := NewListener[T](publisher, handler)

	key := typeKey[T]()
	s.mux.Lock()
	if stop, ok := s.stops[key]; ok {
		stop()
	}
	s.stops[key] = listener.Stop
	s.mux.Unlock()

	listener.Start()
	return nil
}

// typeKey derives the cache key for payload type T.  Interface types have no
// concrete reflect type and yield nil.
func typeKey[T any]() reflect.Type {
	var probe T
	rType := reflect.TypeOf(probe)
	if rType != nil && rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}
