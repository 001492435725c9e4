package event

import (
	"github.com/viant/taskly/service/messaging/fs"
	"github.com/viant/taskly/service/messaging/memory"
)

// Option customises the event service.
type Option func(s *Service)

// WithNewFsQueueConfig supplies the per-queue configuration factory for the
// filesystem vendor.
func WithNewFsQueueConfig(newConfig func(name string) fs.Config) Option {
	return func(s *Service) {
		s.fsConfig = newConfig
	}
}

// WithNewMemoryQueueConfig supplies the per-queue configuration factory for
// the memory vendor.
func WithNewMemoryQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.memConfig = newConfig
	}
}
