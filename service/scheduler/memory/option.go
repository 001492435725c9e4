package memory

import "time"

type Option func(*Service)

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithShutdownTimeout overrides how long Shutdown waits for running bodies.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.config.ShutdownTimeout = timeout
	}
}
