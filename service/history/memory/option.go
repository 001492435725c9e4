package memory

type Option func(*Service)

// WithMaxEntries overrides the global bound on retained runs.  Non-positive
// values fall back to the package default.
func WithMaxEntries(maxEntries int) Option {
	return func(s *Service) {
		s.maxEntries = maxEntries
	}
}
