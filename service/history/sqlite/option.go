package sqlite

type Option func(*Service)

// WithConfig replaces the whole configuration.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithDSN overrides where the database lives.  An empty value keeps the
// in-memory default.
func WithDSN(dsn string) Option {
	return func(s *Service) {
		if dsn != "" {
			s.config.DSN = dsn
		}
	}
}

// WithMaxEntries overrides the global bound on retained runs.  Non-positive
// values fall back to the package default.
func WithMaxEntries(maxEntries int) Option {
	return func(s *Service) {
		s.config.MaxEntries = maxEntries
	}
}
