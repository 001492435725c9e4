package taskly

import (
	"github.com/viant/taskly/catalog"
	"github.com/viant/taskly/progress"
	"github.com/viant/taskly/service/event"
	"github.com/viant/taskly/service/history"
	histmem "github.com/viant/taskly/service/history/memory"
	"github.com/viant/taskly/service/scheduler"
	"github.com/viant/taskly/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the Service facade
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithScheduler sets the scheduler the registry delegates execution to
func WithScheduler(svc scheduler.Service) Option {
	return func(s *Service) {
		s.scheduler = svc
	}
}

// WithHistoryStore sets the completed-run store
func WithHistoryStore(store history.Store) Option {
	return func(s *Service) {
		s.history = store
	}
}

// WithHistory enables in-memory completed-run retention bounded to
// maxEntries.
func WithHistory(maxEntries int) Option {
	return func(s *Service) {
		s.history = histmem.New(histmem.WithMaxEntries(maxEntries))
	}
}

// WithEventService sets the lifecycle event service
func WithEventService(service *event.Service) Option {
	return func(s *Service) {
		s.events = service
	}
}

// WithCatalog sets the named-definition catalog
func WithCatalog(service *catalog.Service) Option {
	return func(s *Service) {
		s.catalog = service
	}
}

// WithProgress sets the aggregate run-counter tracker
func WithProgress(tracker *progress.Progress) Option {
	return func(s *Service) {
		s.progress = tracker
	}
}

// WithTracing enables OpenTelemetry tracing with the stdout exporter, writing
// to outputFile when set.  Only the first successful initialisation takes
// effect; later calls are no-ops.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter enables OpenTelemetry tracing with a caller-supplied
// span exporter, for example OTLP or Zipkin.  Only the first successful
// initialisation takes effect; later calls are no-ops.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
