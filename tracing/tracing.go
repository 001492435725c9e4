package tracing

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// scopeName identifies this module as the instrumentation scope.
const scopeName = "github.com/viant/taskly"

var (
	installOnce sync.Once
	installErr  error
)

// Init configures OpenTelemetry with the stdout exporter writing to the named
// file, or to os.Stdout when outputFile is empty.  Only the first successful
// initialisation takes effect; later calls return its outcome.
func Init(serviceName, serviceVersion, outputFile string) error {
	var writer io.Writer = os.Stdout
	if outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		writer = file
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(writer))
	if err != nil {
		return err
	}
	return InitWithExporter(serviceName, serviceVersion, exporter)
}

// InitWithExporter configures OpenTelemetry with the supplied exporter, which
// may be any exporter the SDK supports (OTLP, Jaeger, Zipkin).  Only the
// first successful initialisation takes effect; later calls return its
// outcome.  A nil exporter leaves tracing uninstalled.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	installOnce.Do(func() {
		res, err := resource.New(context.Background(),
			resource.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("service.version", serviceVersion),
			),
		)
		if err != nil {
			installErr = err
			return
		}
		otel.SetTracerProvider(sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		))
	})
	return installErr
}

// Span shields callers from the upstream trace API; the helpers below are the
// only tracing surface the rest of the module uses.
type Span struct {
	span trace.Span
}

// StartSpan begins a child span of ctx.  Unrecognised kinds map to an
// internal span.
func StartSpan(ctx context.Context, name, kind string) (context.Context, *Span) {
	ctx, span := otel.Tracer(scopeName).Start(ctx, name, trace.WithSpanKind(kindOf(kind)))
	return ctx, &Span{span: span}
}

// EndSpan records the outcome on the span and finishes it.  A nil span is
// tolerated so that callers can defer unconditionally.
func EndSpan(sp *Span, err error) {
	if sp == nil {
		return
	}
	sp.SetStatus(err)
	sp.span.End()
}

// WithAttributes attaches the given string attributes to the span.
func (s *Span) WithAttributes(attrs map[string]string) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, attribute.String(k, v))
	}
	s.span.SetAttributes(kvs...)
	return s
}

// SetStatus records err on the span, or an OK status when err is nil.
func (s *Span) SetStatus(err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		return
	}
	s.span.SetStatus(codes.Ok, "")
}

func kindOf(kind string) trace.SpanKind {
	switch kind {
	case "SERVER":
		return trace.SpanKindServer
	case "CLIENT":
		return trace.SpanKindClient
	case "PRODUCER":
		return trace.SpanKindProducer
	case "CONSUMER":
		return trace.SpanKindConsumer
	}
	return trace.SpanKindInternal
}
