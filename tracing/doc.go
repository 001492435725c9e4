// Package tracing wraps OpenTelemetry behind a couple of helpers (StartSpan,
// EndSpan) so that the rest of the module never imports the upstream API
// directly.  Tracing stays inert until one of the Init variants installs an
// exporter.
package tracing
