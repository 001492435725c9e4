package taskly

import "context"

type serviceKeyT struct{}

var serviceKey serviceKeyT

// WithService embeds the facade in ctx so that components receiving only a
// context can reach the registry.  Usage stays explicit: nothing in this
// package installs a process-wide default.
func WithService(ctx context.Context, s *Service) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, serviceKey, s)
}

// FromContext extracts the embedded facade, or nil when absent.
func FromContext(ctx context.Context) *Service {
	if ctx == nil {
		return nil
	}
	if s, ok := ctx.Value(serviceKey).(*Service); ok {
		return s
	}
	return nil
}
