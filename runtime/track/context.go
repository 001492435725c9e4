package track

import (
	"context"
	"reflect"
)

// HandleKey is the context key under which a run's own handle travels.
var HandleKey = KeyOf[*Handle]()

// KeyOf returns the reflect.Type of the provided type, used as context key.
func KeyOf[T any]() reflect.Type {
	var t T
	return reflect.TypeOf(t)
}

// ContextValue returns the value of the provided type from the context.
func ContextValue[T any](ctx context.Context) T {
	var t T
	if ctx == nil {
		return t
	}
	if value := ctx.Value(KeyOf[T]()); value != nil {
		if typed, ok := value.(T); ok {
			return typed
		}
	}
	return t
}

// WithHandle embeds the handle in ctx so the running body can look its own
// run up.
func WithHandle(ctx context.Context, handle *Handle) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, HandleKey, handle)
}

// HandleFromContext returns the handle embedded in ctx, or nil.
func HandleFromContext(ctx context.Context) *Handle {
	return ContextValue[*Handle](ctx)
}
