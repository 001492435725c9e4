// Package policy defines how starting a task interacts with live runs that
// already share the same (name, owner) pair.  It is deliberately decoupled
// from the registry so that using it is entirely opt-in; callers that pass
// policy.Default keep the permissive behaviour.

package policy

import (
	"context"
	"fmt"
	"strings"
)

// Policy controls how Start treats live runs that already share the task name
// and owner of the new request.
type Policy string

// Start policies recognised by the registry.
const (
	// Default defers to a policy embedded in the context, falling back to
	// AllowMultiple when none is present.
	Default Policy = ""

	// AllowMultiple starts the new run unconditionally; prior runs keep going.
	AllowMultiple Policy = "allowMultiple"

	// UseExisting returns the oldest live run with the same name and owner
	// instead of starting a new one.
	UseExisting Policy = "useExisting"

	// StopExisting stops every live run with the same name and owner before
	// starting the new one.
	StopExisting Policy = "stopExisting"
)

// Valid reports whether p is one of the recognised policies.
func (p Policy) Valid() bool {
	switch p {
	case Default, AllowMultiple, UseExisting, StopExisting:
		return true
	}
	return false
}

// Parse converts a textual policy (as found in configuration files) into a
// Policy. Matching is case-insensitive; an empty string yields Default.
func Parse(text string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "":
		return Default, nil
	case "allowmultiple":
		return AllowMultiple, nil
	case "useexisting":
		return UseExisting, nil
	case "stopexisting":
		return StopExisting, nil
	}
	return Default, fmt.Errorf("unknown policy: %q", text)
}

// Resolve collapses Default into a concrete policy: an explicit p wins,
// otherwise the policy embedded in ctx, otherwise AllowMultiple.
func Resolve(ctx context.Context, p Policy) Policy {
	if p != Default {
		return p
	}
	if embedded := FromContext(ctx); embedded != Default {
		return embedded
	}
	return AllowMultiple
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the embedded policy, or Default when absent.
func FromContext(ctx context.Context) Policy {
	if ctx == nil {
		return Default
	}
	if v, ok := ctx.Value(ctxKey).(Policy); ok {
		return v
	}
	return Default
}
