// Package history defines the store that retains completed runs for
// diagnostics.  The store is bounded globally: when an append pushes the
// total count over the configured maximum, the entry with the oldest end
// time is evicted first, with ties broken by insertion order.
package history

import (
	"context"

	"github.com/viant/taskly/runtime/track"
)

// DefaultMaxEntries bounds the history when no explicit limit is configured.
const DefaultMaxEntries = 100

// Store records ended runs keyed by task name.  Implementations are safe for
// concurrent use and enforce the global bound on every Append.
type Store interface {
	// Append records an ended handle and applies the global bound, returning
	// the handles it evicted to stay within it (usually none or one).
	Append(ctx context.Context, handle *track.Handle) ([]*track.Handle, error)

	// ByName returns the retained runs of the named task in insertion order.
	ByName(ctx context.Context, name string) ([]*track.Handle, error)

	// ByOwner returns the retained runs requested by the owner with the
	// given ID, in insertion order.
	ByOwner(ctx context.Context, ownerID string) ([]*track.Handle, error)

	// List returns every retained run in insertion order.
	List(ctx context.Context) ([]*track.Handle, error)

	// Count returns the number of retained runs.
	Count(ctx context.Context) (int, error)

	// Clear removes every retained run.
	Clear(ctx context.Context) error

	// ClearByOwner removes the retained runs requested by the owner with the
	// given ID.
	ClearByOwner(ctx context.Context, ownerID string) error

	// Close releases resources held by the store.
	Close() error
}
