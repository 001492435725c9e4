// Package registry tracks cooperative tasks launched by independent owners.
// It enforces per-name start policies, exposes stop and query operations
// scoped by task name and owner, and optionally retains a bounded history of
// completed runs for diagnostics.  The registry performs bookkeeping only;
// executing and cancelling the underlying work is delegated to a scheduler
// implementation.
package registry
