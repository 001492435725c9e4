// Package taskly provides a concurrency-safe registry for cooperative tasks
// whose execution is delegated to an external scheduler.
//
// The registry tracks live runs by task name and owner, applies start
// policies (allow multiple, use existing, stop existing), exposes a query
// and stop surface, and optionally retains a bounded history of completed
// runs for diagnostics.  It never runs task bodies itself:
//
//   - registry: run bookkeeping, policies, queries
//   - scheduler: the execution boundary (in-process goroutine default)
//   - history: bounded completed-run retention (memory or sqlite)
//   - catalog: named task definitions
//   - event: lifecycle notifications (started/completed/stopped/evicted)
//
// Taskly is designed to be embedded in host applications.  End-users
// typically interact via the high-level Service facade exposed by the root
// package:
//
//	srv, _ := taskly.New(taskly.WithHistory(50))
//	defer srv.Shutdown(ctx)
//
//	owner := track.NewOwner("importer")
//	handle, _ := srv.Start(ctx, owner, task.New("sync", syncBody), policy.Default)
//	_ = handle.Wait(ctx)
//
// For more details see the README and individual sub-packages.
package taskly
