// Package track holds the live state of runs supervised by a task registry.
// A Handle pairs the immutable identity of one run (name, owner, start time)
// with its mutable lifecycle state; the registry is the only component that
// transitions a handle, callers treat handles as read-only.
package track
