// Package policy provides optional start rules that can be applied on top of
// a task registry, for example to stop a previous run of the same task or to
// reuse it instead of starting a duplicate.
package policy
