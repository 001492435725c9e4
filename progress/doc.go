// Package progress keeps aggregated run counters for the tasks a registry
// supervises.  Counters are updated via signed deltas and read either on
// demand through Snapshot or observed through the change callback; a tracker
// can also travel inside a context so that distant components update the
// same counters without a package global.
package progress
