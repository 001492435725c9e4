// Package catalog keeps named task definitions so that applications can
// start tasks by name instead of passing bodies around.  The catalog holds
// definitions only; tracking live runs is the registry's job.
package catalog
