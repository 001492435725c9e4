// Package clock wraps the wall clock so that time-stamping can be stubbed in
// tests. It lives under `internal` because callers should treat the produced
// timestamps as opaque bookkeeping values.
package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }
