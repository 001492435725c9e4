// Package idgen wraps the UUID generator so that handle and owner identifiers
// can be stubbed in tests. It lives under `internal` because callers should
// not rely on its exact behaviour; identifiers are opaque strings.
package idgen
