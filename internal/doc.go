// Package internal contains helper utilities that are intentionally private
// to the authentication engine, currently secure one-time-code generation.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - rate — Redis-backed fixed-window rate limit primitives
//
// # What this package must NOT do
//
//   - Export types that appear in the public API.
//   - Be imported by any package outside this module.
package internal
