// Package internal contains helper utilities that are intentionally
// private to tokengate, currently secure token-string generation.
//
// # Sub-packages
//
//   - event — async lifecycle event dispatch (Dispatcher + Sink implementations)
//   - rate  — Redis-backed fixed-window throttle and rate-string parsing
//
// # What this package must NOT do
//
//   - Export types that appear in the public tokengate API.
//   - Be imported by any package outside the tokengate module.
package internal
