// Package middleware exposes HTTP adapters for bearer authentication and
// per-client request throttling on top of tokengate.Engine.
//
// # Guards
//
//   - [Authenticate] — resolves the Authorization header; anonymous
//     requests pass through, failed attempts get a 401.
//   - [RequireAuth] — rejects requests that did not authenticate.
//   - [Throttle] — counts the request against the caller's identity and
//     answers 429 once the window is exhausted.
//
// [Authenticate] injects the resolved [tokengate.Auth] into the request
// context; handlers retrieve it with [AuthFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself.
//
// # What this package must NOT do
//
//   - Read or write token records (the Engine owns all store I/O).
//   - Partially authenticate: a failed attempt never reaches the handler
//     with a user attached.
//   - Make throttling decisions locally (windows live in Redis so they
//     hold across processes).
package middleware
