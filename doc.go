// Package tokengate provides a per-client API token authentication
// engine: it issues, validates, renews, and revokes opaque bearer tokens
// scoped to a (user, client) pair, and throttles requests keyed on that
// authenticated pair.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build]. Request handling is one-shot and stateless; the only
// cross-request state is the Redis-backed token store and throttle
// windows, plus the optional in-process auth-result cache.
//
// # Architecture boundaries
//
// tokengate is the public surface. It exposes [Engine], [Builder],
// [Config], and value types (Auth, LoginResult, SessionInfo, Event). The
// Redis store lives in the store sub-package; throttle primitives and
// event dispatch live under internal/ and are never exported.
//
// # Consistency
//
// Token expiry is lazy: there is no background sweep, every
// authentication attempt against an expired token performs the one-shot
// cleanup and emits a single expiry event. Enabling the auth-result cache
// trades a bounded staleness window (a revoked or freshly expired token
// may still authenticate until its cache entry lapses) for fewer store
// round-trips; callers that need immediate revocation must leave it off.
package tokengate
