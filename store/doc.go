// Package store provides Redis-backed persistence for clients and their
// auth tokens.
//
// # Key layout
//
// All keys share a configurable prefix (default "tg"):
//
//	<p>t:<token>        token record (JSON)
//	<p>p:<user>:<client> pair index — token string, enforces one token per (user, client)
//	<p>i:<id>           record-id index — token string
//	<p>u:<user>         set of the user's token strings
//	<p>k:<client>       set of the client's token strings (cascade index)
//	<p>c:<name>         client record (JSON)
//	<p>cl               set of client names
//
// # Invariants
//
// Token creation is a single Lua script so the (user, client) uniqueness
// and the token-string uniqueness are enforced inside Redis, never by
// check-then-insert in Go. Token records carry no Redis TTL: expiry is a
// record field enforced lazily by the authenticator, which is what makes
// non-expiring tokens and the exactly-once expiry notification possible.
//
// # What this package must NOT do
//
//   - Decide authentication or throttling policy (the engine owns both).
//   - Generate token strings (the engine's issuer owns generation and
//     collision retries).
package store
