// Package rate provides the Redis-backed request throttle keyed on the
// authenticated user-client identity, plus parsing and validation of the
// "count/period" rate strings carried by client records.
//
// # Window semantics
//
// Fixed-window counters aligned to the wall clock: the window bucket is
// derived from unix time divided by the period, so every identity sharing a
// period also shares window boundaries. This deliberately avoids the
// reset-on-first-request variant, whose windows drift per identity and make
// the observed limit depend on request phase. Keys: INCR + conditional
// EXPIRE on the first hit of a bucket, prefix "trl:".
//
// # What this package must NOT do
//
//   - Resolve which rate applies to a request (the engine owns rate
//     resolution order).
//   - Be imported outside the tokengate module.
package rate
