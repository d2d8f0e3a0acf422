// Package invoker isolates one producer call behind a timeout race.
//
// Invoke never raises: producer errors and panics become StatusFailed with
// reason producer_failure, deadline expiry becomes StatusTimedOut with reason
// producer_timeout, and a well-formed result becomes StatusSuccess with the
// sub-score clamped to [0,100] when needed. The caller is never blocked past
// the timeout — a hung producer is abandoned, not waited for.
package invoker
