// Package orchestrator drives one site evaluation end to end: concurrent
// fan-out of every registered producer through the invoker, a single join on
// "all invocations settled", then aggregation and decision.
//
// Failure or slowness in one dimension cannot affect its siblings — each
// invocation runs in its own goroutine under its own deadline, and a
// per-dimension timeout cancels that invocation only. Configuration problems
// (empty registry, bad weights) are the only errors, and they surface from
// New before any producer runs; Run always returns a well-formed Report.
package orchestrator
