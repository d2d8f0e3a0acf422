// Package feasibility defines the core domain types shared by the
// orchestration pipeline: the analysis dimensions and their canonical order,
// per-dimension outcomes (success / failed / timed_out with a bounded
// sub-score), and the immutable composite Report returned to callers.
//
// The package is pure data — no I/O, no logging, no concurrency.
package feasibility
