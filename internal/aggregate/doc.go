// Package aggregate merges settled dimension outcomes into one composite
// feasibility score.
//
// Composite is pure and order-independent: it is the weighted average of
// successful sub-scores, renormalized over the weights of the successful
// subset. An empty successful subset yields an undefined score (signalled
// explicitly, never defaulted to zero). Validate enforces the
// configuration-time invariant that weights cover every registered dimension
// and sum to 1.0.
package aggregate
