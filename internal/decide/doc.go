// Package decide renders the final GO / NO_GO / INDETERMINATE verdict.
//
// An undefined composite (no successful dimension) is INDETERMINATE — a
// distinct state, never collapsed into NO_GO. Otherwise the decision is GO
// when the composite meets the threshold (inclusive) and NO_GO below it.
// The justification lists one statement per dimension in canonical order,
// then the composite-versus-threshold comparison.
package decide
