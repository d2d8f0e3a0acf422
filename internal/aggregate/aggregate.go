package aggregate

import (
	"fmt"
	"math"

	"github.com/sunscout/sunscout/internal/feasibility"
)

// weightSumTolerance bounds the floating-point slack allowed when checking
// that a weight table sums to 1.0.
const weightSumTolerance = 1e-9

// Weights maps each dimension to its share of the composite score.
// A valid table covers every registered dimension and sums to 1.0.
type Weights map[feasibility.Dimension]float64

// Default returns the standard weight table: research 0.4, permitting 0.3,
// design 0.3.
func Default() Weights {
	return Weights{
		feasibility.DimensionResearch:   0.4,
		feasibility.DimensionPermitting: 0.3,
		feasibility.DimensionDesign:     0.3,
	}
}

// Validate checks that w assigns a positive weight to every dimension in dims,
// carries no extraneous entries, and sums to 1.0 within tolerance. This is the
// configuration-time check; Composite assumes a valid table.
func Validate(w Weights, dims []feasibility.Dimension) error {
	if len(dims) == 0 {
		return fmt.Errorf("aggregate: no dimensions to weight")
	}

	covered := make(map[feasibility.Dimension]bool, len(dims))
	var sum float64
	for _, d := range dims {
		weight, ok := w[d]
		if !ok {
			return fmt.Errorf("aggregate: missing weight for dimension %q", d)
		}
		if weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return fmt.Errorf("aggregate: weight for %q must be a positive finite number", d)
		}
		covered[d] = true
		sum += weight
	}
	for d := range w {
		if !covered[d] {
			return fmt.Errorf("aggregate: weight for unregistered dimension %q", d)
		}
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("aggregate: weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// Composite folds the settled outcomes into a single weighted score.
//
// Only successful outcomes contribute. The composite is renormalized over the
// successful subset: Σ(w_d·s_d) / Σ(w_d) for successful d. When no dimension
// succeeded the second return value is false and no score is fabricated.
//
// The result depends only on the set of outcomes, not their order, so it is
// identical regardless of which producer finished first.
func Composite(outcomes []feasibility.Outcome, w Weights) (float64, bool) {
	var weighted, weightSum float64
	for _, o := range outcomes {
		if o.Status != feasibility.StatusSuccess {
			continue
		}
		weight := w[o.Dimension]
		weighted += weight * o.SubScore
		weightSum += weight
	}
	if weightSum == 0 {
		return 0, false
	}
	return weighted / weightSum, true
}
