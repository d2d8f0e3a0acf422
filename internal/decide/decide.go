package decide

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sunscout/sunscout/internal/feasibility"
)

// DefaultGoThreshold is the composite score at or above which the decision is GO.
const DefaultGoThreshold = 70.0

// indeterminateStatement is emitted when no dimension could be evaluated.
const indeterminateStatement = "no dimension could be evaluated; feasibility is indeterminate"

// Decide maps a composite score to the final verdict and builds the ranked
// justification. The threshold is inclusive on the GO side.
//
// This is a pure function: the same outcomes and score always yield the same
// decision and justification text, byte for byte, regardless of the order in
// which the outcomes originally completed.
func Decide(score float64, defined bool, outcomes []feasibility.Outcome, threshold float64) (feasibility.Decision, []string) {
	justification := make([]string, 0, len(outcomes)+1)
	for _, o := range canonical(outcomes) {
		justification = append(justification, statement(o))
	}

	if !defined {
		justification = append(justification, indeterminateStatement)
		return feasibility.DecisionIndeterminate, justification
	}

	if score >= threshold {
		justification = append(justification,
			fmt.Sprintf("composite score %.2f meets GO threshold %.2f", score, threshold))
		return feasibility.DecisionGo, justification
	}

	justification = append(justification,
		fmt.Sprintf("composite score %.2f is below GO threshold %.2f", score, threshold))
	return feasibility.DecisionNoGo, justification
}

// statement renders one dimension's line of the justification. Producer notes
// are passed through verbatim; failures get a standard unavailable line with
// the reason code only.
func statement(o feasibility.Outcome) string {
	if o.Status != feasibility.StatusSuccess {
		return fmt.Sprintf("%s unavailable: %s", o.Dimension, o.Reason)
	}
	if len(o.Notes) == 0 {
		return fmt.Sprintf("%s (%.1f/100)", o.Dimension, o.SubScore)
	}
	return fmt.Sprintf("%s (%.1f/100): %s", o.Dimension, o.SubScore, strings.Join(o.Notes, "; "))
}

// canonical returns the outcomes sorted into canonical dimension order without
// mutating the input.
func canonical(outcomes []feasibility.Outcome) []feasibility.Outcome {
	out := make([]feasibility.Outcome, len(outcomes))
	copy(out, outcomes)
	sort.SliceStable(out, func(i, j int) bool {
		return feasibility.CanonicalIndex(out[i].Dimension) < feasibility.CanonicalIndex(out[j].Dimension)
	})
	return out
}
