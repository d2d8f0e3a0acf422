package decide

import (
	"strings"
	"testing"

	"github.com/sunscout/sunscout/internal/feasibility"
)

func success(dim feasibility.Dimension, score float64, notes ...string) feasibility.Outcome {
	return feasibility.Outcome{
		Dimension: dim,
		Status:    feasibility.StatusSuccess,
		SubScore:  score,
		Notes:     notes,
	}
}

func timedOut(dim feasibility.Dimension) feasibility.Outcome {
	return feasibility.Outcome{
		Dimension: dim,
		Status:    feasibility.StatusTimedOut,
		Reason:    feasibility.ReasonProducerTimeout,
	}
}

func TestDecide_Boundaries(t *testing.T) {
	outcomes := []feasibility.Outcome{success(feasibility.DimensionResearch, 70)}

	tests := []struct {
		name    string
		score   float64
		defined bool
		want    feasibility.Decision
	}{
		{name: "exactly at threshold is GO", score: 70.0, defined: true, want: feasibility.DecisionGo},
		{name: "just below threshold is NO_GO", score: 69.999, defined: true, want: feasibility.DecisionNoGo},
		{name: "well above threshold is GO", score: 81.0, defined: true, want: feasibility.DecisionGo},
		{name: "undefined score is INDETERMINATE", defined: false, want: feasibility.DecisionIndeterminate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, justification := Decide(tt.score, tt.defined, outcomes, DefaultGoThreshold)
			if got != tt.want {
				t.Errorf("Decide() = %q, want %q", got, tt.want)
			}
			if len(justification) == 0 {
				t.Error("justification is empty")
			}
		})
	}
}

func TestDecide_JustificationOrderAndContent(t *testing.T) {
	// Deliberately out of canonical order: design, permitting, research.
	outcomes := []feasibility.Outcome{
		success(feasibility.DimensionDesign, 90, "estimated 9.84 kW system"),
		timedOut(feasibility.DimensionPermitting),
		success(feasibility.DimensionResearch, 50, "neutral policy environment"),
	}

	decision, justification := Decide(47.0/0.7, true, outcomes, DefaultGoThreshold)
	if decision != feasibility.DecisionNoGo {
		t.Fatalf("decision = %q, want %q", decision, feasibility.DecisionNoGo)
	}

	if len(justification) != 4 {
		t.Fatalf("len(justification) = %d, want 4: %q", len(justification), justification)
	}
	if !strings.HasPrefix(justification[0], "research") {
		t.Errorf("statement[0] = %q, want research first", justification[0])
	}
	if want := "permitting unavailable: producer_timeout"; justification[1] != want {
		t.Errorf("statement[1] = %q, want %q", justification[1], want)
	}
	if !strings.HasPrefix(justification[2], "design") {
		t.Errorf("statement[2] = %q, want design third", justification[2])
	}
	if !strings.Contains(justification[2], "estimated 9.84 kW system") {
		t.Errorf("statement[2] = %q, producer notes not passed through", justification[2])
	}
	if !strings.Contains(justification[3], "below GO threshold") {
		t.Errorf("statement[3] = %q, want threshold comparison", justification[3])
	}
}

func TestDecide_Indeterminate(t *testing.T) {
	outcomes := []feasibility.Outcome{
		{Dimension: feasibility.DimensionResearch, Status: feasibility.StatusFailed, Reason: feasibility.ReasonProducerFailure},
		timedOut(feasibility.DimensionPermitting),
	}

	decision, justification := Decide(0, false, outcomes, DefaultGoThreshold)
	if decision != feasibility.DecisionIndeterminate {
		t.Fatalf("decision = %q, want indeterminate", decision)
	}
	last := justification[len(justification)-1]
	if !strings.Contains(last, "no dimension could be evaluated") {
		t.Errorf("final statement = %q, want no-dimension explanation", last)
	}
}

func TestDecide_Deterministic(t *testing.T) {
	outcomes := []feasibility.Outcome{
		success(feasibility.DimensionResearch, 90, "favorable signals"),
		success(feasibility.DimensionPermitting, 70, "standard checklist"),
		success(feasibility.DimensionDesign, 80),
	}
	// Same outcome set presented in a different completion order.
	shuffled := []feasibility.Outcome{outcomes[2], outcomes[0], outcomes[1]}

	d1, j1 := Decide(81.0, true, outcomes, DefaultGoThreshold)
	d2, j2 := Decide(81.0, true, shuffled, DefaultGoThreshold)

	if d1 != d2 {
		t.Fatalf("decisions differ: %q vs %q", d1, d2)
	}
	if strings.Join(j1, "\n") != strings.Join(j2, "\n") {
		t.Errorf("justifications differ:\n%q\nvs\n%q", j1, j2)
	}
}

func TestDecide_CustomThreshold(t *testing.T) {
	outcomes := []feasibility.Outcome{success(feasibility.DimensionResearch, 60)}

	if got, _ := Decide(60, true, outcomes, 60); got != feasibility.DecisionGo {
		t.Errorf("Decide(60, threshold 60) = %q, want go", got)
	}
	if got, _ := Decide(60, true, outcomes, 61); got != feasibility.DecisionNoGo {
		t.Errorf("Decide(60, threshold 61) = %q, want no_go", got)
	}
}
