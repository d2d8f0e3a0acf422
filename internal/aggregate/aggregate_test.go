package aggregate

import (
	"math"
	"testing"

	"github.com/sunscout/sunscout/internal/feasibility"
)

const epsilon = 1e-9

func success(dim feasibility.Dimension, score float64) feasibility.Outcome {
	return feasibility.Outcome{Dimension: dim, Status: feasibility.StatusSuccess, SubScore: score}
}

func timedOut(dim feasibility.Dimension) feasibility.Outcome {
	return feasibility.Outcome{
		Dimension: dim,
		Status:    feasibility.StatusTimedOut,
		Reason:    feasibility.ReasonProducerTimeout,
	}
}

func failed(dim feasibility.Dimension) feasibility.Outcome {
	return feasibility.Outcome{
		Dimension: dim,
		Status:    feasibility.StatusFailed,
		Reason:    feasibility.ReasonProducerFailure,
	}
}

func TestComposite(t *testing.T) {
	weights := Default()

	tests := []struct {
		name        string
		outcomes    []feasibility.Outcome
		wantScore   float64
		wantDefined bool
	}{
		{
			name: "all success is the exact weighted average",
			// 0.4*90 + 0.3*70 + 0.3*80 = 36 + 21 + 24 = 81
			outcomes: []feasibility.Outcome{
				success(feasibility.DimensionResearch, 90),
				success(feasibility.DimensionPermitting, 70),
				success(feasibility.DimensionDesign, 80),
			},
			wantScore:   81.0,
			wantDefined: true,
		},
		{
			name: "timed-out dimension renormalizes over the successful subset",
			// (0.4*50 + 0.3*90) / (0.4 + 0.3) = 47 / 0.7 ≈ 67.142857
			outcomes: []feasibility.Outcome{
				success(feasibility.DimensionResearch, 50),
				timedOut(feasibility.DimensionPermitting),
				success(feasibility.DimensionDesign, 90),
			},
			wantScore:   47.0 / 0.7,
			wantDefined: true,
		},
		{
			name: "single survivor gets its own score back",
			// 0.3*65 / 0.3 = 65
			outcomes: []feasibility.Outcome{
				failed(feasibility.DimensionResearch),
				success(feasibility.DimensionPermitting, 65),
				timedOut(feasibility.DimensionDesign),
			},
			wantScore:   65.0,
			wantDefined: true,
		},
		{
			name: "all failed is undefined, not zero",
			outcomes: []feasibility.Outcome{
				failed(feasibility.DimensionResearch),
				failed(feasibility.DimensionPermitting),
				timedOut(feasibility.DimensionDesign),
			},
			wantDefined: false,
		},
		{
			name:        "no outcomes is undefined",
			outcomes:    nil,
			wantDefined: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, defined := Composite(tt.outcomes, weights)
			if defined != tt.wantDefined {
				t.Fatalf("defined = %v, want %v", defined, tt.wantDefined)
			}
			if !defined {
				return
			}
			if math.Abs(got-tt.wantScore) > epsilon {
				t.Errorf("Composite() = %v, want %v (±%v)", got, tt.wantScore, epsilon)
			}
		})
	}
}

func TestComposite_OrderIndependent(t *testing.T) {
	weights := Default()
	outcomes := []feasibility.Outcome{
		success(feasibility.DimensionResearch, 42.5),
		timedOut(feasibility.DimensionPermitting),
		success(feasibility.DimensionDesign, 88.25),
	}
	reversed := []feasibility.Outcome{outcomes[2], outcomes[1], outcomes[0]}

	a, aOK := Composite(outcomes, weights)
	b, bOK := Composite(reversed, weights)

	if aOK != bOK || a != b {
		t.Errorf("Composite depends on outcome order: (%v,%v) vs (%v,%v)", a, aOK, b, bOK)
	}
}

func TestValidate(t *testing.T) {
	dims := []feasibility.Dimension{
		feasibility.DimensionResearch,
		feasibility.DimensionPermitting,
		feasibility.DimensionDesign,
	}

	tests := []struct {
		name    string
		weights Weights
		dims    []feasibility.Dimension
		wantErr bool
	}{
		{
			name:    "default table is valid",
			weights: Default(),
			dims:    dims,
		},
		{
			name: "sum within tolerance passes",
			weights: Weights{
				feasibility.DimensionResearch:   0.4,
				feasibility.DimensionPermitting: 0.3,
				feasibility.DimensionDesign:     0.3 + 1e-12,
			},
			dims: dims,
		},
		{
			name: "sum off by one percent fails",
			weights: Weights{
				feasibility.DimensionResearch:   0.4,
				feasibility.DimensionPermitting: 0.3,
				feasibility.DimensionDesign:     0.31,
			},
			dims:    dims,
			wantErr: true,
		},
		{
			name: "missing dimension fails",
			weights: Weights{
				feasibility.DimensionResearch:   0.5,
				feasibility.DimensionPermitting: 0.5,
			},
			dims:    dims,
			wantErr: true,
		},
		{
			name: "extraneous dimension fails",
			weights: Weights{
				feasibility.DimensionResearch:   0.5,
				feasibility.DimensionPermitting: 0.5,
			},
			dims:    dims[:1],
			wantErr: true,
		},
		{
			name: "zero weight fails",
			weights: Weights{
				feasibility.DimensionResearch:   0.0,
				feasibility.DimensionPermitting: 0.5,
				feasibility.DimensionDesign:     0.5,
			},
			dims:    dims,
			wantErr: true,
		},
		{
			name:    "no dimensions fails",
			weights: Default(),
			dims:    nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.weights, tt.dims)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
