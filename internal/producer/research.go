package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sunscout/sunscout/internal/feasibility"
)

// Sub-scores assigned per policy sentiment level.
const (
	scorePolicyPositive = 90.0
	scorePolicyNeutral  = 50.0
	scorePolicyNegative = 40.0
	scorePolicyNoData   = 20.0
)

// defaultPolicyKey is the dataset entry used when a jurisdiction has no
// recorded signals.
const defaultPolicyKey = "DEFAULT"

// policySignal is one jurisdiction's entry in the policy-signals dataset.
type policySignal struct {
	Sentiment string   `json:"sentiment"`
	Headlines []string `json:"headlines"`
}

// policyProducer scores the research dimension from a local policy-signals
// dataset keyed by "City, ST".
type policyProducer struct {
	signals map[string]policySignal
}

func newPolicyProducer(path string) (*policyProducer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("research producer: read policy data: %w", err)
	}
	var signals map[string]policySignal
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, fmt.Errorf("research producer: parse policy data: %w", err)
	}
	if len(signals) == 0 {
		return nil, fmt.Errorf("research producer: policy dataset %q is empty", path)
	}
	return &policyProducer{signals: signals}, nil
}

func (p *policyProducer) Analyze(ctx context.Context, req feasibility.Request) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := req.Jurisdiction()
	entry, ok := p.signals[key]
	if !ok {
		// No recorded signals for this jurisdiction — fall back to the
		// dataset's default entry with a heavy confidence penalty.
		def, hasDefault := p.signals[defaultPolicyKey]
		if !hasDefault {
			return nil, fmt.Errorf("no policy data for %s", key)
		}
		notes := []string{
			fmt.Sprintf("no policy signals recorded for %s; confidence reduced", key),
		}
		notes = append(notes, def.Headlines...)
		return &Analysis{SubScore: scorePolicyNoData, Notes: notes}, nil
	}

	var score float64
	var rationale string
	switch entry.Sentiment {
	case "positive":
		score = scorePolicyPositive
		rationale = fmt.Sprintf("%s shows favorable policy signals for solar deployment", key)
	case "neutral":
		score = scorePolicyNeutral
		rationale = fmt.Sprintf("%s shows no clear policy signals; assuming a neutral environment", key)
	case "negative":
		score = scorePolicyNegative
		rationale = fmt.Sprintf("%s shows restrictive or uncertain solar policy trends", key)
	default:
		return nil, fmt.Errorf("unknown policy sentiment %q for %s", entry.Sentiment, key)
	}

	notes := []string{rationale}
	notes = append(notes, entry.Headlines...)
	return &Analysis{SubScore: score, Notes: notes}, nil
}
