package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sunscout/sunscout/internal/feasibility"
)

// defaultPermitKey is the dataset entry used when neither the full
// jurisdiction nor the bare city matches a rule.
const defaultPermitKey = "DEFAULT"

// defaultProjectType is the permit classification assumed for all requests.
const defaultProjectType = "Rooftop Solar"

// permitRule is one jurisdiction's entry in the permit-rules dataset.
type permitRule struct {
	ReadinessScore    float64  `json:"readiness_score"`
	RequiredDocuments []string `json:"required_documents"`
}

// permitProducer scores the permitting dimension by matching the request's
// jurisdiction against a local permit-rules dataset. Match precedence:
// exact "City, ST", then bare city, then DEFAULT.
type permitProducer struct {
	rules map[string]permitRule
}

func newPermitProducer(path string) (*permitProducer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("permitting producer: read permit rules: %w", err)
	}
	var rules map[string]permitRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("permitting producer: parse permit rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("permitting producer: permit rules %q is empty", path)
	}
	return &permitProducer{rules: rules}, nil
}

func (p *permitProducer) Analyze(ctx context.Context, req feasibility.Request) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jurisdiction := req.Jurisdiction()
	rule, matchNote, ok := p.match(jurisdiction, req.City)
	if !ok {
		return nil, fmt.Errorf("no permitting data for %s", jurisdiction)
	}

	notes := []string{matchNote}
	if len(rule.RequiredDocuments) > 0 {
		notes = append(notes, "required documents: "+strings.Join(rule.RequiredDocuments, ", "))
	}
	notes = append(notes,
		fmt.Sprintf("permit form prepared for %s (%s, flush mount)", jurisdiction, defaultProjectType))

	return &Analysis{SubScore: rule.ReadinessScore, Notes: notes}, nil
}

// match resolves the permit rule for a jurisdiction, reporting which level of
// the lookup matched.
func (p *permitProducer) match(jurisdiction, city string) (permitRule, string, bool) {
	if rule, ok := p.rules[jurisdiction]; ok {
		return rule, fmt.Sprintf("matched permitting data for %s", jurisdiction), true
	}
	if rule, ok := p.rules[city]; ok {
		return rule, fmt.Sprintf("using city-level permitting data for %s", city), true
	}
	if rule, ok := p.rules[defaultPermitKey]; ok {
		return rule, fmt.Sprintf("no permitting match for %s; using default checklist", jurisdiction), true
	}
	return permitRule{}, "", false
}
