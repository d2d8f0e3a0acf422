package producer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sunscout/sunscout/internal/feasibility"
)

const policyJSON = `{
  "Phoenix, AZ": {
    "sentiment": "positive",
    "headlines": ["State extends solar tax credit", "Utility expands net metering"]
  },
  "Springfield, IL": {
    "sentiment": "neutral",
    "headlines": ["No major policy changes announced"]
  },
  "Coal City, WV": {
    "sentiment": "negative",
    "headlines": ["Moratorium on new rooftop interconnections"]
  },
  "DEFAULT": {
    "sentiment": "neutral",
    "headlines": ["No reliable policy data for this jurisdiction"]
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func req(city, state string) feasibility.Request {
	return feasibility.Request{Address: "1 Test St, " + city + ", " + state, City: city, State: state}
}

func TestPolicyProducer_Analyze(t *testing.T) {
	p, err := newPolicyProducer(writeFile(t, "policy.json", policyJSON))
	if err != nil {
		t.Fatalf("newPolicyProducer: %v", err)
	}

	tests := []struct {
		name      string
		req       feasibility.Request
		wantScore float64
		wantNote  string
	}{
		{name: "positive sentiment", req: req("Phoenix", "AZ"), wantScore: scorePolicyPositive, wantNote: "favorable policy signals"},
		{name: "neutral sentiment", req: req("Springfield", "IL"), wantScore: scorePolicyNeutral, wantNote: "no clear policy signals"},
		{name: "negative sentiment", req: req("Coal City", "WV"), wantScore: scorePolicyNegative, wantNote: "restrictive or uncertain"},
		{name: "unknown jurisdiction falls back to default", req: req("Nowhere", "KS"), wantScore: scorePolicyNoData, wantNote: "no policy signals recorded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := p.Analyze(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Analyze: %v", err)
			}
			if a.SubScore != tt.wantScore {
				t.Errorf("sub-score = %v, want %v", a.SubScore, tt.wantScore)
			}
			joined := strings.Join(a.Notes, "\n")
			if !strings.Contains(joined, tt.wantNote) {
				t.Errorf("notes %q missing %q", a.Notes, tt.wantNote)
			}
		})
	}
}

func TestPolicyProducer_HeadlinesPassedThrough(t *testing.T) {
	p, err := newPolicyProducer(writeFile(t, "policy.json", policyJSON))
	if err != nil {
		t.Fatal(err)
	}

	a, err := p.Analyze(context.Background(), req("Phoenix", "AZ"))
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(a.Notes, "\n")
	if !strings.Contains(joined, "State extends solar tax credit") {
		t.Errorf("headline missing from notes: %q", a.Notes)
	}
}

func TestPolicyProducer_NoDefaultEntry(t *testing.T) {
	p, err := newPolicyProducer(writeFile(t, "policy.json",
		`{"Phoenix, AZ": {"sentiment": "positive", "headlines": []}}`))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Analyze(context.Background(), req("Nowhere", "KS")); err == nil {
		t.Error("Analyze succeeded for unknown jurisdiction with no DEFAULT, want error")
	}
}

func TestPolicyProducer_BadDataset(t *testing.T) {
	if _, err := newPolicyProducer(writeFile(t, "policy.json", "{not json")); err == nil {
		t.Error("newPolicyProducer accepted malformed JSON")
	}
	if _, err := newPolicyProducer(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("newPolicyProducer accepted missing file")
	}
	if _, err := newPolicyProducer(writeFile(t, "policy.json", "{}")); err == nil {
		t.Error("newPolicyProducer accepted empty dataset")
	}
}

func TestPolicyProducer_CancelledContext(t *testing.T) {
	p, err := newPolicyProducer(writeFile(t, "policy.json", policyJSON))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Analyze(ctx, req("Phoenix", "AZ")); err == nil {
		t.Error("Analyze ignored cancelled context")
	}
}
