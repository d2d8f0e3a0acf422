package producer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sunscout/sunscout/internal/config"
	"github.com/sunscout/sunscout/internal/feasibility"
)

// Analysis is the raw result of one producer's work: a sub-score in [0,100]
// plus qualitative notes. Range violations are tolerated here — the invoker
// clamps them — but non-finite scores fail the dimension.
type Analysis struct {
	SubScore float64
	Notes    []string
}

// Producer is the uniform contract every analysis dimension implements.
// Analyze must honour ctx cancellation; it may fail with any error, which the
// invoker downgrades to a reason code.
type Producer interface {
	Analyze(ctx context.Context, req feasibility.Request) (*Analysis, error)
}

// New returns the appropriate Producer for the given spec. Dataset files are
// loaded eagerly so that a broken configuration fails at construction, not
// mid-evaluation.
func New(spec config.ProducerSpec) (Producer, error) {
	switch feasibility.Dimension(spec.Dimension) {
	case feasibility.DimensionResearch:
		return newPolicyProducer(spec.PolicyData)
	case feasibility.DimensionPermitting:
		return newPermitProducer(spec.PermitRules)
	case feasibility.DimensionDesign:
		return newDesignProducer(spec)
	default:
		return nil, fmt.Errorf("producer: unsupported dimension %q", spec.Dimension)
	}
}

// Entry is one registered producer together with its dimension and optional
// per-dimension timeout override (zero means "use the orchestrator default").
type Entry struct {
	Dimension feasibility.Dimension
	Producer  Producer
	Timeout   time.Duration
}

// Registry holds the set of producers participating in orchestration.
// Entries iterate in canonical dimension order regardless of registration order.
type Registry struct {
	entries []Entry
}

// NewRegistry builds producers for every spec in cfg and registers them.
func NewRegistry(cfg config.EvaluatorConfig) (*Registry, error) {
	reg := &Registry{}
	for _, spec := range cfg.Producers {
		p, err := New(spec)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(feasibility.Dimension(spec.Dimension), p, spec.Timeout); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Register adds a producer for dim. Registering the same dimension twice is an error.
func (r *Registry) Register(dim feasibility.Dimension, p Producer, timeout time.Duration) error {
	if p == nil {
		return fmt.Errorf("producer: nil producer for dimension %q", dim)
	}
	for _, e := range r.entries {
		if e.Dimension == dim {
			return fmt.Errorf("producer: dimension %q already registered", dim)
		}
	}
	r.entries = append(r.entries, Entry{Dimension: dim, Producer: p, Timeout: timeout})
	sort.SliceStable(r.entries, func(i, j int) bool {
		return feasibility.CanonicalIndex(r.entries[i].Dimension) <
			feasibility.CanonicalIndex(r.entries[j].Dimension)
	})
	return nil
}

// Entries returns the registered producers in canonical dimension order.
// The returned slice is a copy; callers may not mutate registry state.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered producers.
func (r *Registry) Len() int { return len(r.entries) }

// Dimensions returns the registered dimensions in canonical order.
func (r *Registry) Dimensions() []feasibility.Dimension {
	out := make([]feasibility.Dimension, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Dimension
	}
	return out
}
