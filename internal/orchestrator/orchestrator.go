package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sunscout/sunscout/internal/aggregate"
	"github.com/sunscout/sunscout/internal/decide"
	"github.com/sunscout/sunscout/internal/feasibility"
	"github.com/sunscout/sunscout/internal/invoker"
	"github.com/sunscout/sunscout/internal/producer"
)

// DefaultTimeout is the uniform per-producer deadline when no option or
// per-dimension override applies.
const DefaultTimeout = 10 * time.Second

// Orchestrator fans one site request out to every registered producer,
// joins the settled outcomes, and folds them into an immutable Report.
//
// All configuration is validated at construction; Run never returns an error.
type Orchestrator struct {
	entries   []producer.Entry
	weights   aggregate.Weights
	threshold float64
	timeout   time.Duration

	now   func() time.Time // injectable for deterministic tests
	newID func() string
}

// Option customises an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithThreshold overrides the default GO threshold of 70.
func WithThreshold(t float64) Option {
	return func(o *Orchestrator) { o.threshold = t }
}

// WithTimeout overrides the default uniform producer timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New builds an Orchestrator over the given registry and weight table.
//
// This is the configuration boundary: an empty registry, a weight table that
// does not cover the registered dimensions or sum to 1.0, a non-positive
// timeout, or a threshold outside [0,100] all fail here, eagerly, before any
// producer is ever invoked.
func New(reg *producer.Registry, weights aggregate.Weights, opts ...Option) (*Orchestrator, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, fmt.Errorf("orchestrator: producer registry is empty")
	}

	o := &Orchestrator{
		entries:   reg.Entries(),
		weights:   weights,
		threshold: decide.DefaultGoThreshold,
		timeout:   DefaultTimeout,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := aggregate.Validate(weights, reg.Dimensions()); err != nil {
		return nil, err
	}
	if o.timeout <= 0 {
		return nil, fmt.Errorf("orchestrator: timeout must be positive")
	}
	if o.threshold < 0 || o.threshold > 100 {
		return nil, fmt.Errorf("orchestrator: threshold must be in [0, 100]")
	}

	return o, nil
}

// Run evaluates one site. It spawns one invoker per registered producer, all
// started together with no ordering between dimensions, waits for every
// invocation to settle (total wall clock ≈ the slowest per-dimension timeout,
// not the sum), then aggregates and decides.
//
// Run never raises. Even a zero-value Orchestrator returns a well-formed
// INDETERMINATE report rather than panicking.
func (o *Orchestrator) Run(ctx context.Context, req feasibility.Request) *feasibility.Report {
	now := o.now
	if now == nil {
		now = time.Now
	}
	newID := o.newID
	if newID == nil {
		newID = uuid.NewString
	}

	// Each goroutine writes exactly one slot; nothing is accumulated until
	// after the join, so the fan-out phase shares no mutable state.
	outcomes := make([]feasibility.Outcome, len(o.entries))
	var wg sync.WaitGroup
	for i, e := range o.entries {
		wg.Add(1)
		go func(i int, e producer.Entry) {
			defer wg.Done()
			timeout := e.Timeout
			if timeout <= 0 {
				timeout = o.timeout
			}
			if timeout <= 0 {
				timeout = DefaultTimeout
			}
			outcomes[i] = invoker.Invoke(ctx, e.Dimension, e.Producer, req, timeout)
		}(i, e)
	}
	wg.Wait()

	score, defined := aggregate.Composite(outcomes, o.weights)
	decision, justification := decide.Decide(score, defined, outcomes, o.threshold)

	return &feasibility.Report{
		ID:             newID(),
		Site:           req.Address,
		Request:        req,
		Outcomes:       outcomes,
		CompositeScore: score,
		ScoreDefined:   defined,
		Decision:       decision,
		Justification:  justification,
		GeneratedAt:    now().UTC(),
	}
}
