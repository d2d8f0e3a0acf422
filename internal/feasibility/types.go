package feasibility

import "time"

// Dimension is one independent axis of site analysis.
type Dimension string

// The built-in analysis dimensions. CanonicalOrder defines the order in which
// outcomes and justification statements are rendered.
const (
	DimensionResearch   Dimension = "research"
	DimensionPermitting Dimension = "permitting"
	DimensionDesign     Dimension = "design"
)

// CanonicalOrder is the fixed rendering order for dimensions. New dimensions
// must be appended here to participate in reports.
var CanonicalOrder = []Dimension{
	DimensionResearch,
	DimensionPermitting,
	DimensionDesign,
}

// CanonicalIndex returns the position of d in CanonicalOrder, or len(CanonicalOrder)
// for unknown dimensions so they sort after the built-in set.
func CanonicalIndex(d Dimension) int {
	for i, c := range CanonicalOrder {
		if c == d {
			return i
		}
	}
	return len(CanonicalOrder)
}

// Known reports whether d is one of the registered dimensions.
func (d Dimension) Known() bool {
	return CanonicalIndex(d) < len(CanonicalOrder)
}

// Status is the terminal state of one producer invocation.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusTimedOut Status = "timed_out"
)

// Reason codes recorded on failed or timed-out outcomes. These are the only
// error details that cross the invoker boundary — raw producer errors never do.
const (
	ReasonProducerFailure = "producer_failure"
	ReasonProducerTimeout = "producer_timeout"
)

// Sub-score bounds. Producers returning values outside this range are clamped.
const (
	SubScoreMin = 0.0
	SubScoreMax = 100.0
)

// Request identifies the site under evaluation. It is created once per
// orchestration call and never mutated.
type Request struct {
	// Address is the raw site address as supplied by the caller.
	Address string `json:"address"`

	// City and State are the jurisdiction parsed from Address.
	City  string `json:"city"`
	State string `json:"state"`
}

// Jurisdiction returns the "City, ST" key used by dataset lookups.
func (r Request) Jurisdiction() string {
	return r.City + ", " + r.State
}

// Outcome is the result of one producer invocation. It is written exactly once
// by its invoker and read only after the orchestration join.
type Outcome struct {
	Dimension Dimension `json:"dimension"`
	Status    Status    `json:"status"`

	// SubScore is meaningful only when Status == StatusSuccess.
	SubScore float64 `json:"sub_score,omitempty"`

	// Notes are producer-supplied human-readable statements, in the order
	// the producer emitted them.
	Notes []string `json:"notes,omitempty"`

	// Reason is a reason code, set only when Status != StatusSuccess.
	Reason string `json:"reason,omitempty"`
}

// Decision is the final categorical verdict for a site.
type Decision string

const (
	DecisionGo            Decision = "go"
	DecisionNoGo          Decision = "no_go"
	DecisionIndeterminate Decision = "indeterminate"
)

// Report is the orchestrator's sole output: one outcome per registered
// dimension plus the composite verdict. Immutable after construction.
type Report struct {
	ID      string  `json:"id"`
	Site    string  `json:"site"`
	Request Request `json:"request"`

	// Outcomes holds exactly one entry per registered dimension, in
	// canonical order, regardless of success or failure.
	Outcomes []Outcome `json:"outcomes"`

	// CompositeScore is meaningful only when ScoreDefined is true.
	// It is the weight-renormalized average over successful dimensions.
	CompositeScore float64 `json:"composite_score"`
	ScoreDefined   bool    `json:"score_defined"`

	Decision      Decision `json:"decision"`
	Justification []string `json:"justification"`

	GeneratedAt time.Time `json:"generated_at"`
}
