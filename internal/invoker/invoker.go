package invoker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sunscout/sunscout/internal/feasibility"
	"github.com/sunscout/sunscout/internal/producer"
)

// analyzeResult carries a producer's return values across the timeout race.
type analyzeResult struct {
	analysis *producer.Analysis
	err      error
}

// Invoke runs one producer under a deadline and converts every possible
// outcome — success, error, panic, timeout — into an Outcome. It never blocks
// the caller longer than timeout plus scheduling overhead, and it never
// returns an error: failure detail is reduced to a reason code so raw
// producer internals cannot leak into reports.
//
// A producer that ignores cancellation is abandoned: its goroutine may linger
// until it returns, but the buffered channel lets it exit without blocking.
func Invoke(ctx context.Context, dim feasibility.Dimension, p producer.Producer, req feasibility.Request, timeout time.Duration) feasibility.Outcome {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan analyzeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- analyzeResult{err: fmt.Errorf("producer panic: %v", r)}
			}
		}()
		a, err := p.Analyze(ctx, req)
		ch <- analyzeResult{analysis: a, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return failed(dim)
		}
		return success(dim, res.analysis)

	case <-ctx.Done():
		return feasibility.Outcome{
			Dimension: dim,
			Status:    feasibility.StatusTimedOut,
			Reason:    feasibility.ReasonProducerTimeout,
		}
	}
}

func failed(dim feasibility.Dimension) feasibility.Outcome {
	return feasibility.Outcome{
		Dimension: dim,
		Status:    feasibility.StatusFailed,
		Reason:    feasibility.ReasonProducerFailure,
	}
}

// success validates and normalises a well-formed producer result. Out-of-range
// sub-scores are clamped with an explanatory note; non-finite sub-scores and
// nil analyses fail the dimension.
func success(dim feasibility.Dimension, a *producer.Analysis) feasibility.Outcome {
	if a == nil || math.IsNaN(a.SubScore) || math.IsInf(a.SubScore, 0) {
		return failed(dim)
	}

	notes := make([]string, len(a.Notes))
	copy(notes, a.Notes)

	score := a.SubScore
	if score < feasibility.SubScoreMin || score > feasibility.SubScoreMax {
		clamped := math.Min(math.Max(score, feasibility.SubScoreMin), feasibility.SubScoreMax)
		notes = append(notes, fmt.Sprintf("sub-score %g out of range; clamped to %g", score, clamped))
		score = clamped
	}

	return feasibility.Outcome{
		Dimension: dim,
		Status:    feasibility.StatusSuccess,
		SubScore:  score,
		Notes:     notes,
	}
}
