// Package verify checks extracted claims against the ground-truth engine and
// rolls per-claim verdicts into an artifact-level verification status.
package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ppiankov/tavla/internal/cache"
	"github.com/ppiankov/tavla/internal/engine"
	"github.com/ppiankov/tavla/internal/model"
)

// EngineClient is the slice of the engine client the verifier needs
type EngineClient interface {
	Query(ctx context.Context, pos *model.Position) (*model.EngineResponse, error)
}

// Verifier verifies claims against the engine with bounded parallelism.
// Each VerifyAll call gets its own query cache and audit log; no verification
// state survives between runs.
type Verifier struct {
	client     EngineClient
	tolerance  float64
	maxWorkers int
}

// NewVerifier creates a verifier.
// tolerance is the maximum equity gap at which a suboptimal claimed move
// still counts as verified; zero flags anything but the engine's top move.
func NewVerifier(client EngineClient, tolerance float64, maxWorkers int) *Verifier {
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	return &Verifier{
		client:     client,
		tolerance:  tolerance,
		maxWorkers: maxWorkers,
	}
}

// run carries the per-invocation state: the query cache and the audit log.
// Constructed fresh inside VerifyAll, never shared across runs.
type run struct {
	cache cache.QueryCache

	mu        sync.Mutex
	toolCalls []model.ToolCall
	runErr    error // First engine-unavailable error seen, if any
}

func (r *run) record(call model.ToolCall) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toolCalls = append(r.toolCalls, call)
}

func (r *run) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runErr == nil {
		r.runErr = err
	}
}

// VerifyAll verifies every claim and aggregates the outcome.
// Claims fan out across a bounded worker set sharing one run-scoped cache.
// Engine unavailability does not abort in-flight claims; it is surfaced as
// the run-level error and aggregated to FAILED.
func (v *Verifier) VerifyAll(ctx context.Context, claims []model.Claim) *model.RunReport {
	results := make([]model.VerificationResult, len(claims))
	r := &run{cache: cache.NewRunCache()}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, v.maxWorkers)

	for i, claim := range claims {
		wg.Add(1)
		go func(idx int, c model.Claim) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				// Cancellation means "not checked", not "found wrong":
				// the claim is skipped and the run itself fails.
				r.fail(fmt.Errorf("verification cancelled: %w", ctx.Err()))
				c.Skipped = true
				c.SkipNote = "not checked: verification cancelled"
				results[idx] = model.VerificationResult{Claim: c, Skipped: true}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = v.verifySingle(ctx, r, c)
		}(i, claim)
	}
	wg.Wait()

	summary, status := Aggregate(results, r.runErr, true)
	summary.Positions = r.cache.Len()
	report := &model.RunReport{
		Results:   results,
		ToolCalls: r.toolCalls,
		Summary:   summary,
		Status:    status,
		RanAt:     time.Now().UTC(),
	}
	if r.runErr != nil {
		report.Error = r.runErr.Error()
	}
	return report
}

// verifySingle verifies one claim: cache lookup, engine on miss, then move
// comparison. Every engine consultation is recorded as a ToolCall, cached
// hits with zero execution time.
func (v *Verifier) verifySingle(ctx context.Context, r *run, claim model.Claim) model.VerificationResult {
	if claim.Skipped {
		return model.VerificationResult{Claim: claim, Skipped: true}
	}

	key := claim.Position.CacheKey()
	start := time.Now()

	resp, hit := r.cache.Get(key)
	var elapsed time.Duration
	if !hit {
		var err error
		resp, err = v.client.Query(ctx, claim.Position)
		elapsed = time.Since(start)
		if err != nil {
			r.fail(err)
			r.record(model.ToolCall{
				Tool:      "engine.query",
				Arguments: claim.Position.Canonical(),
				Result:    fmt.Sprintf("error: %v", err),
				Duration:  elapsed,
			})
			return model.VerificationResult{
				Claim:       claim,
				Verified:    false,
				Discrepancy: fmt.Sprintf("ground truth unavailable: %v", err),
				Duration:    elapsed,
			}
		}
		r.cache.Put(key, resp)
	}

	r.record(model.ToolCall{
		Tool:      "engine.query",
		Arguments: claim.Position.Canonical(),
		Result:    summarizeResponse(resp),
		Cached:    hit,
		Duration:  elapsed,
	})

	result := compare(claim, resp, v.tolerance)
	result.Cached = hit
	result.Duration = elapsed
	return result
}

// compare produces the verdict for one claim against the engine's answer
func compare(claim model.Claim, resp *model.EngineResponse, tolerance float64) model.VerificationResult {
	result := model.VerificationResult{Claim: claim, GroundTruth: resp}

	best := resp.Best()
	if best == nil {
		// engine.Client retries empty lists away, but other EngineClient
		// implementations may hand one through.
		result.Discrepancy = "engine returned no ranked moves for this position"
		return result
	}
	bestMove, err := engine.RenderPlay(best.Play)
	if err != nil {
		result.Discrepancy = fmt.Sprintf("engine best move unreadable: %v", err)
		return result
	}

	claimed, err := engine.NormalizeMove(claim.Move)
	if err != nil {
		result.Discrepancy = fmt.Sprintf(
			"claimed move %q is not valid notation (%v); engine best move is %s (equity %+.3f)",
			claim.Move, err, bestMove, best.Evaluation.Equity)
		return result
	}

	if claimed == bestMove {
		result.Verified = true
		return result
	}

	// Not the top move: look the claimed move up among the ranked
	// alternatives and measure the equity gap.
	claimedEq, found := lookupEquity(resp, claimed)
	if found {
		gap := best.Evaluation.Equity - claimedEq
		if gap <= tolerance {
			result.Verified = true
			return result
		}
		result.Discrepancy = fmt.Sprintf(
			"claimed move %s evaluates to %+.3f but the engine's best move is %s (equity %+.3f), an error of %.3f equity",
			claimed, claimedEq, bestMove, best.Evaluation.Equity, gap)
		return result
	}

	result.Discrepancy = fmt.Sprintf(
		"claimed move %s is not among the engine's ranked moves; the engine's best move is %s (equity %+.3f)",
		claimed, bestMove, best.Evaluation.Equity)
	return result
}

// lookupEquity finds the claimed move among the engine's ranked alternatives
func lookupEquity(resp *model.EngineResponse, canonicalMove string) (float64, bool) {
	for _, mv := range resp.Moves {
		rendered, err := engine.RenderPlay(mv.Play)
		if err != nil {
			continue
		}
		if rendered == canonicalMove {
			return mv.Evaluation.Equity, true
		}
	}
	return 0, false
}

// summarizeResponse renders a compact audit representation of the answer
func summarizeResponse(resp *model.EngineResponse) string {
	best := resp.Best()
	if best == nil {
		return "no moves"
	}
	move, err := engine.RenderPlay(best.Play)
	if err != nil {
		move = "unreadable"
	}
	summary := struct {
		Best   string  `json:"best"`
		Equity float64 `json:"eq"`
		Ranked int     `json:"ranked"`
	}{Best: move, Equity: best.Evaluation.Equity, Ranked: len(resp.Moves)}
	b, _ := json.Marshal(summary)
	return string(b)
}
