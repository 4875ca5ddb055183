package model

import "time"

// VerificationStatus is the artifact-level rollup of claim verdicts
type VerificationStatus string

const (
	StatusVerified    VerificationStatus = "VERIFIED"     // All non-skipped claims match ground truth
	StatusNeedsReview VerificationStatus = "NEEDS_REVIEW" // At least one claim contradicts ground truth
	StatusUnverified  VerificationStatus = "UNVERIFIED"   // No ground-truth engine configured
	StatusFailed      VerificationStatus = "FAILED"       // Ground truth could not be reached at all
)

// VerificationResult is the per-claim verdict. Never mutated after creation.
type VerificationResult struct {
	Claim       Claim           `json:"claim"`
	Verified    bool            `json:"verified"`
	Skipped     bool            `json:"skipped,omitempty"`
	Discrepancy string          `json:"discrepancy,omitempty"` // Names the correct move, its equity, and the gap
	Cached      bool            `json:"cached,omitempty"`
	Duration    time.Duration   `json:"execution_time_ns"`
	GroundTruth *EngineResponse `json:"ground_truth,omitempty"` // Engine answer, kept so the fixer can act on persisted failures
}

// ToolCall records one engine consultation (cached or live) for audit display
type ToolCall struct {
	Tool      string        `json:"tool"` // Always "engine.query"
	Arguments string        `json:"arguments"`
	Result    string        `json:"result"`
	Cached    bool          `json:"cached"`
	Duration  time.Duration `json:"execution_time_ns"`
}

// VerificationSummary holds counts derived from a run's VerificationResults.
// Skipped claims are excluded from both verified and failed counts so
// extraction gaps stay distinct from correctness failures.
type VerificationSummary struct {
	Total     int `json:"total"`
	Verified  int `json:"verified"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Cached    int `json:"cached"`
	Positions int `json:"positions"` // Distinct positions the engine answered
}

// RunReport is the complete output of one verification run
type RunReport struct {
	Results   []VerificationResult `json:"results"`
	ToolCalls []ToolCall           `json:"tool_calls"`
	Summary   VerificationSummary  `json:"summary"`
	Status    VerificationStatus   `json:"status"`
	RanAt     time.Time            `json:"ran_at"`
	Error     string               `json:"error,omitempty"` // Set when status is FAILED
}

// FailedResults returns the results that were checked and found wrong
func (r *RunReport) FailedResults() []VerificationResult {
	var failed []VerificationResult
	for _, res := range r.Results {
		if !res.Skipped && !res.Verified {
			failed = append(failed, res)
		}
	}
	return failed
}
