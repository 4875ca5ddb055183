// Package pipeline wires extraction, verification, and aggregation into the
// surface collaborators call: give it artifact content, get back a complete
// verification run report.
package pipeline

import (
	"context"
	"fmt"

	"github.com/ppiankov/tavla/internal/engine"
	"github.com/ppiankov/tavla/internal/extract"
	"github.com/ppiankov/tavla/internal/model"
	"github.com/ppiankov/tavla/internal/verify"
)

// Pipeline orchestrates one verification pass over artifact content.
// All run-scoped state (query cache, audit log) lives inside the verifier
// invocation; the pipeline itself is safe to share across artifacts.
type Pipeline struct {
	cfg       *model.Config
	extractor *extract.Extractor
	verifier  *verify.Verifier
}

// NewPipeline creates a pipeline from configuration. Without an engine
// endpoint the pipeline still extracts claims but reports UNVERIFIED.
func NewPipeline(cfg *model.Config) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		extractor: extract.NewExtractor(),
	}
	if cfg.Engine.Configured() {
		client := engine.NewClient(cfg.Engine)
		p.verifier = verify.NewVerifier(client, cfg.Verify.EquityTolerance, cfg.Verify.Workers)
	}
	return p
}

// VerifyContent extracts claims from content and verifies them against the
// ground-truth engine. The returned report carries per-claim results, the
// engine audit log, the summary, and the derived artifact-level status.
func (p *Pipeline) VerifyContent(ctx context.Context, content []byte) (*model.RunReport, error) {
	claims, err := p.extractor.Extract(content)
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}

	if p.verifier == nil {
		return unverifiedReport(claims), nil
	}
	return p.verifier.VerifyAll(ctx, claims), nil
}

// unverifiedReport records extraction results without checking anything:
// no engine is configured, so claims are neither verified nor failed.
func unverifiedReport(claims []model.Claim) *model.RunReport {
	results := make([]model.VerificationResult, len(claims))
	summary := model.VerificationSummary{Total: len(claims)}
	for i, claim := range claims {
		results[i] = model.VerificationResult{
			Claim:   claim,
			Skipped: claim.Skipped,
		}
		if claim.Skipped {
			summary.Skipped++
		}
	}
	return &model.RunReport{
		Results: results,
		Summary: summary,
		Status:  model.StatusUnverified,
	}
}
