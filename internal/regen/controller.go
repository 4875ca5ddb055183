// Package regen drives the self-healing loop for artifacts that fail
// verification: full regeneration under a bounded attempt budget, or
// targeted repair of the failing claims followed by re-verification.
package regen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ppiankov/tavla/internal/model"
)

var (
	// ErrRegenerationLimitExceeded is a user-facing rejection: the attempt
	// budget is spent and manual intervention is required. The attempt
	// counter is never changed by a rejected call.
	ErrRegenerationLimitExceeded = errors.New("regeneration attempt limit exceeded")

	// ErrInvalidState means the artifact is not in a state the requested
	// operation accepts (e.g., regenerating something that verified fine)
	ErrInvalidState = errors.New("artifact is not in a regenerable state")

	// ErrUnsupportedArtifact means the artifact type has no partial-repair path
	ErrUnsupportedArtifact = errors.New("artifact type does not support targeted repair")

	// ErrConcurrentOperation means another regenerate/fix already holds the
	// GENERATING transition for this artifact
	ErrConcurrentOperation = errors.New("another operation is already in progress for this artifact")
)

// Store is the persistence boundary for artifacts. The Begin* transitions
// must be atomic check-and-set operations: they succeed only if the artifact
// is COMPLETED with the expected attempt count, and move it to GENERATING.
// That conditional write is the optimistic lock keeping Regenerate and Fix
// mutually exclusive.
type Store interface {
	Get(ctx context.Context, id string) (*model.Artifact, error)

	// BeginRegeneration transitions to GENERATING, increments the attempt
	// counter, and clears the error message
	BeginRegeneration(ctx context.Context, id string, expectedAttempts int) error

	// BeginRepair transitions to GENERATING without touching the attempt
	// counter (targeted repair is not a regeneration attempt)
	BeginRepair(ctx context.Context, id string, expectedAttempts int) error

	Save(ctx context.Context, artifact *model.Artifact) error
}

// Generator is the external full-content generator. Discrepancies from the
// failed run are passed through so the regenerated draft is biased away from
// repeating the same mistakes.
type Generator interface {
	Generate(ctx context.Context, artifact *model.Artifact, discrepancies []string) (json.RawMessage, error)
}

// ContentVerifier re-runs extraction, verification, and aggregation over a
// content tree. Implemented by pipeline.Pipeline.
type ContentVerifier interface {
	VerifyContent(ctx context.Context, content []byte) (*model.RunReport, error)
}

// Repairer rewrites failing claims in content. Implemented by fix.Fixer.
type Repairer interface {
	Fix(ctx context.Context, content []byte, failing []model.VerificationResult) (*model.FixResult, []byte, error)
}

// Controller governs the regeneration/repair state machine for one store
type Controller struct {
	store       Store
	generator   Generator
	verifier    ContentVerifier
	repairer    Repairer
	maxAttempts int
}

// NewController creates a controller. repairer may be nil when no rewrite
// provider is configured; Fix then rejects instead of attempting repair.
func NewController(store Store, generator Generator, verifier ContentVerifier, repairer Repairer, maxAttempts int) *Controller {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Controller{
		store:       store,
		generator:   generator,
		verifier:    verifier,
		repairer:    repairer,
		maxAttempts: maxAttempts,
	}
}

// Regenerate fully regenerates an artifact that failed verification.
// Preconditions: verification status NEEDS_REVIEW and attempts below the
// cap. A violated precondition is a rejection, not a retry.
func (c *Controller) Regenerate(ctx context.Context, id string) (*model.Artifact, error) {
	artifact, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if artifact.VerificationStatus != model.StatusNeedsReview {
		return nil, fmt.Errorf("%w: verification status is %s", ErrInvalidState, artifact.VerificationStatus)
	}
	if artifact.VerificationAttempts >= c.maxAttempts {
		return nil, fmt.Errorf("%w: %d of %d attempts used", ErrRegenerationLimitExceeded, artifact.VerificationAttempts, c.maxAttempts)
	}

	if err := c.store.BeginRegeneration(ctx, id, artifact.VerificationAttempts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConcurrentOperation, err)
	}
	artifact.Status = model.ArtifactGenerating
	artifact.VerificationAttempts++
	artifact.ErrorMessage = ""

	content, err := c.generator.Generate(ctx, artifact, discrepancies(artifact.VerificationDetails))
	if err != nil {
		artifact.Status = model.ArtifactFailed
		artifact.ErrorMessage = fmt.Sprintf("regeneration failed: %v", err)
		if saveErr := c.store.Save(ctx, artifact); saveErr != nil {
			return nil, fmt.Errorf("save after generation failure: %v (original: %w)", saveErr, err)
		}
		return artifact, fmt.Errorf("generate content: %w", err)
	}

	artifact.Content = content
	return c.verifyAndSave(ctx, artifact)
}

// Fix repairs only the failing claims of a NEEDS_REVIEW artifact, then
// re-verifies the entire artifact: a rewrite can regress an unrelated claim,
// so the derived status always comes from a full fresh run.
func (c *Controller) Fix(ctx context.Context, id string) (*model.Artifact, *model.FixResult, error) {
	if c.repairer == nil {
		return nil, nil, fmt.Errorf("%w: no rewrite provider configured", ErrUnsupportedArtifact)
	}

	artifact, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !artifact.Type.SupportsPartialRepair() {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedArtifact, artifact.Type)
	}
	if artifact.VerificationStatus != model.StatusNeedsReview {
		return nil, nil, fmt.Errorf("%w: verification status is %s", ErrInvalidState, artifact.VerificationStatus)
	}
	failing := repairableFailures(artifact.VerificationDetails)
	if len(failing) == 0 {
		return nil, nil, fmt.Errorf("%w: no failing claims carry engine ground truth", ErrInvalidState)
	}

	if err := c.store.BeginRepair(ctx, id, artifact.VerificationAttempts); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConcurrentOperation, err)
	}
	artifact.Status = model.ArtifactGenerating

	fixResult, merged, err := c.repairer.Fix(ctx, artifact.Content, failing)
	if err != nil {
		artifact.Status = model.ArtifactCompleted
		artifact.ErrorMessage = fmt.Sprintf("repair failed: %v", err)
		if saveErr := c.store.Save(ctx, artifact); saveErr != nil {
			return nil, nil, fmt.Errorf("save after repair failure: %v (original: %w)", saveErr, err)
		}
		return artifact, nil, fmt.Errorf("fix content: %w", err)
	}

	artifact.Content = merged
	updated, err := c.verifyAndSave(ctx, artifact)
	return updated, fixResult, err
}

// verifyAndSave runs a full verification over the artifact's content and
// persists the derived status. verificationStatus is never hand-set; it
// always comes out of the aggregator.
func (c *Controller) verifyAndSave(ctx context.Context, artifact *model.Artifact) (*model.Artifact, error) {
	report, err := c.verifier.VerifyContent(ctx, artifact.Content)
	if err != nil {
		artifact.Status = model.ArtifactCompleted
		artifact.VerificationStatus = model.StatusFailed
		artifact.ErrorMessage = err.Error()
		if saveErr := c.store.Save(ctx, artifact); saveErr != nil {
			return nil, fmt.Errorf("save after verification failure: %v (original: %w)", saveErr, err)
		}
		return artifact, nil
	}

	artifact.Status = model.ArtifactCompleted
	artifact.VerificationStatus = report.Status
	artifact.VerificationDetails = report
	artifact.ErrorMessage = report.Error

	if err := c.store.Save(ctx, artifact); err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}
	return artifact, nil
}

// discrepancies collects failure context from the last run for the generator
func discrepancies(report *model.RunReport) []string {
	if report == nil {
		return nil
	}
	var out []string
	for _, r := range report.FailedResults() {
		if r.Discrepancy != "" {
			out = append(out, fmt.Sprintf("%s: %s", r.Claim.Location, r.Discrepancy))
		}
	}
	return out
}

// repairableFailures returns failures carrying engine ground truth
func repairableFailures(report *model.RunReport) []model.VerificationResult {
	if report == nil {
		return nil
	}
	var out []model.VerificationResult
	for _, r := range report.FailedResults() {
		if r.GroundTruth != nil && r.GroundTruth.Best() != nil {
			out = append(out, r)
		}
	}
	return out
}
