// Package fix rewrites failing claims in place using a language-model
// rewrite call grounded on engine analysis. Only the failing fragments are
// touched; callers re-verify the whole artifact afterward because a rewrite
// can regress an unrelated claim.
package fix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ppiankov/tavla/internal/engine"
	"github.com/ppiankov/tavla/internal/extract"
	"github.com/ppiankov/tavla/internal/llm"
	"github.com/ppiankov/tavla/internal/model"
)

// ErrNoProvider means repair was requested but no rewrite provider is configured
var ErrNoProvider = errors.New("no rewrite provider configured")

// ErrNothingToFix means no failing claim carried engine ground truth
var ErrNothingToFix = errors.New("no failing claims with ground truth attached")

// Fixer repairs failing claims one at a time.
// A malformed or rejected rewrite is recorded as an individual failure and
// never aborts the batch: the summary reports how many of N claims were
// actually fixed.
type Fixer struct {
	provider llm.Provider
}

// NewFixer creates a fixer backed by the given rewrite provider
func NewFixer(provider llm.Provider) (*Fixer, error) {
	if provider == nil {
		return nil, ErrNoProvider
	}
	return &Fixer{provider: provider}, nil
}

// Fix rewrites each failing claim's fragment and merges accepted rewrites
// back into the content tree at their original locations. Returns the fix
// summary and the (possibly partially) repaired content.
func (f *Fixer) Fix(ctx context.Context, content []byte, failing []model.VerificationResult) (*model.FixResult, []byte, error) {
	eligible := withGroundTruth(failing)
	if len(eligible) == 0 {
		return nil, nil, ErrNothingToFix
	}

	series, err := model.ParseDrillSeries(content)
	if err != nil {
		return nil, nil, err
	}

	result := &model.FixResult{Total: len(eligible)}
	for _, failure := range eligible {
		item := f.fixOne(ctx, series, failure)
		result.Items = append(result.Items, item)
		if item.Fixed {
			result.SuccessfullyFixed++
		}
	}

	merged, err := json.Marshal(series)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal repaired content: %w", err)
	}
	return result, merged, nil
}

// fixOne repairs a single claim and merges the fragment on success
func (f *Fixer) fixOne(ctx context.Context, series *model.DrillSeries, failure model.VerificationResult) model.FixItem {
	item := model.FixItem{Location: failure.Claim.Location}

	req, err := buildRequest(series, failure)
	if err != nil {
		item.Reason = err.Error()
		return item
	}

	resp, err := f.provider.Rewrite(ctx, *req)
	if err != nil {
		item.Reason = fmt.Sprintf("rewrite call failed: %v", err)
		return item
	}

	if err := applyFragment(series, failure, resp.Fragment, req.BestMove); err != nil {
		item.Reason = err.Error()
		return item
	}

	item.Fixed = true
	return item
}

// buildRequest assembles the grounded rewrite instruction for one failure
func buildRequest(series *model.DrillSeries, failure model.VerificationResult) (*llm.RewriteRequest, error) {
	truth := failure.GroundTruth
	best := truth.Best()
	bestMove, err := engine.RenderPlay(best.Play)
	if err != nil {
		return nil, fmt.Errorf("ground truth unreadable: %v", err)
	}

	fragment, err := locateFragment(series, failure.Claim.Location)
	if err != nil {
		return nil, err
	}

	var alternatives []string
	for _, mv := range truth.Moves {
		rendered, err := engine.RenderPlay(mv.Play)
		if err != nil {
			continue
		}
		alternatives = append(alternatives, fmt.Sprintf("%s (equity %+.3f)", rendered, mv.Evaluation.Equity))
	}

	return &llm.RewriteRequest{
		Fragment:     fragment,
		Discrepancy:  failure.Discrepancy,
		BestMove:     bestMove,
		BestEquity:   best.Evaluation.Equity,
		Alternatives: alternatives,
	}, nil
}

// locateFragment serializes the content subtree a claim points at
func locateFragment(series *model.DrillSeries, loc model.Location) (string, error) {
	switch loc.Source {
	case model.ClaimSourceDrill:
		drill, err := drillAt(series, loc)
		if err != nil {
			return "", err
		}
		b, err := json.MarshalIndent(drill, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal drill fragment: %w", err)
		}
		return string(b), nil

	case model.ClaimSourceSection:
		section, err := sectionAt(series, loc)
		if err != nil {
			return "", err
		}
		b, err := json.MarshalIndent(section, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal section fragment: %w", err)
		}
		return string(b), nil

	default:
		return "", fmt.Errorf("claim location %s cannot be repaired", loc)
	}
}

// applyFragment validates a rewritten fragment against the content schema
// and merges it at the claim's original location. Validation is per-fragment:
// the rewrite must now recommend the engine's best move and must not have
// touched the position.
func applyFragment(series *model.DrillSeries, failure model.VerificationResult, fragment, bestMove string) error {
	loc := failure.Claim.Location

	switch loc.Source {
	case model.ClaimSourceDrill:
		original, err := drillAt(series, loc)
		if err != nil {
			return err
		}

		var fixed model.Drill
		if err := json.Unmarshal([]byte(fragment), &fixed); err != nil {
			return fmt.Errorf("rewrite is not a valid drill fragment: %v", err)
		}
		if fixed.Position == nil || fixed.Position.CacheKey() != original.Position.CacheKey() {
			return fmt.Errorf("rewrite altered the drill position")
		}
		normalized, err := engine.NormalizeMove(fixed.BestMove)
		if err != nil {
			return fmt.Errorf("rewritten move %q is not valid notation: %v", fixed.BestMove, err)
		}
		if normalized != bestMove {
			return fmt.Errorf("rewritten move %s still differs from engine best move %s", normalized, bestMove)
		}

		series.Phases[loc.Phase].Drills[loc.Drill] = fixed
		return nil

	case model.ClaimSourceSection:
		original, err := sectionAt(series, loc)
		if err != nil {
			return err
		}

		var fixed model.LessonSection
		if err := json.Unmarshal([]byte(fragment), &fixed); err != nil {
			return fmt.Errorf("rewrite is not a valid section fragment: %v", err)
		}
		if fixed.Title != original.Title {
			return fmt.Errorf("rewrite changed the section title")
		}
		if (fixed.Position == nil) != (original.Position == nil) {
			return fmt.Errorf("rewrite altered the section position")
		}
		if fixed.Position != nil && fixed.Position.CacheKey() != original.Position.CacheKey() {
			return fmt.Errorf("rewrite altered the section position")
		}
		// Every move the rewritten prose asserts must now be the best move
		for _, claim := range extract.SectionClaims(fixed) {
			normalized, err := engine.NormalizeMove(claim.Move)
			if err != nil {
				return fmt.Errorf("rewritten prose asserts invalid move %q", claim.Move)
			}
			if normalized != bestMove {
				return fmt.Errorf("rewritten prose still asserts %s instead of %s", normalized, bestMove)
			}
		}

		for i := range series.Sections {
			if series.Sections[i].Title == loc.Section {
				series.Sections[i] = fixed
				return nil
			}
		}
		return fmt.Errorf("section %q vanished during repair", loc.Section)

	default:
		return fmt.Errorf("claim location %s cannot be repaired", loc)
	}
}

func drillAt(series *model.DrillSeries, loc model.Location) (*model.Drill, error) {
	if loc.Phase < 0 || loc.Phase >= len(series.Phases) {
		return nil, fmt.Errorf("phase index %d out of range", loc.Phase)
	}
	phase := &series.Phases[loc.Phase]
	if loc.Drill < 0 || loc.Drill >= len(phase.Drills) {
		return nil, fmt.Errorf("drill index %d out of range in phase %d", loc.Drill, loc.Phase)
	}
	return &phase.Drills[loc.Drill], nil
}

func sectionAt(series *model.DrillSeries, loc model.Location) (*model.LessonSection, error) {
	for i := range series.Sections {
		if series.Sections[i].Title == loc.Section {
			return &series.Sections[i], nil
		}
	}
	return nil, fmt.Errorf("section %q not found", loc.Section)
}

// withGroundTruth filters to failures the fixer can actually act on
func withGroundTruth(failing []model.VerificationResult) []model.VerificationResult {
	var eligible []model.VerificationResult
	for _, f := range failing {
		if f.Skipped || f.Verified {
			continue
		}
		if f.GroundTruth == nil || f.GroundTruth.Best() == nil {
			continue
		}
		eligible = append(eligible, f)
	}
	return eligible
}
