package verify

import "github.com/ppiankov/tavla/internal/model"

// Aggregate rolls per-claim verdicts into a summary and an artifact-level
// status. Rules apply in order:
//
//  1. the run itself could not reach ground truth -> FAILED ("we don't know")
//  2. no engine configured for the project -> UNVERIFIED
//  3. all non-skipped claims verified -> VERIFIED, otherwise NEEDS_REVIEW
//     ("we know it's wrong")
//
// Skipped claims count toward neither verified nor failed; they are reported
// separately so extraction gaps stay visible to reviewers.
func Aggregate(results []model.VerificationResult, runErr error, engineConfigured bool) (model.VerificationSummary, model.VerificationStatus) {
	summary := model.VerificationSummary{Total: len(results)}
	for _, r := range results {
		switch {
		case r.Skipped:
			summary.Skipped++
		case r.Verified:
			summary.Verified++
		default:
			summary.Failed++
		}
		if r.Cached {
			summary.Cached++
		}
	}

	switch {
	case runErr != nil:
		return summary, model.StatusFailed
	case !engineConfigured:
		return summary, model.StatusUnverified
	case summary.Failed == 0:
		return summary, model.StatusVerified
	default:
		return summary, model.StatusNeedsReview
	}
}
