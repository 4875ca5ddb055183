package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/tavla/internal/model"
)

// Renderer writes verification reports. JSON goes to files; the human
// summary goes to stdout.
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.RunReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderSummary prints a human-readable rollup to stdout
func (r *Renderer) RenderSummary(report *model.RunReport) {
	fmt.Printf("Verification: %s\n", report.Status)
	fmt.Printf("  Claims:   %d total, %d verified, %d failed, %d skipped\n",
		report.Summary.Total, report.Summary.Verified, report.Summary.Failed, report.Summary.Skipped)
	fmt.Printf("  Engine:   %d queries over %d distinct positions, %d served from cache\n",
		len(report.ToolCalls), report.Summary.Positions, report.Summary.Cached)

	if report.Error != "" {
		fmt.Printf("  Error:    %s\n", report.Error)
	}

	for _, result := range report.FailedResults() {
		fmt.Printf("  ✗ %s: %s\n", result.Claim.Location, result.Discrepancy)
	}
	for _, result := range report.Results {
		if result.Skipped {
			fmt.Printf("  - %s skipped: %s\n", result.Claim.Location, result.Claim.SkipNote)
		}
	}
}
