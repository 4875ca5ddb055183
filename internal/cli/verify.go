package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tavla/internal/model"
	"github.com/ppiankov/tavla/internal/pipeline"
)

var (
	outJSON     string
	engineURL   string
	tolerance   float64
	workers     int
	runTimeout  time.Duration
	failOnWrong bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <artifact.json>",
	Short: "Verify one artifact's move claims against the engine",
	Long: `Verify extracts every move recommendation from a drill-series artifact
and checks it against the ground-truth engine:
- Drill recommended moves are compared to the engine's top-ranked move
- Move assertions in lesson prose are checked against their example position
- Identical positions are answered from a per-run cache
- Failures carry the correct move, its equity, and the size of the error

Example:
  tavla verify artifact.json --engine http://localhost:8080/api/v1/getmoves
  tavla verify artifact.json --json report.json --tolerance 0.02`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	// Output flags
	verifyCmd.Flags().StringVar(&outJSON, "json", "", "output JSON report path (optional)")

	// Engine flags
	verifyCmd.Flags().StringVar(&engineURL, "engine", "", "ground-truth engine endpoint")
	verifyCmd.Flags().Float64Var(&tolerance, "tolerance", 0, "equity gap below which a suboptimal move still verifies")
	verifyCmd.Flags().IntVar(&workers, "workers", 0, "concurrent claim verifications (default from config)")
	verifyCmd.Flags().DurationVar(&runTimeout, "timeout", defaultRunTimeout, "overall verification timeout")
	verifyCmd.Flags().BoolVar(&failOnWrong, "fail-on-wrong", false, "exit non-zero when status is not VERIFIED")
}

func runVerify(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := loadConfig()
	if engineURL != "" {
		cfg.Engine.URL = engineURL
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.Verify.EquityTolerance = tolerance
	}
	if workers > 0 {
		cfg.Verify.Workers = workers
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Verifying: %s\n", path)
		fmt.Fprintf(os.Stderr, "Engine: %s\n", cfg.Engine.URL)
		fmt.Fprintf(os.Stderr, "Tolerance: %.3f\n\n", cfg.Verify.EquityTolerance)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	p := pipeline.NewPipeline(cfg)
	report, err := p.VerifyContent(ctx, content)
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer()
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return err
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Wrote report: %s\n", outJSON)
		}
	}
	renderer.RenderSummary(report)

	if failOnWrong && report.Status != model.StatusVerified {
		return fmt.Errorf("verification status: %s", report.Status)
	}
	return nil
}
