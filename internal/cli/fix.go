package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tavla/internal/fix"
	"github.com/ppiankov/tavla/internal/llm"
	"github.com/ppiankov/tavla/internal/model"
	"github.com/ppiankov/tavla/internal/pipeline"
)

var (
	fixOut      string
	fixEngine   string
	fixProvider string
	fixModel    string
	fixTimeout  time.Duration
)

// fixCmd represents the fix command
var fixCmd = &cobra.Command{
	Use:   "fix <artifact.json>",
	Short: "Repair the failing claims in an artifact and re-verify it",
	Long: `Fix verifies the artifact, rewrites only the claims that contradict the
engine, and then re-verifies the entire artifact (a rewrite can regress an
unrelated claim, so the final status always comes from a full fresh run).

Each rewrite is grounded on the engine's answer: the correct move, its
equity, and the ranked alternatives are embedded in the instruction, and the
returned fragment is rejected unless it recommends exactly the engine's move
with the position untouched.

Example:
  tavla fix artifact.json --llm-provider openai --out artifact.fixed.json`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().StringVar(&fixOut, "out", "", "path for repaired content (default: <artifact>.fixed.json)")
	fixCmd.Flags().StringVar(&fixEngine, "engine", "", "ground-truth engine endpoint")
	fixCmd.Flags().StringVar(&fixProvider, "llm-provider", "", "rewrite provider (openai, anthropic, ollama)")
	fixCmd.Flags().StringVar(&fixModel, "llm-model", "", "rewrite model name")
	fixCmd.Flags().DurationVar(&fixTimeout, "timeout", defaultRunTimeout, "overall repair timeout")
}

func runFix(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), fixTimeout)
	defer cancel()

	cfg := loadConfig()
	if fixEngine != "" {
		cfg.Engine.URL = fixEngine
	}
	if fixProvider != "" {
		cfg.LLM.Provider = fixProvider
	}
	if fixModel != "" {
		cfg.LLM.Model = fixModel
	}
	if !cfg.Engine.Configured() {
		return fmt.Errorf("repair needs a ground-truth engine; set --engine or engine.url")
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return err
	}
	fixer, err := fix.NewFixer(provider)
	if err != nil {
		return fmt.Errorf("repair needs a rewrite provider; set --llm-provider or llm.provider: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact: %w", err)
	}

	p := pipeline.NewPipeline(cfg)
	renderer := pipeline.NewRenderer()

	report, err := p.VerifyContent(ctx, content)
	if err != nil {
		return err
	}
	renderer.RenderSummary(report)

	if report.Status != model.StatusNeedsReview {
		fmt.Printf("\nNothing to fix (status %s)\n", report.Status)
		return nil
	}

	fixResult, merged, err := fixer.Fix(ctx, content, report.FailedResults())
	if err != nil {
		if errors.Is(err, fix.ErrNothingToFix) {
			fmt.Println("\nNo failing claim carries engine ground truth; run verify first")
			return nil
		}
		return err
	}

	fmt.Printf("\nRepaired %d/%d failing claims\n", fixResult.SuccessfullyFixed, fixResult.Total)
	for _, item := range fixResult.Items {
		if !item.Fixed {
			fmt.Printf("  ✗ %s: %s\n", item.Location, item.Reason)
		}
	}

	// Re-verify the whole artifact, not just the fixed subset
	after, err := p.VerifyContent(ctx, merged)
	if err != nil {
		return err
	}
	fmt.Println()
	renderer.RenderSummary(after)

	out := fixOut
	if out == "" {
		out = path + ".fixed.json"
	}
	if err := os.WriteFile(out, merged, 0644); err != nil {
		return fmt.Errorf("write repaired content: %w", err)
	}
	fmt.Printf("\nWrote repaired artifact: %s\n", out)
	return nil
}
