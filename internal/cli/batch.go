package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tavla/internal/model"
	"github.com/ppiankov/tavla/internal/pipeline"
	"github.com/ppiankov/tavla/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchEngine  string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir|artifact.json...>",
	Short: "Verify multiple artifacts in parallel",
	Long: `Batch verifies several artifact files concurrently:
- Pass a directory to verify every .json file in it, or list files explicitly
- Artifacts run in parallel with a configurable worker count
- Claims inside each artifact additionally fan out per the verify settings
- A JSON report is written per artifact into the output directory

Example:
  tavla batch ./artifacts
  tavla batch a.json b.json --concurrency 4 --output-dir ./reports`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent artifacts")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./tavla-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchEngine, "engine", "", "ground-truth engine endpoint")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	paths, err := collectArtifacts(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no artifact files found")
	}

	cfg := loadConfig()
	if batchEngine != "" {
		cfg.Engine.URL = batchEngine
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Verifying %d artifacts with %d workers\n\n", len(paths), concurrency)
	}

	p := pipeline.NewPipeline(cfg)
	processor := worker.NewBatchProcessor(p, concurrency)
	results := processor.ProcessFiles(ctx, paths)

	renderer := pipeline.NewRenderer()
	var failed int
	for _, result := range results {
		name := strings.TrimSuffix(filepath.Base(result.Path), filepath.Ext(result.Path))
		fmt.Printf("=== %s ===\n", result.Path)

		if result.Error != nil {
			failed++
			fmt.Printf("  error: %v\n", result.Error)
			continue
		}

		reportPath := filepath.Join(outputDir, name+".report.json")
		if err := renderer.RenderJSON(result.Report, reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		renderer.RenderSummary(result.Report)
		if result.Report.Status != model.StatusVerified {
			failed++
		}
	}

	fmt.Printf("\n%d/%d artifacts verified clean\n", len(results)-failed, len(results))
	return nil
}

// collectArtifacts expands directory arguments into their .json files
func collectArtifacts(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			paths = append(paths, filepath.Join(arg, entry.Name()))
		}
	}
	return paths, nil
}
