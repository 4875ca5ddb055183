package worker

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/tavla/internal/model"
)

// ContentVerifier verifies one artifact's content tree
type ContentVerifier interface {
	VerifyContent(ctx context.Context, content []byte) (*model.RunReport, error)
}

// VerifyJob verifies a single artifact file
type VerifyJob struct {
	Path     string
	Verifier ContentVerifier
}

// Execute reads and verifies the artifact file
func (j *VerifyJob) Execute(ctx context.Context) Result {
	content, err := os.ReadFile(j.Path)
	if err != nil {
		return &VerifyResult{Path: j.Path, Error: fmt.Errorf("read artifact: %w", err)}
	}

	report, err := j.Verifier.VerifyContent(ctx, content)
	if err != nil {
		return &VerifyResult{Path: j.Path, Error: err}
	}
	return &VerifyResult{Path: j.Path, Report: report}
}

// VerifyResult is the outcome of one artifact verification job
type VerifyResult struct {
	Path   string
	Report *model.RunReport
	Error  error
}

// GetError returns the job's error, if any
func (r *VerifyResult) GetError() error {
	return r.Error
}

// BatchProcessor verifies multiple artifact files concurrently
type BatchProcessor struct {
	verifier    ContentVerifier
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(verifier ContentVerifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
	}
}

// ProcessFiles verifies the given artifact files in parallel
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*VerifyResult {
	if len(paths) == 0 {
		return []*VerifyResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()

	for _, path := range paths {
		pool.Submit(&VerifyJob{Path: path, Verifier: b.verifier})
	}

	raw := pool.Wait()
	close(done)

	results := make([]*VerifyResult, 0, len(raw))
	for _, r := range raw {
		if vr, ok := r.(*VerifyResult); ok {
			results = append(results, vr)
		}
	}
	return results
}
