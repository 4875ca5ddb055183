package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/tavla/internal/model"
)

// stubVerifier flags content containing "wrong" and errors on "broken"
type stubVerifier struct {
	mu    sync.Mutex
	calls int
}

func (v *stubVerifier) VerifyContent(_ context.Context, content []byte) (*model.RunReport, error) {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()

	s := string(content)
	if strings.Contains(s, "broken") {
		return nil, fmt.Errorf("extract claims: malformed content")
	}
	status := model.StatusVerified
	if strings.Contains(s, "wrong") {
		status = model.StatusNeedsReview
	}
	return &model.RunReport{Status: status}, nil
}

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestBatchProcessor_ProcessFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeArtifact(t, dir, "good.json", `{"phases": []}`),
		writeArtifact(t, dir, "bad.json", `{"phases": [], "note": "wrong"}`),
		writeArtifact(t, dir, "broken.json", `broken`),
	}

	verifier := &stubVerifier{}
	processor := NewBatchProcessor(verifier, 2)
	results := processor.ProcessFiles(context.Background(), paths)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if verifier.calls != 3 {
		t.Errorf("Expected 3 verifications, got %d", verifier.calls)
	}

	byPath := make(map[string]*VerifyResult)
	for _, r := range results {
		byPath[filepath.Base(r.Path)] = r
	}

	if r := byPath["good.json"]; r.Error != nil || r.Report.Status != model.StatusVerified {
		t.Errorf("Unexpected result for good.json: %+v", r)
	}
	if r := byPath["bad.json"]; r.Error != nil || r.Report.Status != model.StatusNeedsReview {
		t.Errorf("Unexpected result for bad.json: %+v", r)
	}
	if r := byPath["broken.json"]; r.Error == nil {
		t.Error("Expected error result for broken.json")
	}
}

func TestBatchProcessor_MissingFile(t *testing.T) {
	verifier := &stubVerifier{}
	processor := NewBatchProcessor(verifier, 1)
	results := processor.ProcessFiles(context.Background(), []string{"/nonexistent/artifact.json"})

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("Expected read error for missing file")
	}
	if verifier.calls != 0 {
		t.Error("Verifier must not be called for unreadable files")
	}
}

func TestBatchProcessor_NoFiles(t *testing.T) {
	processor := NewBatchProcessor(&stubVerifier{}, 4)
	results := processor.ProcessFiles(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}
