package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaProvider_Rewrite(t *testing.T) {
	var gotReq ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Decode request: %v", err)
		}
		resp := ollamaResponse{
			Model:           gotReq.Model,
			Response:        "```json\n{\"best_move\": \"8/5 6/5\"}\n```",
			Done:            true,
			PromptEvalCount: 120,
			EvalCount:       30,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1:8b"})
	if err != nil {
		t.Fatalf("NewOllamaProvider failed: %v", err)
	}

	resp, err := provider.Rewrite(context.Background(), RewriteRequest{
		Fragment: `{"best_move": "24/23 13/11"}`,
		BestMove: "8/5 6/5",
	})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}

	if resp.Fragment != `{"best_move": "8/5 6/5"}` {
		t.Errorf("Expected fences stripped, got %q", resp.Fragment)
	}
	if resp.TokensUsed != 150 {
		t.Errorf("Expected 150 tokens, got %d", resp.TokensUsed)
	}

	if gotReq.Model != "llama3.1:8b" {
		t.Errorf("Unexpected model: %s", gotReq.Model)
	}
	if gotReq.Stream {
		t.Error("Expected non-streaming request")
	}
	if gotReq.System == "" {
		t.Error("Expected system prompt to be set")
	}
	if !strings.Contains(gotReq.Prompt, "8/5 6/5") {
		t.Error("Expected grounding context in the prompt")
	}
}

func TestOllamaProvider_NoModel(t *testing.T) {
	provider, err := NewOllamaProvider(Config{BaseURL: "http://localhost:11434"})
	if err != nil {
		t.Fatalf("NewOllamaProvider failed: %v", err)
	}

	if _, err := provider.Rewrite(context.Background(), RewriteRequest{}); err == nil {
		t.Error("Expected error when no model is configured")
	}
}

func TestOllamaProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ollamaError{Error: "model not found"})
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "missing"})

	_, err := provider.Rewrite(context.Background(), RewriteRequest{})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Errorf("Expected API error surfaced, got %v", err)
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models": []}`))
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL})
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}

	server.Close()
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be unavailable after server shutdown")
	}
}
