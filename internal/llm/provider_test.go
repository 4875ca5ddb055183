package llm

import (
	"strings"
	"testing"

	"github.com/ppiankov/tavla/internal/model"
)

func TestBuildRewritePrompt(t *testing.T) {
	req := RewriteRequest{
		Fragment:    `{"best_move": "24/23 13/11"}`,
		Discrepancy: "claimed move 24/23 13/11 evaluates to -0.150 but the engine's best move is 8/5 6/5",
		BestMove:    "8/5 6/5",
		BestEquity:  0.150,
		Alternatives: []string{
			"8/5 6/5 (equity +0.150)",
			"24/23 13/11 (equity -0.150)",
		},
	}

	prompt := BuildRewritePrompt(req)

	for _, want := range []string{
		req.Discrepancy,
		"Best move: 8/5 6/5 (equity +0.150)",
		"24/23 13/11 (equity -0.150)",
		req.Fragment,
		`exactly "8/5 6/5"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildRewritePrompt_AlternativesTruncated(t *testing.T) {
	req := RewriteRequest{BestMove: "8/5 6/5"}
	for i := 0; i < 9; i++ {
		req.Alternatives = append(req.Alternatives, "13/10 13/12 (equity -0.200)")
	}

	prompt := BuildRewritePrompt(req)
	if !strings.Contains(prompt, "and 4 more") {
		t.Errorf("Expected alternatives beyond the fifth to be summarized:\n%s", prompt)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{`{"a": 1}`, `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		if got := StripFences(tt.input); got != tt.want {
			t.Errorf("StripFences(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestConfigFromModel(t *testing.T) {
	mc := model.LLMConfig{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		APIKey:    "sk-test",
		BaseURL:   "http://localhost:8080",
		Timeout:   15,
		MaxTokens: 500,
	}
	cfg := ConfigFromModel(mc)

	if cfg.Provider != "openai" || cfg.Model != "gpt-4o-mini" || cfg.APIKey != "sk-test" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.BaseURL != "http://localhost:8080" || cfg.Timeout != 15 || cfg.MaxTokens != 500 {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}
