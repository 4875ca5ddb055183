// Package llm provides the language-model rewrite service the fixer uses to
// repair failing claims. Providers receive engine ground truth as grounding
// context and must return a corrected content fragment as JSON.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/tavla/internal/model"
)

// Provider defines the interface for rewrite providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Rewrite produces a corrected content fragment for one failing claim
	Rewrite(ctx context.Context, req RewriteRequest) (*RewriteResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// RewriteRequest contains the input for one claim repair
type RewriteRequest struct {
	// Fragment is the current JSON content fragment containing the failing claim
	Fragment string

	// Discrepancy is the verifier's explanation of what is wrong
	Discrepancy string

	// BestMove is the engine's correct move in canonical notation
	BestMove string

	// BestEquity is the equity of the correct move
	BestEquity float64

	// Alternatives lists the engine's ranked moves as "move (equity)" lines,
	// so the rewrite can discuss near-misses accurately
	Alternatives []string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// RewriteResponse contains the provider's corrected fragment
type RewriteResponse struct {
	// Fragment is the rewritten JSON content fragment
	Fragment string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds rewrite provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 1000,
	}
}

const rewriteSystemPrompt = "You rewrite one fragment of backgammon teaching content so its move " +
	"recommendation matches engine analysis. Respond with the corrected JSON fragment only, " +
	"no prose, no code fences."

// BuildRewritePrompt constructs the rewrite instruction for one failing claim.
// The engine's answer is embedded verbatim so the rewrite is grounded: the
// model must adopt the correct move, not invent a new one.
func BuildRewritePrompt(req RewriteRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, `This content fragment recommends a move that engine analysis shows is wrong.

What the verifier found:
%s

Engine ground truth:
- Best move: %s (equity %+.3f)
- Ranked alternatives:
`, req.Discrepancy, req.BestMove, req.BestEquity)

	for i, alt := range req.Alternatives {
		if i >= 5 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(req.Alternatives)-5)
			break
		}
		fmt.Fprintf(&b, "  %s\n", alt)
	}

	fmt.Fprintf(&b, `
Current fragment:
%s

Rewrite the fragment so that:
1. The recommended move is exactly %q.
2. The explanation describes why that move is best, consistent with the equities above.
3. The position, dice, and all other fields are unchanged.
4. The output is the complete corrected fragment as valid JSON with the same schema.
`, req.Fragment, req.BestMove)

	return b.String()
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:   mc.Provider,
		Model:      mc.Model,
		APIKey:     mc.APIKey,
		BaseURL:    mc.BaseURL,
		Timeout:    mc.Timeout,
		MaxTokens:  mc.MaxTokens,
		HTTPProxy:  mc.HTTPProxy,
		HTTPSProxy: mc.HTTPSProxy,
		NoProxy:    mc.NoProxy,
	}
}

// StripFences removes markdown code fences some models wrap JSON in
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
