package model

import "time"

// Config is the complete tavla configuration tree
type Config struct {
	Engine EngineConfig `yaml:"engine" json:"engine"`
	Verify VerifyConfig `yaml:"verify" json:"verify"`
	LLM    LLMConfig    `yaml:"llm" json:"llm"`
	Regen  RegenConfig  `yaml:"regen" json:"regen"`
	Output OutputConfig `yaml:"output" json:"output"`
}

// EngineConfig configures the ground-truth engine client.
// An empty URL means no engine is configured; verification then reports
// UNVERIFIED rather than guessing.
type EngineConfig struct {
	URL         string        `yaml:"url" json:"url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`           // Per-attempt timeout
	MaxRetries  int           `yaml:"max_retries" json:"max_retries"`   // Total attempts
	BackoffBase time.Duration `yaml:"backoff_base" json:"backoff_base"` // Doubles per attempt
	BackoffCap  time.Duration `yaml:"backoff_cap" json:"backoff_cap"`
	MaxMoves    int           `yaml:"max_moves" json:"max_moves"` // Candidate moves requested per query
	Cubeful     bool          `yaml:"cubeful" json:"cubeful"`
	RateLimit   float64       `yaml:"rate_limit" json:"rate_limit"` // Requests per second, 0 = unlimited
	HTTPProxy   string        `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy  string        `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	NoProxy     string        `yaml:"no_proxy,omitempty" json:"no_proxy,omitempty"`
}

// Configured reports whether a ground-truth engine endpoint is set
func (c EngineConfig) Configured() bool {
	return c.URL != ""
}

// VerifyConfig tunes claim verification
type VerifyConfig struct {
	// EquityTolerance is the maximum equity gap at which a non-optimal
	// claimed move still counts as verified. Zero (the default) flags
	// anything but the engine's top move.
	EquityTolerance float64 `yaml:"equity_tolerance" json:"equity_tolerance"`
	Workers         int     `yaml:"workers" json:"workers"`
}

// LLMConfig configures the rewrite provider used by the fixer
type LLMConfig struct {
	Provider   string `yaml:"provider" json:"provider"` // "openai", "anthropic", "ollama", "" = disabled
	Model      string `yaml:"model,omitempty" json:"model,omitempty"`
	APIKey     string `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout    int    `yaml:"timeout" json:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens" json:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	NoProxy    string `yaml:"no_proxy,omitempty" json:"no_proxy,omitempty"`
}

// RegenConfig bounds the self-healing loop
type RegenConfig struct {
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Timeout:     30 * time.Second,
			MaxRetries:  3,
			BackoffBase: 1 * time.Second,
			BackoffCap:  10 * time.Second,
			MaxMoves:    9,
			Cubeful:     false,
		},
		Verify: VerifyConfig{
			EquityTolerance: 0,
			Workers:         8,
		},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   30,
			MaxTokens: 1000,
		},
		Regen: RegenConfig{
			MaxAttempts: 3,
		},
	}
}
