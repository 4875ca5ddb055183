package llm

import (
	"strings"
	"testing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantNil  bool
		wantErr  string
	}{
		{
			name:     "openai",
			config:   Config{Provider: "openai", APIKey: "sk-test"},
			wantName: "openai",
		},
		{
			name:    "openai without key",
			config:  Config{Provider: "openai"},
			wantErr: "API key",
		},
		{
			name:     "anthropic",
			config:   Config{Provider: "anthropic", APIKey: "sk-ant-test"},
			wantName: "anthropic",
		},
		{
			name:     "claude alias",
			config:   Config{Provider: "claude", APIKey: "sk-ant-test"},
			wantName: "anthropic",
		},
		{
			name:     "ollama",
			config:   Config{Provider: "ollama", Model: "llama3.1:8b"},
			wantName: "ollama",
		},
		{
			name:     "case insensitive",
			config:   Config{Provider: "OpenAI", APIKey: "sk-test"},
			wantName: "openai",
		},
		{
			name:    "disabled",
			config:  Config{Provider: ""},
			wantNil: true,
		},
		{
			name:    "unknown",
			config:  Config{Provider: "bard"},
			wantErr: "unknown LLM provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider failed: %v", err)
			}
			if tt.wantNil {
				if provider != nil {
					t.Errorf("Expected nil provider, got %s", provider.Name())
				}
				return
			}
			if provider.Name() != tt.wantName {
				t.Errorf("Expected provider %q, got %q", tt.wantName, provider.Name())
			}
		})
	}
}
