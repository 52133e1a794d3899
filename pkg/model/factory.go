package model

import (
	"context"
	"fmt"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

// Config carries everything a provider needs. Credentials are loaded once
// at process start and passed in; clients never read the environment.
type Config struct {
	Provider     string
	Model        string
	APIKey       string
	BaseURL      string
	MockResponse string
}

// New builds a ModelClient for the configured provider. Provider choice is
// configuration, never runtime type inspection.
func New(ctx context.Context, cfg Config) (core.ModelClient, error) {
	switch cfg.Provider {
	case "mock":
		return MockClient{NameValue: cfg.Model, ResponseText: cfg.MockResponse}, nil
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model)
	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.Model)
	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	case "ollama":
		return NewOllamaClient(cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// Providers lists the supported provider names.
func Providers() []string {
	return []string{"mock", "openai", "anthropic", "gemini", "ollama"}
}
