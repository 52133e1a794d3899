package model

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434/v1"
	defaultOllamaModel   = "llama3"
)

// NewOllamaClient talks to a local Ollama server through its
// OpenAI-compatible endpoint, for offline candidate or grader runs.
func NewOllamaClient(baseURL, modelName string) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	if modelName == "" {
		modelName = defaultOllamaModel
	}
	return &OpenAIClient{
		Client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey("ollama"),
		),
		Model: modelName,
	}
}
