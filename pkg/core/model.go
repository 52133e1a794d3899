package core

import (
	"context"
	"time"
)

// CompleteOptions controls a single completion request.
type CompleteOptions struct {
	Temperature  float64 `json:"temperature" yaml:"temperature"`
	MaxTokens    int     `json:"max_tokens" yaml:"max_tokens"`
	SystemPrompt string  `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
}

// TokenUsage captures token accounting for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens" yaml:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens" yaml:"completion_tokens"`
	TotalTokens      int `json:"total_tokens" yaml:"total_tokens"`
}

// Completion is a model reply plus basic telemetry.
type Completion struct {
	Text       string        `json:"text" yaml:"text"`
	TokenUsage TokenUsage    `json:"token_usage" yaml:"token_usage"`
	Latency    time.Duration `json:"latency" yaml:"latency"`
}

// ModelClient submits one prompt and returns one completion. The
// model-under-test and the grader model are driven through the same
// capability. Failures must be classified via ProviderError.
type ModelClient interface {
	Name() string
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (Completion, error)
}
