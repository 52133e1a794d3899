package model

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

const (
	defaultAnthropicModel     = "claude-3-5-haiku-latest"
	defaultAnthropicMaxTokens = 1024
)

type AnthropicClient struct {
	Client anthropic.Client
	Model  string
}

func NewAnthropicClient(apiKey, modelName string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	if modelName == "" {
		modelName = defaultAnthropicModel
	}
	return &AnthropicClient{
		Client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		Model:  modelName,
	}, nil
}

func (a *AnthropicClient) Name() string {
	if a.Model == "" {
		return defaultAnthropicModel
	}
	return a.Model
}

func (a *AnthropicClient) Complete(ctx context.Context, prompt string, opts core.CompleteOptions) (core.Completion, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Name()),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if opts.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: opts.SystemPrompt}}
	}
	if opts.Temperature > 0 {
		params.Temperature = anthropic.Float(opts.Temperature)
	}

	start := time.Now()
	message, err := a.Client.Messages.New(ctx, params)
	if err != nil {
		return core.Completion{}, classifyAnthropic(err)
	}

	usage := core.TokenUsage{
		PromptTokens:     int(message.Usage.InputTokens),
		CompletionTokens: int(message.Usage.OutputTokens),
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	return core.Completion{
		Text:       extractAnthropicText(message.Content),
		TokenUsage: usage,
		Latency:    time.Since(start),
	}, nil
}

func classifyAnthropic(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &core.ProviderError{Kind: core.ErrTimeout, Err: err}
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &core.ProviderError{Kind: kindForStatus(apiErr.StatusCode), Err: err}
	}
	return &core.ProviderError{Kind: core.ErrTransient, Err: err}
}

func extractAnthropicText(blocks []anthropic.ContentBlockUnion) string {
	if len(blocks) == 0 {
		return ""
	}
	var builder strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}
	return builder.String()
}
