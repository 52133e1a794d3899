package model

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient drives the OpenAI Responses API. Retry and timeout policy
// live in the runner, not here; this client only classifies failures.
type OpenAIClient struct {
	Client openai.Client
	Model  string
}

func NewOpenAIClient(apiKey, modelName string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if modelName == "" {
		modelName = defaultOpenAIModel
	}
	return &OpenAIClient{
		Client: openai.NewClient(option.WithAPIKey(apiKey)),
		Model:  modelName,
	}, nil
}

func (o *OpenAIClient) Name() string {
	if o.Model == "" {
		return defaultOpenAIModel
	}
	return o.Model
}

func (o *OpenAIClient) Complete(ctx context.Context, prompt string, opts core.CompleteOptions) (core.Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Name()),
	}
	if opts.SystemPrompt != "" {
		params.Messages = append(params.Messages, openai.SystemMessage(opts.SystemPrompt))
	}
	params.Messages = append(params.Messages, openai.UserMessage(prompt))
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	start := time.Now()
	completion, err := o.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return core.Completion{}, classifyOpenAI(err)
	}
	if len(completion.Choices) == 0 {
		return core.Completion{}, &core.ProviderError{
			Kind: core.ErrTransient,
			Err:  errors.New("openai: empty response"),
		}
	}

	return core.Completion{
		Text: completion.Choices[0].Message.Content,
		TokenUsage: core.TokenUsage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
		Latency: time.Since(start),
	}, nil
}

func classifyOpenAI(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &core.ProviderError{Kind: core.ErrTimeout, Err: err}
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &core.ProviderError{Kind: kindForStatus(apiErr.StatusCode), Err: err}
	}
	// Connection-level failures are worth retrying.
	return &core.ProviderError{Kind: core.ErrTransient, Err: err}
}

// kindForStatus maps HTTP status codes onto the error taxonomy: 429 and
// 5xx are transient, 408 is a timeout, other 4xx are not retried.
func kindForStatus(status int) core.ErrorKind {
	switch {
	case status == 408:
		return core.ErrTimeout
	case status == 429 || status >= 500:
		return core.ErrTransient
	default:
		return core.ErrNonTransient
	}
}
