package model

import (
	"context"
	"errors"
	"time"

	"google.golang.org/genai"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

const defaultGeminiModel = "gemini-2.0-flash"

type GeminiClient struct {
	Client *genai.Client
	Model  string
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{Client: client, Model: modelName}, nil
}

func (g *GeminiClient) Name() string {
	if g.Model == "" {
		return defaultGeminiModel
	}
	return g.Model
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string, opts core.CompleteOptions) (core.Completion, error) {
	config := &genai.GenerateContentConfig{}
	if opts.SystemPrompt != "" {
		parts := genai.Text(opts.SystemPrompt)
		if len(parts) > 0 && parts[0] != nil {
			config.SystemInstruction = parts[0]
		}
	}
	if opts.Temperature > 0 {
		config.Temperature = ptrFloat32(float32(opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}

	start := time.Now()
	result, err := g.Client.Models.GenerateContent(ctx, g.Name(), genai.Text(prompt), config)
	if err != nil {
		return core.Completion{}, classifyGemini(err)
	}

	usage := core.TokenUsage{}
	if result.UsageMetadata != nil {
		usage.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(result.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}

	return core.Completion{
		Text:       result.Text(),
		TokenUsage: usage,
		Latency:    time.Since(start),
	}, nil
}

func classifyGemini(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &core.ProviderError{Kind: core.ErrTimeout, Err: err}
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &core.ProviderError{Kind: kindForStatus(apiErr.Code), Err: err}
	}
	return &core.ProviderError{Kind: core.ErrTransient, Err: err}
}

func ptrFloat32(x float32) *float32 { return &x }
