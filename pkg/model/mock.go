package model

import (
	"context"
	"time"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

// MockClient returns a fixed completion or echoes the prompt. Used by the
// mock provider for offline runs and by tests.
type MockClient struct {
	NameValue    string
	ResponseText string
	// Script, when set, overrides ResponseText and may fail.
	Script func(prompt string) (string, error)
}

func (m MockClient) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

func (m MockClient) Complete(_ context.Context, prompt string, _ core.CompleteOptions) (core.Completion, error) {
	start := time.Now()
	text := prompt
	if m.ResponseText != "" {
		text = m.ResponseText
	}
	if m.Script != nil {
		scripted, err := m.Script(prompt)
		if err != nil {
			return core.Completion{}, err
		}
		text = scripted
	}
	return core.Completion{
		Text:    text,
		Latency: time.Since(start),
	}, nil
}
