package model

import (
	"context"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/cache"
	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

// CachedClient wraps a ModelClient with a disk cache. Only successful
// completions are cached; failures always go back to the provider.
type CachedClient struct {
	Client core.ModelClient
	Cache  *cache.Cache
}

func (c CachedClient) Name() string {
	if c.Client == nil {
		return ""
	}
	return c.Client.Name()
}

func (c CachedClient) Complete(ctx context.Context, prompt string, opts core.CompleteOptions) (core.Completion, error) {
	if c.Cache != nil {
		if comp, ok := c.Cache.Get(c.Name(), prompt, opts); ok {
			return comp, nil
		}
	}
	comp, err := c.Client.Complete(ctx, prompt, opts)
	if err != nil {
		return core.Completion{}, err
	}
	if c.Cache != nil {
		_ = c.Cache.Set(c.Name(), prompt, opts, comp)
	}
	return comp, nil
}
