package runner_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
	"github.com/akryshtal/conflict-sensitivity-eval/pkg/runner"
)

// trackingClient records call counts and the peak number of concurrent
// calls, delegating the reply to fn.
type trackingClient struct {
	fn func(sample string, attempt int) (string, error)

	mu       sync.Mutex
	calls    map[string]int
	inflight int
	peak     int
}

func newTrackingClient(fn func(sample string, attempt int) (string, error)) *trackingClient {
	return &trackingClient{fn: fn, calls: make(map[string]int)}
}

func (c *trackingClient) Name() string { return "tracking" }

func (c *trackingClient) Complete(ctx context.Context, prompt string, _ core.CompleteOptions) (core.Completion, error) {
	c.mu.Lock()
	c.calls[prompt]++
	attempt := c.calls[prompt]
	c.inflight++
	if c.inflight > c.peak {
		c.peak = c.inflight
	}
	c.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	c.mu.Lock()
	c.inflight--
	c.mu.Unlock()

	text, err := c.fn(prompt, attempt)
	if err != nil {
		return core.Completion{}, err
	}
	return core.Completion{Text: text}, nil
}

func (c *trackingClient) attempts(prompt string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[prompt]
}

func (c *trackingClient) peakInflight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peak
}

func makeSamples(n int) []core.Sample {
	samples := make([]core.Sample, n)
	for i := range samples {
		samples[i] = core.Sample{
			ID:       fmt.Sprintf("s%02d", i),
			Prompt:   fmt.Sprintf("prompt %02d", i),
			Category: core.CategoryTerritorial,
		}
	}
	return samples
}

func fastRetry(maxAttempts int) core.RetryPolicy {
	return core.RetryPolicy{
		MaxAttempts:    maxAttempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	client := newTrackingClient(func(prompt string, _ int) (string, error) {
		return "ok: " + prompt, nil
	})
	r := &runner.Runner{
		Client: client,
		Config: core.RunConfig{Concurrency: 3, Retry: fastRetry(1)},
	}

	samples := makeSamples(12)
	outcomes := r.Run(context.Background(), samples)

	require.Len(t, outcomes, 12)
	require.LessOrEqual(t, client.peakInflight(), 3)
	for i, o := range outcomes {
		require.NoError(t, o.Err)
		require.Equal(t, samples[i].ID, o.Sample.ID)
		require.Equal(t, "ok: "+samples[i].Prompt, o.Response.Text)
	}
}

func TestRunRetriesTransientUntilSuccess(t *testing.T) {
	client := newTrackingClient(func(_ string, attempt int) (string, error) {
		if attempt <= 2 {
			return "", &core.ProviderError{Kind: core.ErrTransient, Err: errors.New("rate limited")}
		}
		return "recovered", nil
	})
	r := &runner.Runner{
		Client: client,
		Config: core.RunConfig{Concurrency: 1, Retry: fastRetry(3)},
	}

	outcomes := r.Run(context.Background(), makeSamples(1))

	require.NoError(t, outcomes[0].Err)
	require.Equal(t, "recovered", outcomes[0].Response.Text)
	require.Equal(t, 3, client.attempts("prompt 00"))
}

func TestRunExhaustsRetriesWithoutAbortingOthers(t *testing.T) {
	client := newTrackingClient(func(prompt string, _ int) (string, error) {
		if prompt == "prompt 01" {
			return "", &core.ProviderError{Kind: core.ErrTransient, Err: errors.New("still overloaded")}
		}
		return "fine", nil
	})
	r := &runner.Runner{
		Client: client,
		Config: core.RunConfig{Concurrency: 2, Retry: fastRetry(2)},
	}

	outcomes := r.Run(context.Background(), makeSamples(3))

	require.Error(t, outcomes[1].Err)
	require.Equal(t, 2, client.attempts("prompt 01"))
	require.NoError(t, outcomes[0].Err)
	require.NoError(t, outcomes[2].Err)
}

func TestRunDoesNotRetryNonTransient(t *testing.T) {
	client := newTrackingClient(func(_ string, _ int) (string, error) {
		return "", &core.ProviderError{Kind: core.ErrNonTransient, Err: errors.New("invalid api key")}
	})
	r := &runner.Runner{
		Client: client,
		Config: core.RunConfig{Concurrency: 1, Retry: fastRetry(5)},
	}

	outcomes := r.Run(context.Background(), makeSamples(1))

	require.Error(t, outcomes[0].Err)
	require.Equal(t, 1, client.attempts("prompt 00"))
}

func TestRunRetriesTimeouts(t *testing.T) {
	client := newTrackingClient(func(_ string, attempt int) (string, error) {
		if attempt == 1 {
			return "", &core.ProviderError{Kind: core.ErrTimeout, Err: errors.New("deadline exceeded")}
		}
		return "second try", nil
	})
	r := &runner.Runner{
		Client: client,
		Config: core.RunConfig{Concurrency: 1, Retry: fastRetry(3)},
	}

	outcomes := r.Run(context.Background(), makeSamples(1))

	require.NoError(t, outcomes[0].Err)
	require.Equal(t, 2, client.attempts("prompt 00"))
}

type blockingClient struct{}

func (blockingClient) Name() string { return "blocking" }

func (blockingClient) Complete(ctx context.Context, _ string, _ core.CompleteOptions) (core.Completion, error) {
	<-ctx.Done()
	return core.Completion{}, ctx.Err()
}

func TestRunCancellationLeavesEverySampleTerminal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &runner.Runner{
		Client: blockingClient{},
		Config: core.RunConfig{Concurrency: 2, Retry: fastRetry(3)},
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	outcomes := r.Run(ctx, makeSamples(8))

	require.Len(t, outcomes, 8)
	for _, o := range outcomes {
		require.Error(t, o.Err)
		require.ErrorIs(t, o.Err, core.ErrRunCancelled)
	}
}

func TestRunProgressReachesTotal(t *testing.T) {
	client := newTrackingClient(func(prompt string, _ int) (string, error) {
		return prompt, nil
	})

	var mu sync.Mutex
	var lastCompleted int
	r := &runner.Runner{
		Client: client,
		Config: core.RunConfig{Concurrency: 4, Retry: fastRetry(1)},
		Progress: func(completed, total, inflight int) {
			mu.Lock()
			lastCompleted = completed
			mu.Unlock()
		},
	}

	r.Run(context.Background(), makeSamples(6))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 6, lastCompleted)
}
