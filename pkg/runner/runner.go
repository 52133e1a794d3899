package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

// Outcome pairs a sample with its model-under-test completion or terminal
// failure. Exactly one of Response/Err is meaningful.
type Outcome struct {
	Sample   core.Sample
	Response core.Completion
	Err      error
}

// Runner drives concurrent execution of samples against the
// model-under-test with a bounded worker pool. Each sample is dispatched
// independently; one sample's failure never aborts the run.
type Runner struct {
	Client   core.ModelClient
	Config   core.RunConfig
	Logger   *zap.Logger
	Progress func(completed, total, inflight int)
}

// Run obtains a completion (or terminal failure) for every sample. The
// returned slice is in the samples' original order regardless of
// completion timing. On cancellation, unfinished samples carry
// core.ErrRunCancelled so every sample ends terminal exactly once.
func (r *Runner) Run(ctx context.Context, samples []core.Sample) []Outcome {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := r.Config.Concurrency
	if workers <= 0 {
		workers = 1
	}
	if workers > len(samples) {
		workers = len(samples)
	}

	outcomes := make([]Outcome, len(samples))
	for i, s := range samples {
		// Pre-filled so anything never scheduled is still terminal.
		outcomes[i] = Outcome{Sample: s, Err: fmt.Errorf("%w before sample started", core.ErrRunCancelled)}
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var completed, inflight int
	var progressMu sync.Mutex

	track := func(delta int, done bool) {
		if r.Progress == nil {
			return
		}
		progressMu.Lock()
		inflight += delta
		if done {
			completed++
		}
		r.Progress(completed, len(samples), inflight)
		progressMu.Unlock()
	}

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				track(1, false)
				outcomes[idx] = r.runOne(ctx, samples[idx], logger)
				track(-1, true)
			}
		}()
	}

	// New work is only scheduled while the run is active.
scheduling:
	for i := range samples {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break scheduling
		}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// runOne executes one sample under the retry policy.
func (r *Runner) runOne(ctx context.Context, sample core.Sample, logger *zap.Logger) Outcome {
	opts := core.CompleteOptions{
		Temperature:  r.Config.Temperature,
		SystemPrompt: r.Config.SystemPrompt,
	}

	start := time.Now()
	resp, err := Complete(ctx, r.Client, sample.Prompt, opts, r.Config, logger)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, core.ErrRunCancelled) {
			err = fmt.Errorf("%w: %v", core.ErrRunCancelled, err)
		}
		logger.Warn("sample failed",
			zap.String("sample_id", sample.ID),
			zap.Error(err))
		return Outcome{Sample: sample, Err: err}
	}

	logger.Debug("sample completed",
		zap.String("sample_id", sample.ID),
		zap.Duration("elapsed", time.Since(start)))
	return Outcome{Sample: sample, Response: resp}
}

// Complete performs one model call under cfg's retry policy: transient
// errors and timeouts are retried with exponential backoff up to
// MaxAttempts, non-transient errors fail immediately. Every model call in
// a run, candidate or grader, goes through this path so the transport
// policy is applied in exactly one place.
func Complete(ctx context.Context, client core.ModelClient, prompt string, opts core.CompleteOptions, cfg core.RunConfig, logger *zap.Logger) (core.Completion, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := cfg.Retry
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}

	attempt := 0
	operation := func() (core.Completion, error) {
		attempt++
		callCtx := ctx
		if cfg.CallTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, cfg.CallTimeout)
			defer cancel()
		}
		resp, err := client.Complete(callCtx, prompt, opts)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return core.Completion{}, backoff.Permanent(fmt.Errorf("%w: %v", core.ErrRunCancelled, err))
		}
		if !core.Retryable(err) {
			return core.Completion{}, backoff.Permanent(err)
		}
		logger.Warn("transient provider error, retrying",
			zap.String("model", client.Name()),
			zap.Int("attempt", attempt),
			zap.Error(err))
		return core.Completion{}, err
	}

	bo := backoff.NewExponentialBackOff()
	if policy.InitialBackoff > 0 {
		bo.InitialInterval = policy.InitialBackoff
	}
	if policy.MaxBackoff > 0 {
		bo.MaxInterval = policy.MaxBackoff
	}
	bo.MaxElapsedTime = 0

	return backoff.RetryWithData(operation,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(policy.MaxAttempts-1)), ctx))
}
