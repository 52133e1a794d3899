package grader

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
	"github.com/akryshtal/conflict-sensitivity-eval/pkg/runner"
)

// maxReasks bounds re-asking the grader after a malformed reply. This is a
// semantic retry, distinct from the transport retry policy in the runner.
const maxReasks = 2

// Grader turns (sample, response) pairs into ScoreRecords via a second
// model call against the fixed rubric.
type Grader struct {
	Client core.ModelClient
	Config core.RunConfig
	Logger *zap.Logger
	// OnRecord, when set, is invoked as each record finalizes, in
	// completion order. Used for append-only persistence.
	OnRecord func(core.ScoreRecord)

	mu sync.Mutex
}

// ScoreAll produces exactly one ScoreRecord per outcome, preserving the
// outcomes' order. Grading calls run under the same concurrency limit as
// the runner.
func (g *Grader) ScoreAll(ctx context.Context, outcomes []runner.Outcome) []core.ScoreRecord {
	workers := g.Config.Concurrency
	if workers <= 0 {
		workers = 1
	}
	if workers > len(outcomes) {
		workers = len(outcomes)
	}

	records := make([]core.ScoreRecord, len(outcomes))
	jobs := make(chan int)
	var wg sync.WaitGroup

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				records[idx] = g.scoreOne(ctx, outcomes[idx])
				g.emit(records[idx])
			}
		}()
	}

	for i := range outcomes {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Stop scheduling; unstarted pairs still get terminal records.
			for j := i; j < len(outcomes); j++ {
				records[j] = failedRecord(outcomes[j], core.ErrRunCancelled)
				g.emit(records[j])
			}
			close(jobs)
			wg.Wait()
			return records
		}
	}
	close(jobs)
	wg.Wait()

	return records
}

func (g *Grader) emit(rec core.ScoreRecord) {
	if g.OnRecord == nil {
		return
	}
	g.mu.Lock()
	g.OnRecord(rec)
	g.mu.Unlock()
}

// scoreOne grades a single pair. A Failed upstream outcome short-circuits:
// the grader is never invoked and the original failure reason propagates,
// never coerced to a zero score.
func (g *Grader) scoreOne(ctx context.Context, o runner.Outcome) core.ScoreRecord {
	logger := g.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if o.Err != nil {
		return failedRecord(o, o.Err)
	}

	start := time.Now()
	prompt := BuildPrompt(o.Sample, o.Response.Text)
	opts := core.CompleteOptions{
		// Grading is deterministic regardless of the run temperature.
		Temperature:  0,
		SystemPrompt: graderSystemPrompt,
	}

	var lastRaw string
	var usage core.TokenUsage
	for ask := 0; ask <= maxReasks; ask++ {
		// The grader call is covered by the same transport retry policy as
		// the candidate call; the re-ask loop only handles semantic failures.
		reply, err := runner.Complete(ctx, g.Client, prompt, opts, g.Config, logger)
		if err != nil {
			if ctx.Err() != nil {
				return failedRecord(o, core.ErrRunCancelled)
			}
			return failedRecord(o, err)
		}
		lastRaw = reply.Text
		usage.PromptTokens += reply.TokenUsage.PromptTokens
		usage.CompletionTokens += reply.TokenUsage.CompletionTokens
		usage.TotalTokens += reply.TokenUsage.TotalTokens

		scores, err := Parse(reply.Text)
		if err == nil {
			return core.ScoreRecord{
				SampleID:     o.Sample.ID,
				Category:     o.Sample.Category,
				MethodTags:   o.Sample.MethodTags,
				ResponseText: o.Response.Text,
				Scores:       scores,
				Status:       core.StatusScored,
				TokenUsage:   usage,
				Duration:     time.Since(start),
			}
		}

		var malformed *core.MalformedGraderOutput
		if !errors.As(err, &malformed) {
			return failedRecord(o, err)
		}
		logger.Warn("malformed grader output",
			zap.String("sample_id", o.Sample.ID),
			zap.Int("ask", ask+1),
			zap.Error(err))
	}

	// Still malformed after the re-ask bound: Unscored, raw text kept.
	return core.ScoreRecord{
		SampleID:     o.Sample.ID,
		Category:     o.Sample.Category,
		MethodTags:   o.Sample.MethodTags,
		ResponseText: o.Response.Text,
		Status:       core.StatusUnscored,
		Error:        "grader output stayed malformed after retries",
		GraderRaw:    lastRaw,
		TokenUsage:   usage,
		Duration:     time.Since(start),
	}
}

func failedRecord(o runner.Outcome, err error) core.ScoreRecord {
	return core.ScoreRecord{
		SampleID:     o.Sample.ID,
		Category:     o.Sample.Category,
		MethodTags:   o.Sample.MethodTags,
		ResponseText: o.Response.Text,
		Status:       core.StatusFailed,
		Error:        err.Error(),
	}
}
