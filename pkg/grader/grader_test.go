package grader_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
	"github.com/akryshtal/conflict-sensitivity-eval/pkg/grader"
	"github.com/akryshtal/conflict-sensitivity-eval/pkg/runner"
)

const wellFormedReply = `balanced_perspective: 0.8 - covers both sides
factual_accuracy: 0.9 - accurate
conflict_sensitivity: 0.7 - neutral tone
constructive_framing: 0.6 - actionable`

// countingGrader replies from a queue, repeating the last reply once the
// queue is exhausted.
type countingGrader struct {
	replies []string

	mu    sync.Mutex
	calls int
}

func (g *countingGrader) Name() string { return "counting-grader" }

func (g *countingGrader) Complete(_ context.Context, _ string, _ core.CompleteOptions) (core.Completion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.calls
	g.calls++
	if idx >= len(g.replies) {
		idx = len(g.replies) - 1
	}
	return core.Completion{Text: g.replies[idx]}, nil
}

func (g *countingGrader) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func okOutcome(id string, category core.Category) runner.Outcome {
	return runner.Outcome{
		Sample:   core.Sample{ID: id, Prompt: "question", Category: category},
		Response: core.Completion{Text: "a considered answer"},
	}
}

func TestScoreOneParsesWellFormedReply(t *testing.T) {
	client := &countingGrader{replies: []string{wellFormedReply}}
	g := &grader.Grader{Client: client, Config: core.RunConfig{Concurrency: 1}}

	records := g.ScoreAll(context.Background(), []runner.Outcome{okOutcome("s1", core.CategoryEthnic)})

	require.Len(t, records, 1)
	rec := records[0]
	require.Equal(t, core.StatusScored, rec.Status)
	require.Equal(t, "s1", rec.SampleID)
	require.Equal(t, core.CategoryEthnic, rec.Category)
	require.Equal(t, 0.8, rec.Scores[core.DimBalancedPerspective].Value)
	require.Equal(t, "a considered answer", rec.ResponseText)
	require.Equal(t, 1, client.callCount())
}

func TestMalformedReplyIsReasked(t *testing.T) {
	client := &countingGrader{replies: []string{
		"I think the answer is pretty good overall.",
		wellFormedReply,
	}}
	g := &grader.Grader{Client: client, Config: core.RunConfig{Concurrency: 1}}

	records := g.ScoreAll(context.Background(), []runner.Outcome{okOutcome("s1", core.CategoryUrban)})

	require.Equal(t, core.StatusScored, records[0].Status)
	require.Equal(t, 2, client.callCount())
}

func TestPersistentlyMalformedBecomesUnscored(t *testing.T) {
	malformed := "No numeric scores here, just vibes."
	client := &countingGrader{replies: []string{malformed}}
	g := &grader.Grader{Client: client, Config: core.RunConfig{Concurrency: 1}}

	records := g.ScoreAll(context.Background(), []runner.Outcome{okOutcome("s1", core.CategoryResource)})

	rec := records[0]
	require.Equal(t, core.StatusUnscored, rec.Status)
	require.Empty(t, rec.Scores)
	require.Equal(t, malformed, rec.GraderRaw)
	require.NotEmpty(t, rec.Error)
	// Initial ask plus the bounded re-asks.
	require.Equal(t, 3, client.callCount())
}

func TestFailedUpstreamNeverInvokesGrader(t *testing.T) {
	client := &countingGrader{replies: []string{wellFormedReply}}
	g := &grader.Grader{Client: client, Config: core.RunConfig{Concurrency: 1}}

	upstream := errors.New("candidate exploded")
	outcome := runner.Outcome{
		Sample: core.Sample{ID: "s1", Prompt: "question", Category: core.CategoryUrban},
		Err:    upstream,
	}
	records := g.ScoreAll(context.Background(), []runner.Outcome{outcome})

	rec := records[0]
	require.Equal(t, core.StatusFailed, rec.Status)
	require.Contains(t, rec.Error, "candidate exploded")
	require.Empty(t, rec.Scores)
	require.Equal(t, 0, client.callCount())
}

// flakyGrader fails with a transient error for the first failures calls,
// then replies normally.
type flakyGrader struct {
	failures int
	reply    string

	mu    sync.Mutex
	calls int
}

func (g *flakyGrader) Name() string { return "flaky-grader" }

func (g *flakyGrader) Complete(_ context.Context, _ string, _ core.CompleteOptions) (core.Completion, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.calls <= g.failures {
		return core.Completion{}, &core.ProviderError{Kind: core.ErrTransient, Err: errors.New("rate limited")}
	}
	return core.Completion{Text: g.reply}, nil
}

func TestGraderRetriesTransientErrors(t *testing.T) {
	client := &flakyGrader{failures: 1, reply: wellFormedReply}
	g := &grader.Grader{
		Client: client,
		Config: core.RunConfig{
			Concurrency: 1,
			Retry: core.RetryPolicy{
				MaxAttempts:    3,
				InitialBackoff: time.Millisecond,
				MaxBackoff:     5 * time.Millisecond,
			},
		},
	}

	records := g.ScoreAll(context.Background(), []runner.Outcome{okOutcome("s1", core.CategoryTerritorial)})

	require.Equal(t, core.StatusScored, records[0].Status)
	require.Equal(t, 0.8, records[0].Scores[core.DimBalancedPerspective].Value)

	client.mu.Lock()
	defer client.mu.Unlock()
	require.Equal(t, 2, client.calls)
}

func TestGraderTransientExhaustionFailsRecord(t *testing.T) {
	client := &flakyGrader{failures: 10, reply: wellFormedReply}
	g := &grader.Grader{
		Client: client,
		Config: core.RunConfig{
			Concurrency: 1,
			Retry: core.RetryPolicy{
				MaxAttempts:    2,
				InitialBackoff: time.Millisecond,
			},
		},
	}

	records := g.ScoreAll(context.Background(), []runner.Outcome{okOutcome("s1", core.CategoryEthnic)})

	require.Equal(t, core.StatusFailed, records[0].Status)
	require.Contains(t, records[0].Error, "rate limited")

	client.mu.Lock()
	defer client.mu.Unlock()
	require.Equal(t, 2, client.calls)
}

type failingGrader struct{}

func (failingGrader) Name() string { return "failing-grader" }

func (failingGrader) Complete(_ context.Context, _ string, _ core.CompleteOptions) (core.Completion, error) {
	return core.Completion{}, &core.ProviderError{Kind: core.ErrNonTransient, Err: errors.New("grader down")}
}

func TestGraderTransportErrorFailsRecord(t *testing.T) {
	g := &grader.Grader{Client: failingGrader{}, Config: core.RunConfig{Concurrency: 1}}

	records := g.ScoreAll(context.Background(), []runner.Outcome{okOutcome("s1", core.CategoryEthnic)})

	require.Equal(t, core.StatusFailed, records[0].Status)
	require.Contains(t, records[0].Error, "grader down")
}

func TestScoreAllPreservesOrderAndEmitsEveryRecord(t *testing.T) {
	client := &countingGrader{replies: []string{wellFormedReply}}

	var mu sync.Mutex
	var emitted []string
	g := &grader.Grader{
		Client: client,
		Config: core.RunConfig{Concurrency: 4},
		OnRecord: func(rec core.ScoreRecord) {
			mu.Lock()
			emitted = append(emitted, rec.SampleID)
			mu.Unlock()
		},
	}

	outcomes := []runner.Outcome{
		okOutcome("s1", core.CategoryTerritorial),
		okOutcome("s2", core.CategoryEthnic),
		okOutcome("s3", core.CategoryResource),
		okOutcome("s4", core.CategoryUrban),
	}
	records := g.ScoreAll(context.Background(), outcomes)

	require.Len(t, records, 4)
	for i, rec := range records {
		require.Equal(t, outcomes[i].Sample.ID, rec.SampleID)
	}
	mu.Lock()
	defer mu.Unlock()
	require.ElementsMatch(t, []string{"s1", "s2", "s3", "s4"}, emitted)
}

func TestCancelledContextForcesTerminalRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &countingGrader{replies: []string{wellFormedReply}}
	g := &grader.Grader{Client: client, Config: core.RunConfig{Concurrency: 2}}

	outcomes := []runner.Outcome{
		okOutcome("s1", core.CategoryTerritorial),
		okOutcome("s2", core.CategoryEthnic),
		okOutcome("s3", core.CategoryResource),
	}
	records := g.ScoreAll(ctx, outcomes)

	require.Len(t, records, 3)
	for _, rec := range records {
		require.NotEmpty(t, rec.Status)
	}
}
