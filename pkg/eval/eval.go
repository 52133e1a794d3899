// Package eval wires the pipeline together: SampleStore selection feeds
// the runner, runner outcomes feed the grader, grader records feed the
// aggregator and the run log.
package eval

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/aggregate"
	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
	"github.com/akryshtal/conflict-sensitivity-eval/pkg/grader"
	"github.com/akryshtal/conflict-sensitivity-eval/pkg/runlog"
	"github.com/akryshtal/conflict-sensitivity-eval/pkg/runner"
)

// Pipeline executes one evaluation run end to end.
type Pipeline struct {
	Candidate core.ModelClient
	Grader    core.ModelClient
	Config    core.RunConfig
	// RunID, when empty, is generated.
	RunID  string
	Logger *zap.Logger
	// Log, when set, receives records as they finalize plus the final
	// summary.
	Log *runlog.Writer
	// Progress reports candidate-phase progress.
	Progress func(completed, total, inflight int)
}

// Run evaluates the selected samples and returns the finalized run. The
// run always terminates with a summary: cancellation and per-sample
// failures surface as terminal record statuses, not as an error here.
func (p *Pipeline) Run(ctx context.Context, samples []core.Sample) core.EvaluationRun {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	runID := p.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	run := core.EvaluationRun{
		RunID:         runID,
		ModelID:       p.Candidate.Name(),
		GraderModelID: p.Grader.Name(),
		Config:        p.Config,
		StartedAt:     time.Now().UTC(),
	}
	logger.Info("starting evaluation run",
		zap.String("run_id", run.RunID),
		zap.String("model", run.ModelID),
		zap.String("grader", run.GraderModelID),
		zap.Int("samples", len(samples)))

	r := &runner.Runner{
		Client:   p.Candidate,
		Config:   p.Config,
		Logger:   logger,
		Progress: p.Progress,
	}
	outcomes := r.Run(ctx, samples)

	g := &grader.Grader{
		Client: p.Grader,
		Config: p.Config,
		Logger: logger,
	}
	if p.Log != nil {
		g.OnRecord = func(rec core.ScoreRecord) {
			if err := p.Log.Append(rec); err != nil {
				logger.Warn("append record", zap.Error(err))
			}
		}
	}
	run.Records = g.ScoreAll(ctx, outcomes)

	run.Summary = aggregate.Summarize(run.Records, p.Config.PassThreshold)
	run.FinishedAt = time.Now().UTC()

	if p.Log != nil {
		if err := p.Log.WriteSummary(run); err != nil {
			logger.Warn("write summary", zap.Error(err))
		}
	}

	logger.Info("evaluation run finished",
		zap.String("run_id", run.RunID),
		zap.Int("scored", run.Summary.Overall.Scored),
		zap.Int("unscored", run.Summary.Overall.Unscored),
		zap.Int("failed", run.Summary.Overall.Failed),
		zap.Float64("pass_rate", run.Summary.Overall.PassRate))
	return run
}
