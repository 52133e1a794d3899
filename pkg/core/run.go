package core

import "time"

// RetryPolicy bounds transport-level retries for transient provider errors.
type RetryPolicy struct {
	MaxAttempts    int           `json:"max_attempts" yaml:"max_attempts"`
	InitialBackoff time.Duration `json:"initial_backoff" yaml:"initial_backoff"`
	MaxBackoff     time.Duration `json:"max_backoff" yaml:"max_backoff"`
}

// DefaultRetryPolicy matches the providers' documented rate-limit windows.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
	}
}

// RunConfig is the immutable configuration of one evaluation run.
type RunConfig struct {
	Temperature   float64       `json:"temperature" yaml:"temperature"`
	Concurrency   int           `json:"concurrency" yaml:"concurrency"`
	Retry         RetryPolicy   `json:"retry" yaml:"retry"`
	CallTimeout   time.Duration `json:"call_timeout" yaml:"call_timeout"`
	PassThreshold float64       `json:"pass_threshold" yaml:"pass_threshold"`
	SystemPrompt  string        `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
}

// EvaluationRun ties together one run's identity, configuration, ordered
// score records, and derived summary. The summary is always recomputed
// from the records, never edited.
type EvaluationRun struct {
	RunID         string        `json:"run_id" yaml:"run_id"`
	ModelID       string        `json:"model_id" yaml:"model_id"`
	GraderModelID string        `json:"grader_model_id" yaml:"grader_model_id"`
	Config        RunConfig     `json:"config" yaml:"config"`
	Records       []ScoreRecord `json:"records" yaml:"records"`
	Summary       Summary       `json:"summary" yaml:"summary"`
	StartedAt     time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt    time.Time     `json:"finished_at" yaml:"finished_at"`
}

// Complete reports whether every selected sample reached Scored.
func (r EvaluationRun) Complete() bool {
	for _, rec := range r.Records {
		if rec.Status != StatusScored {
			return false
		}
	}
	return true
}

// HistogramBuckets is the number of fixed score buckets in a distribution:
// [0,0.2) [0.2,0.4) [0.4,0.6) [0.6,0.8) [0.8,1.0].
const HistogramBuckets = 5

// DimensionStats are per-dimension statistics over the Scored records of
// one group.
type DimensionStats struct {
	Mean      float64               `json:"mean" yaml:"mean"`
	Median    float64               `json:"median" yaml:"median"`
	Histogram [HistogramBuckets]int `json:"histogram" yaml:"histogram"`
}

// GroupStats are run statistics for one group of records (the whole run,
// or one category).
type GroupStats struct {
	Samples    int                          `json:"samples" yaml:"samples"`
	Scored     int                          `json:"scored" yaml:"scored"`
	Unscored   int                          `json:"unscored" yaml:"unscored"`
	Failed     int                          `json:"failed" yaml:"failed"`
	PassRate   float64                      `json:"pass_rate" yaml:"pass_rate"`
	Dimensions map[Dimension]DimensionStats `json:"dimensions" yaml:"dimensions"`
}

// Summary is the derived run-level report: overall statistics plus a
// per-category breakdown. A pure function of the ScoreRecord set.
type Summary struct {
	PassThreshold float64                 `json:"pass_threshold" yaml:"pass_threshold"`
	Overall       GroupStats              `json:"overall" yaml:"overall"`
	Categories    map[Category]GroupStats `json:"categories" yaml:"categories"`
	TokenUsage    TokenUsage              `json:"token_usage" yaml:"token_usage"`
}
