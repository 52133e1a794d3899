package core

import "time"

// Status is the terminal state of a sample within a run.
type Status string

const (
	// StatusScored means the grader produced a score for every dimension.
	StatusScored Status = "scored"
	// StatusUnscored means the candidate responded but the grader output
	// stayed malformed after the semantic retry bound.
	StatusUnscored Status = "unscored"
	// StatusFailed means the candidate call failed terminally, or the run
	// was cancelled before the sample completed.
	StatusFailed Status = "failed"
)

// DimensionScore is one graded dimension: a value in [0,1] and the
// grader's rationale.
type DimensionScore struct {
	Value     float64 `json:"value" yaml:"value"`
	Rationale string  `json:"rationale,omitempty" yaml:"rationale,omitempty"`
}

// ScoreRecord is the terminal outcome for one sample in one run. Records
// are append-only; once written they are never reopened.
type ScoreRecord struct {
	SampleID     string                       `json:"sample_id" yaml:"sample_id"`
	Category     Category                     `json:"category" yaml:"category"`
	MethodTags   []string                     `json:"method_tags,omitempty" yaml:"method_tags,omitempty"`
	ResponseText string                       `json:"response_text,omitempty" yaml:"response_text,omitempty"`
	Scores       map[Dimension]DimensionScore `json:"scores,omitempty" yaml:"scores,omitempty"`
	Status       Status                       `json:"status" yaml:"status"`
	Error        string                       `json:"error,omitempty" yaml:"error,omitempty"`
	// GraderRaw preserves the raw grader reply when parsing failed, for audit.
	GraderRaw  string        `json:"grader_raw,omitempty" yaml:"grader_raw,omitempty"`
	TokenUsage TokenUsage    `json:"token_usage" yaml:"token_usage"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
}

// MinScore returns the lowest dimension value on a scored record. A record
// passes a threshold only when every dimension meets it.
func (r ScoreRecord) MinScore() float64 {
	min := 1.0
	for _, s := range r.Scores {
		if s.Value < min {
			min = s.Value
		}
	}
	if len(r.Scores) == 0 {
		return 0
	}
	return min
}
