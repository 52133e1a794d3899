package reporter

import (
	"fmt"
	"io"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

type MarkdownReporter struct {
	Writer io.Writer
}

func (r MarkdownReporter) Report(run core.EvaluationRun) error {
	overall := run.Summary.Overall

	if _, err := fmt.Fprintf(r.Writer, "# Conflict Sensitivity Report\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(r.Writer, "- Run: %s\n- Model: %s\n- Grader: %s\n\n",
		run.RunID, run.ModelID, run.GraderModelID); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(r.Writer, "## Summary\n\n| Metric | Value |\n|---|---|\n"); err != nil {
		return err
	}
	lines := []struct {
		Name  string
		Value string
	}{
		{"Samples", fmt.Sprintf("%d", overall.Samples)},
		{"Scored", fmt.Sprintf("%d", overall.Scored)},
		{"Unscored", fmt.Sprintf("%d", overall.Unscored)},
		{"Failed", fmt.Sprintf("%d", overall.Failed)},
		{"Pass rate", fmt.Sprintf("%.2f (threshold %.2f)", overall.PassRate, run.Summary.PassThreshold)},
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(r.Writer, "| %s | %s |\n", line.Name, line.Value); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(r.Writer, "\n## Dimensions\n\n| Dimension | Mean | Median |\n|---|---|---|\n"); err != nil {
		return err
	}
	for _, d := range core.Dimensions() {
		s := overall.Dimensions[d]
		if _, err := fmt.Fprintf(r.Writer, "| %s | %.3f | %.3f |\n", d, s.Mean, s.Median); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(r.Writer, "\n## Samples\n\n| ID | Category | Status | Min score | Error |\n|---|---|---|---|---|\n"); err != nil {
		return err
	}
	for _, rec := range run.Records {
		minScore := "-"
		if rec.Status == core.StatusScored {
			minScore = fmt.Sprintf("%.2f", rec.MinScore())
		}
		if _, err := fmt.Fprintf(r.Writer, "| %s | %s | %s | %s | %s |\n",
			rec.SampleID, rec.Category, rec.Status, minScore, escapePipe(rec.Error)); err != nil {
			return err
		}
	}
	return nil
}

func escapePipe(input string) string {
	if input == "" {
		return ""
	}
	out := make([]rune, 0, len(input))
	for _, r := range input {
		switch r {
		case '|':
			out = append(out, '\\', r)
		case '\n', '\r':
			out = append(out, ' ')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
