package reporter

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

type TableReporter struct {
	Writer io.Writer
}

func (r TableReporter) Report(run core.EvaluationRun) error {
	overall := run.Summary.Overall

	table := tablewriter.NewWriter(r.Writer)
	table.Header([]string{"Metric", "Value"})
	table.Append([]string{"Run", run.RunID})
	table.Append([]string{"Model", run.ModelID})
	table.Append([]string{"Grader", run.GraderModelID})
	table.Append([]string{"Samples", fmt.Sprintf("%d", overall.Samples)})
	table.Append([]string{"Scored", fmt.Sprintf("%d", overall.Scored)})
	table.Append([]string{"Unscored", fmt.Sprintf("%d", overall.Unscored)})
	table.Append([]string{"Failed", fmt.Sprintf("%d", overall.Failed)})
	table.Append([]string{"Pass rate", fmt.Sprintf("%.2f (threshold %.2f)", overall.PassRate, run.Summary.PassThreshold)})
	table.Render()

	dims := tablewriter.NewWriter(r.Writer)
	dims.Header([]string{"Dimension", "Mean", "Median"})
	for _, d := range core.Dimensions() {
		s, ok := overall.Dimensions[d]
		if !ok {
			dims.Append([]string{string(d), "-", "-"})
			continue
		}
		dims.Append([]string{string(d), fmt.Sprintf("%.3f", s.Mean), fmt.Sprintf("%.3f", s.Median)})
	}
	dims.Render()

	if len(run.Summary.Categories) > 0 {
		cats := tablewriter.NewWriter(r.Writer)
		cats.Header([]string{"Category", "Samples", "Scored", "Pass rate"})
		for _, c := range core.Categories() {
			s, ok := run.Summary.Categories[c]
			if !ok {
				continue
			}
			cats.Append([]string{
				string(c),
				fmt.Sprintf("%d", s.Samples),
				fmt.Sprintf("%d", s.Scored),
				fmt.Sprintf("%.2f", s.PassRate),
			})
		}
		cats.Render()
	}
	return nil
}
