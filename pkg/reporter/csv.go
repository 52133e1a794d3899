package reporter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

type CSVReporter struct {
	Writer io.Writer
}

func (r CSVReporter) Report(run core.EvaluationRun) error {
	writer := csv.NewWriter(r.Writer)
	header := []string{"sample_id", "category", "status"}
	for _, d := range core.Dimensions() {
		header = append(header, string(d), string(d)+"_rationale")
	}
	header = append(header, "error")
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, rec := range run.Records {
		record := []string{rec.SampleID, string(rec.Category), string(rec.Status)}
		for _, d := range core.Dimensions() {
			score, ok := rec.Scores[d]
			if !ok {
				record = append(record, "", "")
				continue
			}
			record = append(record, strconv.FormatFloat(score.Value, 'f', 3, 64), score.Rationale)
		}
		record = append(record, rec.Error)
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
