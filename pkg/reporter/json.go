package reporter

import (
	"encoding/json"
	"io"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

type JSONReporter struct {
	Writer io.Writer
	Pretty bool
}

func (r JSONReporter) Report(run core.EvaluationRun) error {
	encoder := json.NewEncoder(r.Writer)
	if r.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(run)
}
