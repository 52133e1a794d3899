package reporter

import "github.com/akryshtal/conflict-sensitivity-eval/pkg/core"

// Reporter renders a finalized evaluation run.
type Reporter interface {
	Report(run core.EvaluationRun) error
}

const (
	FormatTable    = "table"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// Formats lists the supported report formats.
func Formats() []string {
	return []string{FormatTable, FormatJSON, FormatMarkdown, FormatCSV}
}
