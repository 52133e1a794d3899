// Package runlog persists evaluation runs: per-sample records appended as
// they finalize, plus one summary written when the run reaches a terminal
// state. Each run gets a distinct directory; prior runs are never
// overwritten.
package runlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

const (
	recordsFile = "records.jsonl"
	summaryFile = "summary.json"
)

// Writer owns one run's log directory. Append is safe for concurrent use.
type Writer struct {
	dir string

	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewWriter creates a fresh directory for the run under logDir, named
// <timestamp>_<model>_<run-id-prefix> so runs sort chronologically and
// never collide.
func NewWriter(logDir string, runID, modelID string) (*Writer, error) {
	if logDir == "" {
		return nil, fmt.Errorf("runlog: log directory is required")
	}
	idPrefix := runID
	if len(idPrefix) > 8 {
		idPrefix = idPrefix[:8]
	}
	name := fmt.Sprintf("%s_%s_%s",
		time.Now().Format("2006-01-02T15-04-05"), sanitizeName(modelID), idPrefix)
	dir := filepath.Join(logDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filepath.Join(dir, recordsFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Writer{dir: dir, file: file, enc: json.NewEncoder(file)}, nil
}

// Dir returns the run's log directory.
func (w *Writer) Dir() string { return w.dir }

// Append persists one finalized record. Records are written as JSON lines
// in completion order; a partially completed run stays inspectable.
func (w *Writer) Append(rec core.ScoreRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(rec)
}

// WriteSummary persists the finalized run (config, summary, and the
// deterministically ordered record set) and closes the record stream.
func (w *Writer) WriteSummary(run core.EvaluationRun) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Close(); err != nil {
		return err
	}

	file, err := os.Create(filepath.Join(w.dir, summaryFile))
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

// ReadRun loads a persisted run back from its directory. The summary file
// is authoritative when present; otherwise the run is reconstructed from
// the appended records (a partially completed or cancelled run).
func ReadRun(dir string) (core.EvaluationRun, error) {
	summaryPath := filepath.Join(dir, summaryFile)
	if f, err := os.Open(summaryPath); err == nil {
		defer f.Close()
		var run core.EvaluationRun
		if err := json.NewDecoder(f).Decode(&run); err != nil {
			return core.EvaluationRun{}, fmt.Errorf("runlog: decode %s: %w", summaryPath, err)
		}
		return run, nil
	}

	recordsPath := filepath.Join(dir, recordsFile)
	f, err := os.Open(recordsPath)
	if err != nil {
		return core.EvaluationRun{}, err
	}
	defer f.Close()

	var run core.EvaluationRun
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec core.ScoreRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return core.EvaluationRun{}, fmt.Errorf("runlog: decode %s: %w", recordsPath, err)
		}
		run.Records = append(run.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return core.EvaluationRun{}, err
	}
	return run, nil
}

func sanitizeName(input string) string {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.' {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return "model"
	}
	return string(out)
}
