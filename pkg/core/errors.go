package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	// ErrTransient covers rate limits, 5xx-equivalents, and other failures
	// worth retrying.
	ErrTransient ErrorKind = "transient"
	// ErrNonTransient covers malformed requests, auth failures, and other
	// failures that retrying cannot fix.
	ErrNonTransient ErrorKind = "non_transient"
	// ErrTimeout covers per-call deadline expiry. Treated as retryable.
	ErrTimeout ErrorKind = "timeout"
)

// ProviderError wraps a model-provider failure with its classification.
type ProviderError struct {
	Kind ErrorKind
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (%s): %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether err is a provider failure worth retrying.
// Timeouts are retried; non-transient failures are not.
func Retryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind == ErrTransient || pe.Kind == ErrTimeout
	}
	return false
}

// DatasetValidationError is fatal and aborts a run before any model calls.
// It carries every violation found, not just the first.
type DatasetValidationError struct {
	Violations []string
}

func (e *DatasetValidationError) Error() string {
	return fmt.Sprintf("dataset validation failed (%d violations): %s",
		len(e.Violations), strings.Join(e.Violations, "; "))
}

// UnknownSampleIDError is fatal and aborts a run before any model calls.
type UnknownSampleIDError struct {
	IDs []string
}

func (e *UnknownSampleIDError) Error() string {
	return fmt.Sprintf("unknown sample ids: %s", strings.Join(e.IDs, ", "))
}

// MalformedGraderOutput indicates the grader reply did not contain a
// parseable score for every dimension. The raw reply is preserved for audit.
type MalformedGraderOutput struct {
	Missing []Dimension
	Raw     string
}

func (e *MalformedGraderOutput) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, d := range e.Missing {
		names = append(names, string(d))
	}
	return fmt.Sprintf("malformed grader output: no parseable score for %s", strings.Join(names, ", "))
}

// ErrRunCancelled marks samples that were forced to a terminal status
// because the run was cancelled before they completed.
var ErrRunCancelled = errors.New("run cancelled")
