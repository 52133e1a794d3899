package store

import (
	"fmt"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

// Store holds the immutable, ordered dataset. Construction validates every
// sample; after that the store is read-only and all accessors return
// copies, so no downstream component can mutate a Sample.
type Store struct {
	samples []core.Sample
	index   map[string]int
}

// New builds a Store from samples, collecting every validation violation
// before failing. Order is preserved.
func New(samples []core.Sample) (*Store, error) {
	var violations []string
	index := make(map[string]int, len(samples))

	for i, s := range samples {
		if s.ID == "" {
			violations = append(violations, fmt.Sprintf("record %d: empty id", i))
			continue
		}
		if prev, dup := index[s.ID]; dup {
			violations = append(violations, fmt.Sprintf("record %d: duplicate id %q (first at record %d)", i, s.ID, prev))
		} else {
			index[s.ID] = i
		}
		if s.Prompt == "" {
			violations = append(violations, fmt.Sprintf("sample %q: empty prompt", s.ID))
		}
		if !core.ValidCategory(s.Category) {
			violations = append(violations, fmt.Sprintf("sample %q: unknown category %q", s.ID, s.Category))
		}
	}

	if len(violations) > 0 {
		return nil, &core.DatasetValidationError{Violations: violations}
	}

	owned := make([]core.Sample, len(samples))
	copy(owned, samples)
	return &Store{samples: owned, index: index}, nil
}

// Len returns the number of samples in the store.
func (s *Store) Len() int { return len(s.samples) }

// All returns every sample in insertion order. Repeated calls return the
// same order and content.
func (s *Store) All() []core.Sample {
	out := make([]core.Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Select returns the subsequence matching ids, preserving store order
// regardless of the order ids are requested in. Any absent id fails the
// whole selection.
func (s *Store) Select(ids []string) ([]core.Sample, error) {
	want := make(map[string]bool, len(ids))
	var unknown []string
	for _, id := range ids {
		if _, ok := s.index[id]; !ok {
			unknown = append(unknown, id)
			continue
		}
		want[id] = true
	}
	if len(unknown) > 0 {
		return nil, &core.UnknownSampleIDError{IDs: unknown}
	}

	out := make([]core.Sample, 0, len(want))
	for _, sample := range s.samples {
		if want[sample.ID] {
			out = append(out, sample)
		}
	}
	return out, nil
}

// Limit returns the first n samples in store order. n larger than the
// store returns everything; n <= 0 returns an empty slice.
func (s *Store) Limit(n int) []core.Sample {
	if n <= 0 {
		return nil
	}
	if n > len(s.samples) {
		n = len(s.samples)
	}
	out := make([]core.Sample, n)
	copy(out, s.samples[:n])
	return out
}
