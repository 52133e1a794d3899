// Package aggregate reduces a finalized set of ScoreRecords into run-level
// statistics. Everything here is a pure function of the record set: the
// same records always produce the same summary.
package aggregate

import (
	"github.com/montanaflynn/stats"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
)

// Summarize computes the run summary: overall statistics plus a
// per-category breakdown. Means and distributions cover Scored records
// only; Unscored and Failed are excluded from the denominator but their
// counts are reported so silent score deflation cannot go unnoticed.
func Summarize(records []core.ScoreRecord, passThreshold float64) core.Summary {
	summary := core.Summary{
		PassThreshold: passThreshold,
		Overall:       groupStats(records, passThreshold),
		Categories:    make(map[core.Category]core.GroupStats),
	}

	byCategory := make(map[core.Category][]core.ScoreRecord)
	for _, rec := range records {
		byCategory[rec.Category] = append(byCategory[rec.Category], rec)
		summary.TokenUsage.PromptTokens += rec.TokenUsage.PromptTokens
		summary.TokenUsage.CompletionTokens += rec.TokenUsage.CompletionTokens
		summary.TokenUsage.TotalTokens += rec.TokenUsage.TotalTokens
	}
	for category, group := range byCategory {
		summary.Categories[category] = groupStats(group, passThreshold)
	}

	return summary
}

func groupStats(records []core.ScoreRecord, passThreshold float64) core.GroupStats {
	g := core.GroupStats{
		Samples:    len(records),
		Dimensions: make(map[core.Dimension]core.DimensionStats),
	}

	values := make(map[core.Dimension][]float64)
	passed := 0
	for _, rec := range records {
		switch rec.Status {
		case core.StatusScored:
			g.Scored++
			for dim, score := range rec.Scores {
				values[dim] = append(values[dim], score.Value)
			}
			if rec.MinScore() >= passThreshold {
				passed++
			}
		case core.StatusUnscored:
			g.Unscored++
		case core.StatusFailed:
			g.Failed++
		}
	}

	// Pass rate is over every sample in the group, not just the scored
	// ones: an Unscored or Failed sample can never count as a pass.
	if g.Samples > 0 {
		g.PassRate = float64(passed) / float64(g.Samples)
	}

	for _, dim := range core.Dimensions() {
		vals := values[dim]
		if len(vals) == 0 {
			continue
		}
		mean, _ := stats.Mean(vals)
		median, _ := stats.Median(vals)
		g.Dimensions[dim] = core.DimensionStats{
			Mean:      mean,
			Median:    median,
			Histogram: histogram(vals),
		}
	}

	return g
}

// histogram buckets values into [0,0.2) [0.2,0.4) [0.4,0.6) [0.6,0.8)
// [0.8,1.0]; the top bucket is closed so 1.0 lands in it.
func histogram(values []float64) [core.HistogramBuckets]int {
	var h [core.HistogramBuckets]int
	for _, v := range values {
		bucket := int(v * core.HistogramBuckets)
		if bucket >= core.HistogramBuckets {
			bucket = core.HistogramBuckets - 1
		}
		if bucket < 0 {
			bucket = 0
		}
		h[bucket]++
	}
	return h
}
