package grader_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akryshtal/conflict-sensitivity-eval/pkg/core"
	"github.com/akryshtal/conflict-sensitivity-eval/pkg/grader"
)

func TestParseCanonicalReply(t *testing.T) {
	raw := `balanced_perspective: 0.8 - covers both communities
factual_accuracy: 0.9 - no errors found
conflict_sensitivity: 0.7 - mostly neutral language
constructive_framing: 0.6 - some actionable framing`

	scores, err := grader.Parse(raw)
	require.NoError(t, err)
	require.Len(t, scores, 4)
	require.Equal(t, 0.8, scores[core.DimBalancedPerspective].Value)
	require.Equal(t, "covers both communities", scores[core.DimBalancedPerspective].Rationale)
	require.Equal(t, 0.6, scores[core.DimConstructiveFraming].Value)
}

func TestParseToleratesMarkdownAndReordering(t *testing.T) {
	raw := `Here is my assessment:

**constructive_framing**: 0.5 | reasonable suggestions
- factual_accuracy: 1.0 - fully accurate
balanced_perspective = 0.75 - good coverage
*conflict_sensitivity*: 0.9: careful wording`

	scores, err := grader.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, 0.5, scores[core.DimConstructiveFraming].Value)
	require.Equal(t, 1.0, scores[core.DimFactualAccuracy].Value)
	require.Equal(t, 0.75, scores[core.DimBalancedPerspective].Value)
	require.Equal(t, 0.9, scores[core.DimConflictSensitivity].Value)
}

func TestParseNormalizesPercentScale(t *testing.T) {
	raw := `balanced_perspective: 80 - solid
factual_accuracy: 100 - perfect
conflict_sensitivity: 45 - uneven
constructive_framing: 5 - weak`

	scores, err := grader.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, 0.8, scores[core.DimBalancedPerspective].Value)
	require.Equal(t, 1.0, scores[core.DimFactualAccuracy].Value)
	require.Equal(t, 0.45, scores[core.DimConflictSensitivity].Value)
	require.Equal(t, 0.05, scores[core.DimConstructiveFraming].Value)
}

func TestParseFirstScorePerDimensionWins(t *testing.T) {
	raw := `balanced_perspective: 0.2 - first
balanced_perspective: 0.9 - second
factual_accuracy: 0.5 - ok
conflict_sensitivity: 0.5 - ok
constructive_framing: 0.5 - ok`

	scores, err := grader.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, 0.2, scores[core.DimBalancedPerspective].Value)
}

func TestParseMissingDimensionFails(t *testing.T) {
	raw := `balanced_perspective: 0.8 - fine
factual_accuracy: 0.9 - fine
conflict_sensitivity: 0.7 - fine`

	_, err := grader.Parse(raw)
	require.Error(t, err)

	var malformed *core.MalformedGraderOutput
	require.ErrorAs(t, err, &malformed)
	require.Equal(t, []core.Dimension{core.DimConstructiveFraming}, malformed.Missing)
	require.Equal(t, raw, malformed.Raw)
}

func TestParseProseOnlyFails(t *testing.T) {
	_, err := grader.Parse("The response looks generally balanced and accurate to me.")

	var malformed *core.MalformedGraderOutput
	require.ErrorAs(t, err, &malformed)
	require.Len(t, malformed.Missing, 4)
}
