package service

import (
	"testing"

	"hilfo_survey_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreReverseCoding(t *testing.T) {
	bank := fourItemBank()
	scoring := NewScoringService()

	// A and C contribute raw; B and D contribute (5+1)-raw.
	responses := map[string]int{"A": 5, "B": 1, "C": 3, "D": 2}

	record, err := scoring.Score(responses, bank)
	require.NoError(t, err)
	assert.InDelta(t, 4.25, record["X"], 1e-9) // (5+5+3+4)/4
}

func TestScoreMissingExcludedFromMean(t *testing.T) {
	bank := fourItemBank()
	scoring := NewScoringService()

	// D missing: mean over the three answered items, not four.
	record, err := scoring.Score(map[string]int{"A": 5, "B": 1, "C": 3}, bank)
	require.NoError(t, err)
	assert.InDelta(t, (5.0+5.0+3.0)/3.0, record["X"], 1e-9)
}

func TestScoreIncompleteScale(t *testing.T) {
	bank := fourItemBank()
	scoring := NewScoringService()
	scoring.MinItemsPerScale = 2

	_, err := scoring.Score(map[string]int{"A": 5}, bank)
	assert.ErrorIs(t, err, util.ErrIncompleteResponseSet)

	_, err = scoring.Score(map[string]int{}, bank)
	assert.ErrorIs(t, err, util.ErrIncompleteResponseSet)
}

func TestScoreDeterministic(t *testing.T) {
	bank := fourItemBank()
	scoring := NewScoringService()
	responses := map[string]int{"A": 2, "B": 4, "C": 1, "D": 5}

	first, err := scoring.Score(responses, bank)
	require.NoError(t, err)
	second, err := scoring.Score(responses, bank)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
