package rfm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/segmint/segmint/internal/model"
)

func TestQuintileScoresEqualPopulation(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	scores, policy := quintileScores(values, false)
	assert.Equal(t, model.BinningQuantile, policy)
	assert.Equal(t, []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5}, scores)

	inverted, policy := quintileScores(values, true)
	assert.Equal(t, model.BinningQuantile, policy)
	assert.Equal(t, []int{5, 5, 4, 4, 3, 3, 2, 2, 1, 1}, inverted)
}

func TestQuintileScoresOrderIndependent(t *testing.T) {
	// Input order must not affect which score a value receives.
	values := []float64{7, 2, 9, 4, 1, 8, 3, 10, 5, 6}
	scores, policy := quintileScores(values, false)
	assert.Equal(t, model.BinningQuantile, policy)
	assert.Equal(t, []int{4, 1, 5, 2, 1, 4, 2, 5, 3, 3}, scores)
}

func TestQuintileScoresTiesSplitByRank(t *testing.T) {
	// Heavy ties with >= 5 distinct values stay on the rank-based path
	// and every score is still in 1..5.
	values := []float64{1, 1, 1, 1, 2, 3, 4, 5, 5, 5}
	scores, policy := quintileScores(values, false)
	assert.Equal(t, model.BinningQuantile, policy)
	for i, s := range scores {
		assert.GreaterOrEqual(t, s, 1, "index %d", i)
		assert.LessOrEqual(t, s, 5, "index %d", i)
	}
}

func TestQuintileScoresWidthFallback(t *testing.T) {
	// Fewer than five distinct values: equal-width bins over the range.
	values := []float64{1, 1, 2, 2, 3}
	scores, policy := quintileScores(values, false)
	assert.Equal(t, model.BinningWidth, policy)
	assert.Equal(t, []int{1, 1, 3, 3, 5}, scores)

	inverted, policy := quintileScores(values, true)
	assert.Equal(t, model.BinningWidth, policy)
	assert.Equal(t, []int{5, 5, 3, 3, 1}, inverted)
}

func TestQuintileScoresDegenerate(t *testing.T) {
	// A constant metric carries no signal: everyone lands in the middle.
	values := []float64{7, 7, 7, 7}
	scores, policy := quintileScores(values, false)
	assert.Equal(t, model.BinningWidth, policy)
	assert.Equal(t, []int{3, 3, 3, 3}, scores)
}
