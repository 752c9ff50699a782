package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarityIdentical(t *testing.T) {
	a := []float32{1, 0, 0}
	assert.InDelta(t, 1.0, cosineSimilarity(a, a), 1e-9)
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, cosineSimilarity(a, b), 1e-9)
}

func TestCosineSimilarityOpposite(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{-1, 0}
	assert.InDelta(t, -1.0, cosineSimilarity(a, b), 1e-9)
}

func TestCosineSimilarityMismatchedLengthIsZero(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 2}, []float32{1}))
}

func TestCosineSimilarityZeroVectorIsZero(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestMaxSimScoreSumsPerQueryTokenBestMatch(t *testing.T) {
	query := [][]float32{{1, 0}, {0, 1}}
	doc := [][]float32{{1, 0}, {0, 1}, {0.5, 0.5}}
	score := maxSimScore(query, doc)
	assert.InDelta(t, 2.0, score, 1e-9)
}

func TestMaxSimScoreEmptyDocIsZero(t *testing.T) {
	query := [][]float32{{1, 0}}
	assert.Equal(t, 0.0, maxSimScore(query, nil))
}

func TestMaxSimScoreIsOrderInsensitiveToDocTokens(t *testing.T) {
	query := [][]float32{{1, 0}}
	docA := [][]float32{{1, 0}, {0, 1}}
	docB := [][]float32{{0, 1}, {1, 0}}
	assert.InDelta(t, maxSimScore(query, docA), maxSimScore(query, docB), 1e-9)
}

func TestMaxSimScoreNeverExceedsQueryTokenCount(t *testing.T) {
	query := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	doc := [][]float32{{1, 0}}
	score := maxSimScore(query, doc)
	assert.LessOrEqual(t, score, float64(len(query))+1e-9)
	assert.False(t, math.IsNaN(score))
}
