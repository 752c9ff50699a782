package fusion

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRSFFuseEmptyLists(t *testing.T) {
	out := RSFFuse(nil, nil, nil, 0)
	assert.Empty(t, out)
}

func TestRSFFuseSingleListExtremesNormalize(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	lists := [][]RankedHit{{{NoteID: a}, {NoteID: b}}}
	scores := [][]float64{{10.0, 2.0}}
	out := RSFFuse(lists, scores, []float64{1.0}, 0)
	assert.Equal(t, a, out[0].NoteID)
	assert.InDelta(t, 1.0, out[0].Score, 1e-9)
	assert.InDelta(t, 0.0, out[1].Score, 1e-9)
}

func TestRSFFuseEqualScoresBothNormalizeToOne(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	lists := [][]RankedHit{{{NoteID: a}, {NoteID: b}}}
	scores := [][]float64{{5.0, 5.0}}
	out := RSFFuse(lists, scores, []float64{1.0}, 0)
	assert.InDelta(t, 1.0, out[0].Score, 1e-9)
	assert.InDelta(t, 1.0, out[1].Score, 1e-9)
}

func TestRSFFuseDisjointListsBothAppear(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	lists := [][]RankedHit{
		{{NoteID: a}},
		{{NoteID: b}},
	}
	scores := [][]float64{{1.0}, {1.0}}
	out := RSFFuse(lists, scores, []float64{0.5, 0.5}, 0)
	assert.Len(t, out, 2)
}

func TestRSFFuseAsymmetricWeightsFavorHigherWeightedList(t *testing.T) {
	shared := uuid.New()
	other := uuid.New()
	lists := [][]RankedHit{
		{{NoteID: shared}, {NoteID: other}},
		{{NoteID: shared}},
	}
	scores := [][]float64{{1.0, 0.0}, {1.0}}
	out := RSFFuse(lists, scores, []float64{0.2, 0.8}, 0)
	assert.Equal(t, shared, out[0].NoteID)
}

func TestRSFFuseClampsScoreToOne(t *testing.T) {
	a := uuid.New()
	lists := [][]RankedHit{
		{{NoteID: a}},
		{{NoteID: a}},
	}
	scores := [][]float64{{1.0}, {1.0}}
	out := RSFFuse(lists, scores, []float64{1.0, 1.0}, 0)
	assert.LessOrEqual(t, out[0].Score, 1.0)
}

func TestRSFFusePreservesMetadataFromFirstOccurrence(t *testing.T) {
	a := uuid.New()
	lists := [][]RankedHit{
		{{NoteID: a, Title: "first", Snippet: "snip", Tags: []string{"go"}}},
		{{NoteID: a, Title: "second"}},
	}
	scores := [][]float64{{1.0}, {1.0}}
	out := RSFFuse(lists, scores, []float64{1.0, 1.0}, 0)
	assert.Equal(t, "first", out[0].Title)
	assert.Equal(t, "snip", out[0].Snippet)
	assert.Equal(t, []string{"go"}, out[0].Tags)
}

func TestRSFFuseRespectsLimit(t *testing.T) {
	lists := [][]RankedHit{{{NoteID: uuid.New()}, {NoteID: uuid.New()}, {NoteID: uuid.New()}}}
	scores := [][]float64{{3.0, 2.0, 1.0}}
	out := RSFFuse(lists, scores, []float64{1.0}, 1)
	assert.Len(t, out, 1)
}

func TestRSFFuseMissingWeightDefaultsToOne(t *testing.T) {
	a := uuid.New()
	lists := [][]RankedHit{{{NoteID: a}}}
	scores := [][]float64{{1.0}}
	out := RSFFuse(lists, scores, nil, 0)
	assert.InDelta(t, 1.0, out[0].Score, 1e-9)
}
