package fusion

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"matric-memory/internal/types"
)

func TestSelectKDisabled(t *testing.T) {
	cfg := DefaultAdaptiveRRFConfig()
	cfg.AdaptiveEnabled = false
	qc := AnalyzeQuery("rust")
	assert.Equal(t, 20, SelectK(cfg, qc))
}

func TestSelectKShortQuery(t *testing.T) {
	cfg := DefaultAdaptiveRRFConfig()
	qc := AnalyzeQuery("rust")
	assert.Equal(t, 14, SelectK(cfg, qc)) // 20 * 0.7
}

func TestSelectKLongQuery(t *testing.T) {
	cfg := DefaultAdaptiveRRFConfig()
	qc := AnalyzeQuery("one two three four five six seven eight")
	assert.Equal(t, 26, SelectK(cfg, qc)) // 20 * 1.3
}

func TestSelectKQuotedThreeTokenQuery(t *testing.T) {
	cfg := DefaultAdaptiveRRFConfig()
	qc := AnalyzeQuery(`"a b c"`)
	assert.Equal(t, 3, qc.TokenCount)
	assert.Equal(t, 12, SelectK(cfg, qc)) // 20 * 0.6, no short/long adjustment
}

func TestSelectKShortAndQuoted(t *testing.T) {
	cfg := DefaultAdaptiveRRFConfig()
	qc := AnalyzeQuery(`"x"`)
	// 1 token: *0.7 -> 14, quoted: *0.6 -> 8.4 -> rounds to 8
	assert.Equal(t, 8, SelectK(cfg, qc))
}

func TestSelectKClampsToMin(t *testing.T) {
	cfg := DefaultAdaptiveRRFConfig()
	cfg.MinK = 10
	qc := AnalyzeQuery(`"x"`)
	assert.Equal(t, 10, SelectK(cfg, qc))
}

func TestSelectKClampsToMax(t *testing.T) {
	cfg := DefaultAdaptiveRRFConfig()
	qc := AnalyzeQuery("one two three four five six seven eight nine ten eleven twelve")
	assert.LessOrEqual(t, SelectK(cfg, qc), cfg.MaxK)
}

func TestRRFScore(t *testing.T) {
	assert.InDelta(t, 1.0/21.0, RRFScore(1, 20), 1e-9)
	assert.InDelta(t, 1.0/22.0, RRFScore(2, 20), 1e-9)
}

func TestRRFFuseSingleList(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	lists := [][]RankedHit{
		{{NoteID: id1, Title: "a"}, {NoteID: id2, Title: "b"}},
	}
	out := RRFFuse(lists, []float64{1.0}, 20, 0)
	assert.Len(t, out, 2)
	assert.Equal(t, id1, out[0].NoteID)
	assert.Greater(t, out[0].Score, out[1].Score)
}

func TestRRFFuseCombinesOverlap(t *testing.T) {
	shared := uuid.New()
	onlyA := uuid.New()
	onlyB := uuid.New()
	lists := [][]RankedHit{
		{{NoteID: shared, Title: "shared"}, {NoteID: onlyA, Title: "a"}},
		{{NoteID: shared, Title: "shared"}, {NoteID: onlyB, Title: "b"}},
	}
	out := RRFFuse(lists, []float64{1.0, 1.0}, 20, 0)
	assert.Equal(t, shared, out[0].NoteID, "a hit in both lists should outrank a hit in only one")
}

func TestRRFFuseRespectsLimit(t *testing.T) {
	lists := [][]RankedHit{
		{{NoteID: uuid.New()}, {NoteID: uuid.New()}, {NoteID: uuid.New()}},
	}
	out := RRFFuse(lists, []float64{1.0}, 20, 2)
	assert.Len(t, out, 2)
}

func TestRRFFuseEmpty(t *testing.T) {
	out := RRFFuse(nil, nil, 20, 0)
	assert.Empty(t, out)
}

func TestRRFFuseReturnsEnhancedSearchHit(t *testing.T) {
	id := uuid.New()
	lists := [][]RankedHit{{{NoteID: id, Title: "t", Snippet: "s", Tags: []string{"x"}}}}
	out := RRFFuse(lists, []float64{1.0}, 20, 0)
	var hit types.EnhancedSearchHit = out[0]
	assert.Equal(t, "t", hit.Title)
	assert.Equal(t, "s", hit.Snippet)
	assert.Equal(t, []string{"x"}, hit.Tags)
}
