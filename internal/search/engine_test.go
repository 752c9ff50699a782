package search

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matric-memory/internal/search/fusion"
	"matric-memory/internal/types"
)

func TestResolveStrategyHonorsExplicitRequest(t *testing.T) {
	req := types.SearchRequest{Strategy: types.StrategyFtsOnly, QueryVector: []float32{0.1}}
	assert.Equal(t, types.StrategyFtsOnly, resolveStrategy(req))
}

func TestResolveStrategyAutoWithoutVectorIsFtsOnly(t *testing.T) {
	req := types.SearchRequest{Strategy: types.StrategyAuto}
	assert.Equal(t, types.StrategyFtsOnly, resolveStrategy(req))
}

func TestResolveStrategyAutoWithVectorIsHybrid(t *testing.T) {
	req := types.SearchRequest{Strategy: types.StrategyAuto, QueryVector: []float32{0.1, 0.2}}
	assert.Equal(t, types.StrategyHybrid, resolveStrategy(req))
}

func TestRankOnlySortsByScoreDescending(t *testing.T) {
	hits := []fusion.RankedHit{
		{NoteID: uuid.New(), Score: 0.1},
		{NoteID: uuid.New(), Score: 0.9},
		{NoteID: uuid.New(), Score: 0.5},
	}
	out := rankOnly(hits)
	require.Len(t, out, 3)
	assert.Equal(t, 0.9, out[0].Score)
	assert.Equal(t, 0.5, out[1].Score)
	assert.Equal(t, 0.1, out[2].Score)
}

func TestRankOnlyDoesNotMutateInput(t *testing.T) {
	hits := []fusion.RankedHit{{NoteID: uuid.New(), Score: 0.1}, {NoteID: uuid.New(), Score: 0.9}}
	_ = rankOnly(hits)
	assert.Equal(t, 0.1, hits[0].Score)
}

func TestApplyMinScoreFiltersBelowThreshold(t *testing.T) {
	hits := []types.EnhancedSearchHit{
		{NoteID: uuid.New(), Score: 0.9},
		{NoteID: uuid.New(), Score: 0.1},
		{NoteID: uuid.New(), Score: 0.5},
	}
	out := applyMinScore(hits, 0.4)
	require.Len(t, out, 2)
	for _, h := range out {
		assert.GreaterOrEqual(t, h.Score, 0.4)
	}
}

func TestApplyMinScoreZeroIsNoOp(t *testing.T) {
	hits := []types.EnhancedSearchHit{{NoteID: uuid.New(), Score: 0.0}}
	out := applyMinScore(hits, 0)
	assert.Equal(t, hits, out)
}

func TestSearchRejectsZeroLimit(t *testing.T) {
	e := New(nil)
	limit := 0
	_, err := e.Search(context.Background(), nil, types.SearchRequest{Limit: &limit})
	require.Error(t, err)
}

func TestSearchRejectsNegativeLimit(t *testing.T) {
	e := New(nil)
	limit := -5
	_, err := e.Search(context.Background(), nil, types.SearchRequest{Limit: &limit})
	require.Error(t, err)
}

func TestDefaultFusionConfig(t *testing.T) {
	cfg := DefaultFusionConfig()
	assert.Equal(t, 20, cfg.DefaultLimit)
	assert.Equal(t, 50, cfg.DefaultRerankTopK)
	assert.Equal(t, types.FusionRRF, cfg.DefaultFusion)
	assert.Equal(t, fusion.RecallBalanced, cfg.RecallTarget)
}
