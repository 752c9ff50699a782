package search

import (
	"sort"

	"github.com/google/uuid"

	"matric-memory/internal/types"
)

// dedupeChains collapses sibling chunk hits sharing the same parent note.
// The highest-scoring hit per parent is kept (ties broken by lowest chunk
// index) and annotated with the chain it absorbed; hits without chunk
// metadata pass through untouched. If cfg.ExpandChains is set, every chunk
// hit is kept as its own row instead of being collapsed.
func dedupeChains(hits []types.EnhancedSearchHit, cfg types.DedupConfig) []types.EnhancedSearchHit {
	if cfg.ExpandChains {
		return hits
	}

	type group struct {
		best    types.EnhancedSearchHit
		matched []types.MatchedChunk
	}

	groups := make(map[uuid.UUID]*group)
	order := make([]uuid.UUID, 0)
	var standalone []types.EnhancedSearchHit

	for _, h := range hits {
		if h.ChunkInfo == nil {
			standalone = append(standalone, h)
			continue
		}
		parentID := h.ChunkInfo.ParentNoteID
		g, ok := groups[parentID]
		if !ok {
			g = &group{best: h}
			groups[parentID] = g
			order = append(order, parentID)
		}
		g.matched = append(g.matched, types.MatchedChunk{Index: h.ChunkInfo.ChunkIndex, Score: h.Score})

		if h.Score > g.best.Score ||
			(h.Score == g.best.Score && h.ChunkInfo.ChunkIndex < g.best.ChunkInfo.ChunkIndex) {
			g.best = h
		}
	}

	out := make([]types.EnhancedSearchHit, 0, len(standalone)+len(order))
	out = append(out, standalone...)

	for _, parentID := range order {
		g := groups[parentID]
		sort.Slice(g.matched, func(i, j int) bool { return g.matched[i].Index < g.matched[j].Index })
		best := g.best
		best.Chain = &types.ChainInfo{
			ParentID:      parentID,
			ChunkCount:    len(g.matched),
			MatchedChunks: g.matched,
		}
		out = append(out, best)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
