package fusion

import (
	"sort"

	"github.com/google/uuid"

	"matric-memory/internal/types"
)

// AdaptiveRRFConfig controls whether and how the RRF constant k is tuned
// per query.
type AdaptiveRRFConfig struct {
	AdaptiveEnabled bool
	DefaultK        int
	MinK            int
	MaxK            int
}

// DefaultAdaptiveRRFConfig mirrors the Rust Default impl.
func DefaultAdaptiveRRFConfig() AdaptiveRRFConfig {
	return AdaptiveRRFConfig{
		AdaptiveEnabled: true,
		DefaultK:        20,
		MinK:            8,
		MaxK:            40,
	}
}

// SelectK chooses the RRF constant for a query: short queries (<=2 tokens)
// favor top-rank precision (lower k), long queries (>=6 tokens) favor
// recall (higher k), and quoted/phrase queries favor precision further
// still. Disabled adaptation always returns DefaultK.
func SelectK(cfg AdaptiveRRFConfig, qc types.QueryCharacteristics) int {
	if !cfg.AdaptiveEnabled {
		return cfg.DefaultK
	}

	k := float64(cfg.DefaultK)
	if qc.TokenCount <= 2 {
		k *= 0.7
	}
	if qc.TokenCount >= 6 {
		k *= 1.3
	}
	if qc.IsQuoted {
		k *= 0.6
	}

	rounded := int(k + 0.5)
	if rounded < cfg.MinK {
		rounded = cfg.MinK
	}
	if rounded > cfg.MaxK {
		rounded = cfg.MaxK
	}
	return rounded
}

// RRFScore is the Reciprocal Rank Fusion contribution of a single hit at
// 1-indexed rank for constant k.
func RRFScore(rank, k int) float64 {
	return 1.0 / float64(k+rank)
}

// RankedHit is one retriever's ranked output, in rank order (best first).
// Score carries the retriever's own raw score (ts_rank, cosine similarity)
// for single-retriever ranking and RSF normalization; RRF ignores it in
// favor of rank position.
type RankedHit struct {
	NoteID  uuid.UUID
	Title   string
	Snippet string
	Tags    []string
	Score   float64
}

// RRFFuse combines one or more rank-ordered hit lists into a single ranked
// result set. Each hit at 1-indexed rank r within list i contributes
// weights[i] * RRFScore(r, k) to that note's accumulator; lists beyond
// len(weights) default to weight 1.0. Metadata (title/snippet/tags) is kept
// from the first list that mentions a given note. Results are sorted by
// descending score and truncated to limit (limit <= 0 means unlimited).
func RRFFuse(lists [][]RankedHit, weights []float64, k, limit int) []types.EnhancedSearchHit {
	scores := make(map[uuid.UUID]float64)
	meta := make(map[uuid.UUID]RankedHit)
	order := make([]uuid.UUID, 0)

	for i, list := range lists {
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		for idx, hit := range list {
			rank := idx + 1
			if _, seen := scores[hit.NoteID]; !seen {
				order = append(order, hit.NoteID)
				meta[hit.NoteID] = hit
			}
			scores[hit.NoteID] += w * RRFScore(rank, k)
		}
	}

	out := make([]types.EnhancedSearchHit, 0, len(order))
	for _, id := range order {
		m := meta[id]
		out = append(out, types.EnhancedSearchHit{
			NoteID:  id,
			Title:   m.Title,
			Snippet: m.Snippet,
			Score:   scores[id],
			Tags:    m.Tags,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
