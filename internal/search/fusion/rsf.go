package fusion

import (
	"sort"

	"github.com/google/uuid"

	"matric-memory/internal/types"
)

// normalizeMinMax scales a list of scores to [0, 1]. A zero-range list
// (all equal scores, including a single-element list) maps every score to
// 1.0 rather than dividing by zero.
func normalizeMinMax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	min, max := scores[0], scores[0]
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	rangeVal := max - min
	for i, s := range scores {
		if rangeVal == 0 {
			out[i] = 1.0
			continue
		}
		out[i] = (s - min) / rangeVal
	}
	return out
}

// RSFFuse implements Relative Score Fusion: each input list's scores are
// independently min-max normalized to [0, 1], multiplied by that list's
// weight (defaulting to 1.0 if weights is shorter than lists), then summed
// per note. Metadata is kept from the first list a note appears in. The
// summed score is clamped to 1.0, results sorted descending, and truncated
// to limit (limit <= 0 means unlimited).
func RSFFuse(lists [][]RankedHit, scores [][]float64, weights []float64, limit int) []types.EnhancedSearchHit {
	accum := make(map[uuid.UUID]float64)
	meta := make(map[uuid.UUID]RankedHit)
	order := make([]uuid.UUID, 0)

	for i, list := range lists {
		normalized := normalizeMinMax(scores[i])
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		for idx, hit := range list {
			if _, seen := accum[hit.NoteID]; !seen {
				order = append(order, hit.NoteID)
				meta[hit.NoteID] = hit
			}
			accum[hit.NoteID] += normalized[idx] * w
		}
	}

	out := make([]types.EnhancedSearchHit, 0, len(order))
	for _, id := range order {
		m := meta[id]
		score := accum[id]
		if score > 1.0 {
			score = 1.0
		}
		out = append(out, types.EnhancedSearchHit{
			NoteID:  id,
			Title:   m.Title,
			Snippet: m.Snippet,
			Score:   score,
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
