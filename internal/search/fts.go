package search

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"matric-memory/internal/schemactx"
	"matric-memory/internal/search/fusion"
	"matric-memory/internal/types"
)

// ftsTextSearchConfig names the PostgreSQL text-search configuration used
// by every archive's tsvector index.
const ftsTextSearchConfig = "public.matric_english"

// ftsSearch runs the full-text retrieval leg: websearch_to_tsquery against
// the note's tsvector column, joined through the strict-filter semi/anti
// joins, ordered by ts_rank descending.
func (e *Engine) ftsSearch(ctx context.Context, sc *schemactx.Context, req types.SearchRequest) ([]fusion.RankedHit, []float64, error) {
	where, args := lowerStrictFilter(req.StrictFilter, 2)
	args = append([]interface{}{req.QueryText}, args...)

	query := fmt.Sprintf(`
		SELECT n.id, n.content_original, n.content_revised,
		       ts_rank(n.tsv, websearch_to_tsquery('%s', $1)) AS rank,
		       ts_headline('%s', coalesce(n.content_revised, n.content_original),
		                   websearch_to_tsquery('%s', $1)) AS snippet,
		       coalesce(array_agg(DISTINCT t.name) FILTER (WHERE t.name IS NOT NULL), '{}') AS tags
		FROM notes n
		LEFT JOIN note_tags nt ON nt.note_id = n.id
		LEFT JOIN tags t ON t.id = nt.tag_id
		WHERE n.deleted_at IS NULL
		  AND n.tsv @@ websearch_to_tsquery('%s', $1)
		  %s
		GROUP BY n.id, rank, snippet
		ORDER BY rank DESC
		LIMIT 500`, ftsTextSearchConfig, ftsTextSearchConfig, ftsTextSearchConfig, ftsTextSearchConfig, where)

	var hits []fusion.RankedHit
	var scores []float64
	err := sc.Begin(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("fts query: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id uuid.UUID
			var original, revised string
			var rank float64
			var snippet string
			var tags []string
			if err := rows.Scan(&id, &original, &revised, &rank, &snippet, &tags); err != nil {
				return fmt.Errorf("fts scan: %w", err)
			}
			title := original
			if len(title) > 120 {
				title = title[:120]
			}
			hits = append(hits, fusion.RankedHit{NoteID: id, Title: title, Snippet: snippet, Tags: tags, Score: rank})
			scores = append(scores, rank)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, nil, err
	}
	return hits, scores, nil
}
