package search

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"matric-memory/internal/schemactx"
	"matric-memory/internal/search/fusion"
	"matric-memory/internal/types"
)

// semanticSearch runs the vector-similarity retrieval leg: pgvector cosine
// distance against the embedding rows for req.EmbeddingSetID (or against
// the rows of every embedding set when unset), with ef_search tuned adaptively from
// corpus size before the SELECT runs.
func (e *Engine) semanticSearch(ctx context.Context, sc *schemactx.Context, req types.SearchRequest) ([]fusion.RankedHit, []float64, error) {
	queryVec := pgvector.NewVector(req.QueryVector)

	args := []interface{}{queryVec}
	next := 2
	var setFilter string
	if req.EmbeddingSetID != nil {
		setFilter = fmt.Sprintf("AND e.embedding_config_id = $%d", next)
		args = append(args, *req.EmbeddingSetID)
		next++
	}
	where, filterArgs := lowerStrictFilter(req.StrictFilter, next)
	args = append(args, filterArgs...)

	var hits []fusion.RankedHit
	var scores []float64
	err := sc.Begin(ctx, func(tx pgx.Tx) error {
		corpusSize, err := e.corpusSize(ctx, tx)
		if err != nil {
			return err
		}
		ef := fusion.ComputeEf(e.fusionConfig.RecallTarget, corpusSize, e.hnswConfig)
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", ef)); err != nil {
			return fmt.Errorf("set hnsw.ef_search: %w", err)
		}

		query := fmt.Sprintf(`
			SELECT n.id, n.content_original, n.content_revised,
			       1 - (e.vector <=> $1) AS similarity,
			       coalesce(array_agg(DISTINCT t.name) FILTER (WHERE t.name IS NOT NULL), '{}') AS tags
			FROM embeddings e
			JOIN notes n ON n.id = e.note_id
			LEFT JOIN note_tags nt ON nt.note_id = n.id
			LEFT JOIN tags t ON t.id = nt.tag_id
			WHERE n.deleted_at IS NULL
			  %s
			  %s
			GROUP BY n.id, e.vector
			ORDER BY e.vector <=> $1
			LIMIT 500`, setFilter, where)

		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("semantic query: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id uuid.UUID
			var original, revised string
			var similarity float64
			var tags []string
			if err := rows.Scan(&id, &original, &revised, &similarity, &tags); err != nil {
				return fmt.Errorf("semantic scan: %w", err)
			}
			title := original
			if len(title) > 120 {
				title = title[:120]
			}
			snippet := revised
			if snippet == "" {
				snippet = original
			}
			if len(snippet) > 280 {
				snippet = snippet[:280]
			}
			hits = append(hits, fusion.RankedHit{NoteID: id, Title: title, Snippet: snippet, Tags: tags, Score: similarity})
			scores = append(scores, similarity)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, nil, err
	}
	return hits, scores, nil
}

// corpusSize estimates the embedding corpus size driving the adaptive
// ef_search computation. An approximate row count (pg_class reltuples) is
// cheap and is what the tuning formula's scale factor is designed to
// tolerate; an exact count would not change the bucket it falls into for
// all but pathological corpus sizes.
func (e *Engine) corpusSize(ctx context.Context, tx pgx.Tx) (int, error) {
	var estimate float64
	err := tx.QueryRow(ctx, `SELECT reltuples FROM pg_class WHERE relname = 'embeddings'`).Scan(&estimate)
	if err != nil {
		var count int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM embeddings`).Scan(&count); err != nil {
			return 0, fmt.Errorf("estimate corpus size: %w", err)
		}
		return count, nil
	}
	if estimate < 0 {
		estimate = 0
	}
	return int(estimate), nil
}
