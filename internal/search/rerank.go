package search

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"matric-memory/internal/schemactx"
	"matric-memory/internal/types"
)

// rerankColBERT re-orders the top topK hits by MaxSim late-interaction
// score against per-token embeddings, leaving the tail (beyond topK) in its
// fused-score order. Requires req.QueryVector's source query to also have a
// per-token embedding sequence computed by the caller's embedding pipeline;
// this stage fetches it from query_token_embeddings keyed by the query text,
// and the documents' sequences from token_embeddings keyed by note id.
func (e *Engine) rerankColBERT(ctx context.Context, sc *schemactx.Context, req types.SearchRequest, hits []types.EnhancedSearchHit, topK int) ([]types.EnhancedSearchHit, error) {
	if len(hits) == 0 {
		return hits, nil
	}
	if topK > len(hits) {
		topK = len(hits)
	}
	head := hits[:topK]
	tail := hits[topK:]

	ids := make([]uuid.UUID, 0, len(head))
	for _, h := range head {
		ids = append(ids, h.NoteID)
	}

	var maxSim map[uuid.UUID]float64
	err := sc.Begin(ctx, func(tx pgx.Tx) error {
		queryTokens, err := fetchQueryTokenEmbeddings(ctx, tx, req.QueryText)
		if err != nil {
			return err
		}
		if len(queryTokens) == 0 {
			return fmt.Errorf("no per-token query embedding available")
		}

		docTokens, err := fetchDocTokenEmbeddings(ctx, tx, ids)
		if err != nil {
			return err
		}

		maxSim = make(map[uuid.UUID]float64, len(ids))
		for _, id := range ids {
			maxSim[id] = maxSimScore(queryTokens, docTokens[id])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reranked := make([]types.EnhancedSearchHit, len(head))
	copy(reranked, head)
	sort.SliceStable(reranked, func(i, j int) bool {
		return maxSim[reranked[i].NoteID] > maxSim[reranked[j].NoteID]
	})
	for i := range reranked {
		reranked[i].Score = maxSim[reranked[i].NoteID]
	}

	return append(reranked, tail...), nil
}

// maxSimScore computes Σ_q max_d cos(q, d), the ColBERT late-interaction
// similarity between a query's token embeddings and a document's.
func maxSimScore(query, doc [][]float32) float64 {
	if len(doc) == 0 {
		return 0
	}
	var total float64
	for _, q := range query {
		best := math.Inf(-1)
		for _, d := range doc {
			if sim := cosineSimilarity(q, d); sim > best {
				best = sim
			}
		}
		if !math.IsInf(best, -1) {
			total += best
		}
	}
	return total
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func fetchQueryTokenEmbeddings(ctx context.Context, tx pgx.Tx, queryText string) ([][]float32, error) {
	rows, err := tx.Query(ctx, `
		SELECT vector FROM query_token_embeddings
		WHERE query_text = $1
		ORDER BY token_position`, queryText)
	if err != nil {
		return nil, fmt.Errorf("fetch query token embeddings: %w", err)
	}
	defer rows.Close()

	var out [][]float32
	for rows.Next() {
		var v pgvector.Vector
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan query token embedding: %w", err)
		}
		out = append(out, v.Slice())
	}
	return out, rows.Err()
}

func fetchDocTokenEmbeddings(ctx context.Context, tx pgx.Tx, noteIDs []uuid.UUID) (map[uuid.UUID][][]float32, error) {
	rows, err := tx.Query(ctx, `
		SELECT note_id, vector FROM token_embeddings
		WHERE note_id = ANY($1::uuid[])
		ORDER BY note_id, token_position`, noteIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch doc token embeddings: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][][]float32)
	for rows.Next() {
		var id uuid.UUID
		var v pgvector.Vector
		if err := rows.Scan(&id, &v); err != nil {
			return nil, fmt.Errorf("scan doc token embedding: %w", err)
		}
		out[id] = append(out[id], v.Slice())
	}
	return out, rows.Err()
}
