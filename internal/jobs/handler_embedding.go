package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"matric-memory/internal/inference"
	"matric-memory/internal/types"
)

// EmbeddingPayload is the payload.data shape for a JobEmbedding job: embed
// one note under one named EmbeddingConfig.
type EmbeddingPayload struct {
	NoteID            uuid.UUID `json:"note_id"`
	EmbeddingConfigID uuid.UUID `json:"embedding_config_id"`
	ChunkID           *uuid.UUID `json:"chunk_id,omitempty"`
}

// EmbeddingHandler generates and stores a note's embedding under a
// configured provider, applying MRL truncation when the config calls for
// it.
type EmbeddingHandler struct {
	backends *inference.Registry
}

func NewEmbeddingHandler(backends *inference.Registry) *EmbeddingHandler {
	return &EmbeddingHandler{backends: backends}
}

func (h *EmbeddingHandler) Handle(ctx context.Context, jc *JobContext) types.Outcome {
	var payload EmbeddingPayload
	if err := json.Unmarshal(jc.Job.Payload, &payload); err != nil {
		return types.Failure(fmt.Sprintf("embedding: decode payload: %v", err))
	}

	var cfg types.EmbeddingConfig
	var truncateDim *int
	err := jc.SchemaCtx.Begin(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			SELECT model, dimension, provider, supports_mrl, default_truncate_dim
			FROM embedding_configs WHERE id = $1
		`, payload.EmbeddingConfigID).Scan(
			&cfg.Model, &cfg.Dimension, &cfg.Provider, &cfg.SupportsMRL, &truncateDim,
		); err != nil {
			return err
		}

		var text string
		if err := tx.QueryRow(ctx,
			`SELECT coalesce(content_revised, content_original) FROM notes WHERE id = $1`,
			payload.NoteID,
		).Scan(&text); err != nil {
			return err
		}

		embedder, err := h.backends.Embedder(string(cfg.Provider))
		if err != nil {
			return err
		}

		vectors, err := embedder.Embed(ctx, []string{text}, cfg)
		if err != nil {
			return err
		}
		if len(vectors) != 1 {
			return fmt.Errorf("embedding: expected 1 vector, got %d", len(vectors))
		}
		vec := vectors[0]
		if cfg.SupportsMRL && truncateDim != nil && *truncateDim > 0 && *truncateDim < len(vec) {
			vec = vec[:*truncateDim]
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO embeddings (note_id, chunk_id, embedding_config_id, vector, created_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (note_id, chunk_id, embedding_config_id)
			DO UPDATE SET vector = EXCLUDED.vector, created_at = now()
		`, payload.NoteID, payload.ChunkID, payload.EmbeddingConfigID, pgvector.NewVector(vec))
		return err
	})
	if err != nil {
		return types.Retry(fmt.Sprintf("embedding: %v", err))
	}

	result, _ := json.Marshal(map[string]any{"note_id": payload.NoteID})
	return types.Success(result)
}
