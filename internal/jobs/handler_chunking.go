package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"matric-memory/internal/types"
)

// ChunkingPayload is the payload.data shape for a JobChunking job: the note
// whose content_original should be split if it exceeds the chunker's token
// budget.
type ChunkingPayload struct {
	NoteID uuid.UUID `json:"note_id"`
}

// ChunkingHandler splits an over-budget note into a chunk_index-0 parent
// (the original note, in place) plus N-1 sibling notes, linked by a shared
// ChunkMetadata.ChunkSequence. Chunked notes skip AI revision and title
// generation for chunk_index > 0: those jobs read content_original
// directly and a split document has no single title to regenerate.
type ChunkingHandler struct {
	chunker *SemanticChunker
	limit   int
}

func NewChunkingHandler(chunker *SemanticChunker, tokenLimit int) *ChunkingHandler {
	return &ChunkingHandler{chunker: chunker, limit: tokenLimit}
}

func (h *ChunkingHandler) Handle(ctx context.Context, jc *JobContext) types.Outcome {
	var payload ChunkingPayload
	if err := json.Unmarshal(jc.Job.Payload, &payload); err != nil {
		return types.Failure(fmt.Sprintf("chunking: decode payload: %v", err))
	}

	var result json.RawMessage
	err := jc.SchemaCtx.Begin(ctx, func(tx pgx.Tx) error {
		var content, format string
		if err := tx.QueryRow(ctx,
			`SELECT content_original, format FROM notes WHERE id = $1`, payload.NoteID,
		).Scan(&content, &format); err != nil {
			return err
		}

		if !h.chunker.ShouldChunk(content, h.limit) {
			result, _ = json.Marshal(map[string]any{"note_id": payload.NoteID, "chunked": false})
			return nil
		}

		pieces := h.chunker.Chunk(content)
		if len(pieces) <= 1 {
			result, _ = json.Marshal(map[string]any{"note_id": payload.NoteID, "chunked": false})
			return nil
		}

		ids := make([]uuid.UUID, len(pieces))
		ids[0] = payload.NoteID
		for i := 1; i < len(pieces); i++ {
			ids[i] = uuid.New()
		}

		if _, err := tx.Exec(ctx, `
			UPDATE notes
			SET content_original = $2,
			    chunk_parent_note_id = $1,
			    chunk_index = 0,
			    chunk_total = $3,
			    chunk_strategy = 'semantic',
			    chunk_sequence = $4,
			    updated_at = now()
			WHERE id = $1
		`, payload.NoteID, pieces[0].Text, len(pieces), uuidSlice(ids)); err != nil {
			return err
		}

		for i := 1; i < len(pieces); i++ {
			if _, err := tx.Exec(ctx, `
				INSERT INTO notes (
					id, content_original, format, chunk_parent_note_id,
					chunk_index, chunk_total, chunk_strategy, created_at, updated_at
				)
				VALUES ($1, $2, $3, $4, $5, $6, 'semantic', now(), now())
			`, ids[i], pieces[i].Text, format, payload.NoteID, i, len(pieces)); err != nil {
				return err
			}
		}

		result, _ = json.Marshal(map[string]any{
			"note_id":     payload.NoteID,
			"chunked":     true,
			"chunk_count": len(pieces),
			"chunk_ids":   ids,
		})
		return nil
	})
	if err != nil {
		return types.Retry(fmt.Sprintf("chunking: %v", err))
	}
	return types.Success(result)
}

func uuidSlice(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
