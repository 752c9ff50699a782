package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"matric-memory/internal/blobstore"
	"matric-memory/internal/types"
)

// FileExtractionPayload is the payload.data shape for a JobFileExtraction
// job: an attachment's bytes are pulled from the blob store, run through
// ExtractionRegistry, and written back onto the owning note so downstream
// chunking/embedding jobs have plain text to work with.
type FileExtractionPayload struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
}

// FileExtractionHandler extracts text from an attachment and stores it as
// the note's content, then enqueues a chunking job for the same note.
type FileExtractionHandler struct {
	blobs      *blobstore.Store
	extractors *ExtractionRegistry
	queue      *Queue
}

func NewFileExtractionHandler(blobs *blobstore.Store, extractors *ExtractionRegistry, queue *Queue) *FileExtractionHandler {
	return &FileExtractionHandler{blobs: blobs, extractors: extractors, queue: queue}
}

func (h *FileExtractionHandler) Handle(ctx context.Context, jc *JobContext) types.Outcome {
	var payload FileExtractionPayload
	if err := json.Unmarshal(jc.Job.Payload, &payload); err != nil {
		return types.Failure(fmt.Sprintf("file_extraction: decode payload: %v", err))
	}

	content, attachment, err := h.blobs.Read(ctx, payload.AttachmentID)
	if err != nil {
		return types.Failure(fmt.Sprintf("file_extraction: read attachment: %v", err))
	}

	adapter, err := h.extractors.Resolve(attachment.ContentType)
	if err != nil {
		return types.Failure(fmt.Sprintf("file_extraction: %v", err))
	}

	text, err := adapter.Extract(content)
	if err != nil {
		return types.Retry(fmt.Sprintf("file_extraction: extract: %v", err))
	}

	err = jc.SchemaCtx.Begin(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE notes SET content_original = $2, updated_at = now() WHERE id = $1`,
			attachment.NoteID, text)
		return err
	})
	if err != nil {
		return types.Failure(fmt.Sprintf("file_extraction: store extracted text: %v", err))
	}

	chunkPayload, _ := json.Marshal(map[string]uuid.UUID{"note_id": attachment.NoteID})
	if _, err := h.queue.Enqueue(ctx, EnqueueParams{
		Type:      types.JobChunking,
		Payload:   chunkPayload,
		SchemaTag: jc.Job.SchemaTag,
		NoteID:    &attachment.NoteID,
	}); err != nil {
		// The extraction itself succeeded; a failure to chain the follow-up
		// job is reported but does not roll back the completed work.
		return types.Success(json.RawMessage(fmt.Sprintf(
			`{"note_id":%q,"chars_extracted":%d,"chunking_enqueue_error":%q}`,
			attachment.NoteID, len(text), err.Error())))
	}

	result, _ := json.Marshal(map[string]any{
		"note_id":         attachment.NoteID,
		"chars_extracted": len(text),
	})
	return types.Success(result)
}
