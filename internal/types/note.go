// Package types holds the domain model shared across repositories, the
// search engine, and the job pipeline: notes, tags, archives, attachments,
// embeddings, jobs, and the value objects that parameterize them.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Note is the base content unit: a piece of original text plus optional
// AI-revised text, identified by a time-ordered UUIDv7.
type Note struct {
	ID              uuid.UUID
	ContentOriginal string
	ContentRevised  string
	Format          string
	Source          string
	CollectionID    *uuid.UUID
	DocumentTypeID  *uuid.UUID
	ChunkMetadata   *ChunkMetadata
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// HasRevision reports whether AI revision has produced text that differs
// from the immutable original.
func (n *Note) HasRevision() bool {
	return n.ContentOriginal != n.ContentRevised
}

// IsDeleted reports whether the note is soft-deleted and therefore hidden
// from search and listing.
func (n *Note) IsDeleted() bool {
	return n.DeletedAt != nil
}

// ChunkMetadata links a chunk note to its siblings. Every chunk (including
// the parent, chunk_index 0) carries ParentNoteID/ChunkIndex/TotalChunks/
// ChunkingStrategy; only the parent additionally carries ChunkSequence.
type ChunkMetadata struct {
	ParentNoteID     uuid.UUID   `json:"parent_note_id"`
	ChunkIndex       int         `json:"chunk_index"`
	TotalChunks      int         `json:"total_chunks"`
	ChunkingStrategy string      `json:"chunking_strategy"`
	ChunkSequence    []uuid.UUID `json:"chunk_sequence,omitempty"`
}

// IsParentChunk reports whether this metadata belongs to chunk index 0,
// the note holding the authoritative ChunkSequence.
func (c *ChunkMetadata) IsParentChunk() bool {
	return c.ChunkIndex == 0
}

// ChunkLinks derives the doubly-linked sibling view from a parent's
// ChunkSequence: prev/next IDs for the chunk at index i.
func ChunkLinks(sequence []uuid.UUID, index int) (prev, next *uuid.UUID) {
	if index > 0 && index-1 < len(sequence) {
		id := sequence[index-1]
		prev = &id
	}
	if index+1 < len(sequence) {
		id := sequence[index+1]
		next = &id
	}
	return prev, next
}

// Tag is a free-form label attached to notes, many-to-many, with a source
// subsystem recorded per attachment (e.g. "manual", "inline_hashtag",
// "concept_tagging").
type Tag struct {
	ID        uuid.UUID
	Name      string // case-insensitive unique, stored lowercase
	NoteCount int
}

// NoteTag is the join row recording which subsystem attached a tag.
type NoteTag struct {
	NoteID uuid.UUID
	TagID  uuid.UUID
	Source string
}
