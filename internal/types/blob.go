package types

import (
	"time"

	"github.com/google/uuid"
)

// Blob is a content-addressed, reference-counted byte sequence. A physical
// file at StoragePath exists iff ReferenceCount >= 1.
type Blob struct {
	ID             uuid.UUID
	SHA256         string
	Size           int64
	StoragePath    string
	ReferenceCount int
	CreatedAt      time.Time
}

// Attachment binds a note to a blob under a filename/content-type. An
// attachment row references exactly one blob; it never owns blob lifecycle
// directly — database triggers on this table maintain Blob.ReferenceCount.
type Attachment struct {
	ID          uuid.UUID
	NoteID      uuid.UUID
	BlobID      uuid.UUID
	Filename    string
	ContentType string
	CreatedAt   time.Time
}
