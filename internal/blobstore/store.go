// Package blobstore implements a content-addressed blob store: bytes are
// addressed by SHA-256, deduplicated across attachments, and
// reference-counted by database triggers rather than application code.
package blobstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"matric-memory/internal/apierr"
	"matric-memory/internal/types"
)

// Store writes blob bytes under root, keyed by a two-level digest prefix
// (e.g. root/ab/cd/abcd...), and tracks blob/attachment rows in Postgres.
type Store struct {
	pool *pgxpool.Pool
	root string
}

func New(pool *pgxpool.Pool, root string) *Store {
	return &Store{pool: pool, root: root}
}

// digestPath derives a two-level directory prefix from the digest,
// e.g. ab/cd/abcd…, so no directory accumulates too many entries.
func digestPath(root, digestHex string) string {
	return filepath.Join(root, digestHex[0:2], digestHex[2:4], digestHex)
}

// StoreFile computes the SHA-256 of content, dedupes against an existing
// blob row, and writes a new attachment referencing it. The blob row and
// physical file are created only on first sight of that digest; the
// attachment INSERT triggers the refcount increment.
func (s *Store) StoreFile(ctx context.Context, noteID uuid.UUID, filename, contentType string, content []byte) (*types.Attachment, error) {
	sum := sha256.Sum256(content)
	digestHex := hex.EncodeToString(sum[:])

	var attachment types.Attachment
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var blobID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM public.blobs WHERE sha256 = $1`, digestHex).Scan(&blobID)
		switch {
		case err == nil:
			// Existing blob; nothing to write to disk.
		case errors.Is(err, pgx.ErrNoRows):
			storagePath := digestPath(s.root, digestHex)
			if err := tx.QueryRow(ctx, `
				INSERT INTO public.blobs (sha256, storage_path, byte_size, reference_count)
				VALUES ($1, $2, $3, 0)
				ON CONFLICT (sha256) DO UPDATE SET sha256 = EXCLUDED.sha256
				RETURNING id
			`, digestHex, storagePath, len(content)).Scan(&blobID); err != nil {
				return apierr.Wrap(apierr.KindDatabase, "insert blob row", err)
			}
			if err := writeFileIdempotent(storagePath, content); err != nil {
				return apierr.Wrap(apierr.KindIO, "write blob file", err)
			}
		default:
			return apierr.Wrap(apierr.KindDatabase, "look up blob by digest", err)
		}

		attachment.ID = uuid.New()
		attachment.NoteID = noteID
		attachment.BlobID = blobID
		attachment.Filename = filename
		attachment.ContentType = contentType

		if _, err := tx.Exec(ctx, `
			INSERT INTO public.attachments (id, note_id, blob_id, filename, content_type)
			VALUES ($1, $2, $3, $4, $5)
		`, attachment.ID, attachment.NoteID, attachment.BlobID, attachment.Filename, attachment.ContentType); err != nil {
			return apierr.Wrap(apierr.KindDatabase, "insert attachment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// Read fetches an attachment's bytes by ID, joining through to its blob's
// storage path. Used by handlers (file extraction, re-embedding) that need
// the original content rather than just its metadata.
func (s *Store) Read(ctx context.Context, attachmentID uuid.UUID) ([]byte, *types.Attachment, error) {
	var attachment types.Attachment
	var storagePath string
	err := s.pool.QueryRow(ctx, `
		SELECT a.id, a.note_id, a.blob_id, a.filename, a.content_type, a.created_at, b.storage_path
		FROM public.attachments a
		JOIN public.blobs b ON b.id = a.blob_id
		WHERE a.id = $1
	`, attachmentID).Scan(
		&attachment.ID, &attachment.NoteID, &attachment.BlobID,
		&attachment.Filename, &attachment.ContentType, &attachment.CreatedAt,
		&storagePath,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apierr.Wrap(apierr.KindNotFound, "attachment not found", err)
		}
		return nil, nil, apierr.Wrap(apierr.KindDatabase, "look up attachment", err)
	}

	content, err := os.ReadFile(storagePath)
	if err != nil {
		return nil, nil, apierr.Wrap(apierr.KindIO, "read blob file", err)
	}
	return content, &attachment, nil
}

// Delete removes an attachment. The refcount-to-zero trigger deletes the
// blob row within the same transaction; physical-file unlink happens after
// commit, deliberately crossing the transaction boundary —
// a failed unlink only orphans bytes on disk, recoverable by a sweep, and
// must never roll back an otherwise-successful delete.
func (s *Store) Delete(ctx context.Context, attachmentID uuid.UUID) error {
	var orphanedPath string

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var blobID uuid.UUID
		if err := tx.QueryRow(ctx,
			`SELECT blob_id FROM public.attachments WHERE id = $1`, attachmentID,
		).Scan(&blobID); err != nil {
			return apierr.Wrap(apierr.KindNotFound, "attachment not found", err)
		}

		// Capture the storage path and refcount before the delete: the
		// refcount-to-zero trigger removes the blobs row in the same
		// statement that drops the attachment, so this must run first or
		// the path is gone by the time we'd look it up.
		var path string
		var refCount int
		if err := tx.QueryRow(ctx,
			`SELECT storage_path, reference_count FROM public.blobs WHERE id = $1`, blobID,
		).Scan(&path, &refCount); err != nil {
			return apierr.Wrap(apierr.KindDatabase, "look up blob before delete", err)
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM public.attachments WHERE id = $1`, attachmentID,
		); err != nil {
			return apierr.Wrap(apierr.KindDatabase, "delete attachment", err)
		}

		if refCount <= 1 {
			orphanedPath = path
		}
		return nil
	})
	if err != nil {
		return err
	}

	if orphanedPath != "" {
		if err := os.Remove(orphanedPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("unlink orphaned blob file %s (blob row already removed, will be reclaimed by sweep): %w", orphanedPath, err)
		}
	}
	return nil
}

// writeFileIdempotent writes content at path, creating parent directories
// as needed. Two concurrent writers of identical content race harmlessly:
// the write is a same-bytes overwrite keyed by content digest.
func writeFileIdempotent(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}
