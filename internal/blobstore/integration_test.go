//go:build integration

package blobstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"matric-memory/internal/blobstore"
)

// blobSchema installs blobs/attachments plus the refcount trigger that
// Store.Delete relies on: inserting an attachment bumps reference_count,
// deleting one decrements it and drops the blobs row once it hits zero.
const blobSchema = `
CREATE TABLE public.blobs (
	id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	sha256          text UNIQUE NOT NULL,
	storage_path    text NOT NULL,
	byte_size       bigint NOT NULL,
	reference_count int NOT NULL DEFAULT 0
);

CREATE TABLE public.attachments (
	id           uuid PRIMARY KEY,
	note_id      uuid NOT NULL,
	blob_id      uuid NOT NULL REFERENCES public.blobs(id),
	filename     text NOT NULL,
	content_type text NOT NULL,
	created_at   timestamptz NOT NULL DEFAULT now()
);

CREATE OR REPLACE FUNCTION public.blobs_refcount_insert() RETURNS trigger AS $$
BEGIN
	UPDATE public.blobs SET reference_count = reference_count + 1 WHERE id = NEW.blob_id;
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;

CREATE OR REPLACE FUNCTION public.blobs_refcount_delete() RETURNS trigger AS $$
BEGIN
	UPDATE public.blobs SET reference_count = reference_count - 1 WHERE id = OLD.blob_id;
	DELETE FROM public.blobs WHERE id = OLD.blob_id AND reference_count <= 0;
	RETURN OLD;
END;
$$ LANGUAGE plpgsql;

CREATE TRIGGER attachments_refcount_insert
	AFTER INSERT ON public.attachments
	FOR EACH ROW EXECUTE FUNCTION public.blobs_refcount_insert();

CREATE TRIGGER attachments_refcount_delete
	AFTER DELETE ON public.attachments
	FOR EACH ROW EXECUTE FUNCTION public.blobs_refcount_delete();
`

func startBlobPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("matric_memory_blob_test"),
		postgres.WithUsername("matric"),
		postgres.WithPassword("matric"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, blobSchema)
	require.NoError(t, err)

	return pool
}

// TestDeleteOfLastReferenceUnlinksFile regression-tests the ordering fix in
// Store.Delete: the storage path must be captured before the attachment
// delete fires the refcount-to-zero trigger, or the follow-up lookup finds
// nothing and the physical file is orphaned forever.
func TestDeleteOfLastReferenceUnlinksFile(t *testing.T) {
	pool := startBlobPostgres(t)
	ctx := context.Background()
	root := t.TempDir()
	store := blobstore.New(pool, root)

	noteID := uuid.New()
	attachment, err := store.StoreFile(ctx, noteID, "note.txt", "text/plain", []byte("hello world"))
	require.NoError(t, err)

	content, _, err := store.Read(ctx, attachment.ID)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(content))

	var path string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT storage_path FROM public.blobs WHERE id = $1`, attachment.BlobID).Scan(&path))
	_, statErr := os.Stat(path)
	require.NoError(t, statErr, "blob file must exist while referenced")

	require.NoError(t, store.Delete(ctx, attachment.ID))

	var rowCount int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM public.blobs WHERE id = $1`, attachment.BlobID).Scan(&rowCount))
	require.Equal(t, 0, rowCount, "blobs row must be gone once refcount hits zero")

	_, statErr = os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "physical file must not outlive its last reference")
}

// TestDeleteKeepsFileWhileOtherReferencesRemain confirms the dedup path: a
// second attachment over identical bytes keeps the blob (and file) alive
// after the first attachment is deleted.
func TestDeleteKeepsFileWhileOtherReferencesRemain(t *testing.T) {
	pool := startBlobPostgres(t)
	ctx := context.Background()
	root := t.TempDir()
	store := blobstore.New(pool, root)

	noteID := uuid.New()
	a1, err := store.StoreFile(ctx, noteID, "a.txt", "text/plain", []byte("shared bytes"))
	require.NoError(t, err)
	a2, err := store.StoreFile(ctx, noteID, "b.txt", "text/plain", []byte("shared bytes"))
	require.NoError(t, err)
	require.Equal(t, a1.BlobID, a2.BlobID)

	require.NoError(t, store.Delete(ctx, a1.ID))

	var refCount int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT reference_count FROM public.blobs WHERE id = $1`, a1.BlobID).Scan(&refCount))
	require.Equal(t, 1, refCount)

	content, _, err := store.Read(ctx, a2.ID)
	require.NoError(t, err)
	require.Equal(t, "shared bytes", string(content))
}
