//go:build integration

package jobs_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"matric-memory/internal/jobs"
	"matric-memory/internal/types"
)

const jobsSchema = `
CREATE TABLE public.jobs (
	id               uuid PRIMARY KEY,
	type             text NOT NULL,
	priority         int NOT NULL DEFAULT 0,
	status           text NOT NULL,
	payload          jsonb NOT NULL,
	schema_tag       text NOT NULL DEFAULT 'public',
	note_id          uuid,
	retry_count      int NOT NULL DEFAULT 0,
	max_retries      int NOT NULL DEFAULT 3,
	result           jsonb,
	error            text,
	created_at       timestamptz NOT NULL,
	scheduled_at     timestamptz,
	started_at       timestamptz,
	completed_at     timestamptz,
	progress_percent int NOT NULL DEFAULT 0,
	progress_message text NOT NULL DEFAULT ''
);

CREATE TABLE public.system_config (
	key        text PRIMARY KEY,
	value      jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);
`

func startJobsPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("matric_memory_jobs_test"),
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

	_, err = pool.Exec(ctx, jobsSchema)
	require.NoError(t, err)

	return pool
}

// TestConcurrentClaimsNeverDoubleAssignOneJob exercises the FOR UPDATE SKIP
// LOCKED contract: N workers racing Claim against a single pending job must
// see exactly one winner.
func TestConcurrentClaimsNeverDoubleAssignOneJob(t *testing.T) {
	pool := startJobsPostgres(t)
	ctx := context.Background()
	queue := jobs.NewQueue(pool, jobs.NewPauseState(pool))

	job, err := queue.Enqueue(ctx, jobs.EnqueueParams{
		Type:    types.JobChunking,
		Payload: json.RawMessage(`{"note_id":"00000000-0000-0000-0000-000000000001"}`),
	})
	require.NoError(t, err)
	require.Equal(t, types.StatusPending, job.Status)

	const workers = 8
	var wg sync.WaitGroup
	claimed := make([]*types.Job, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			got, err := queue.Claim(ctx)
			require.NoError(t, err)
			claimed[i] = got
		}(i)
	}
	wg.Wait()

	var winners int
	for _, c := range claimed {
		if c != nil {
			winners++
			require.Equal(t, job.ID, c.ID)
		}
	}
	require.Equal(t, 1, winners)
}

// TestClaimSkipsPausedArchive confirms a job tagged to a paused archive is
// never surfaced, while an untagged (public) job still is.
func TestClaimSkipsPausedArchive(t *testing.T) {
	pool := startJobsPostgres(t)
	ctx := context.Background()
	pause := jobs.NewPauseState(pool)
	require.NoError(t, pause.SetArchivePaused(ctx, "tenant_paused", true))

	queue := jobs.NewQueue(pool, pause)

	_, err := queue.Enqueue(ctx, jobs.EnqueueParams{
		Type:      types.JobEmbedding,
		SchemaTag: "tenant_paused",
	})
	require.NoError(t, err)

	active, err := queue.Enqueue(ctx, jobs.EnqueueParams{Type: types.JobEmbedding})
	require.NoError(t, err)

	got, err := queue.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, active.ID, got.ID)

	second, err := queue.Claim(ctx)
	require.NoError(t, err)
	require.Nil(t, second)
}

// TestApplyOutcomeRetryExhaustsIntoFailed drives a job through Retry
// outcomes until max_retries is hit, confirming the final transition is
// 'failed' rather than another reschedule.
func TestApplyOutcomeRetryExhaustsIntoFailed(t *testing.T) {
	pool := startJobsPostgres(t)
	ctx := context.Background()
	queue := jobs.NewQueue(pool, jobs.NewPauseState(pool))

	job, err := queue.Enqueue(ctx, jobs.EnqueueParams{Type: types.JobEmbedding, MaxRetries: 2})
	require.NoError(t, err)

	claimed, err := queue.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	require.NoError(t, queue.ApplyOutcome(ctx, claimed, types.Retry("transient")))

	// Simulate the worker re-claiming the rescheduled job: a fresh Claim
	// would return retry_count=1 from the DB; ApplyOutcome itself only
	// reads the in-memory Job it's given, so reflect that here directly
	// rather than waiting out the real backoff delay.
	claimed.RetryCount = 1
	require.NoError(t, queue.ApplyOutcome(ctx, claimed, types.Retry("transient again")))

	// max_retries=2 allows that second retry; the next Retry outcome, at
	// retry_count=2, has no retries left.
	claimed.RetryCount = 2
	require.NoError(t, queue.ApplyOutcome(ctx, claimed, types.Retry("transient a third time")))

	var status string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT status FROM public.jobs WHERE id = $1`, job.ID).Scan(&status))
	require.Equal(t, string(types.StatusFailed), status)
}
