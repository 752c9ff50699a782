package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"matric-memory/internal/apierr"
	"matric-memory/internal/types"
)

// Observer is notified after ApplyOutcome commits a terminal status
// transition, for side effects like webhook delivery that must not block
// (or be blocked by) the status write itself.
type Observer interface {
	OnJobCompleted(ctx context.Context, job *types.Job, result json.RawMessage)
	OnJobFailed(ctx context.Context, job *types.Job, errMsg string)
}

// Queue claims and updates job rows in public.jobs. Claim respects the
// pause state so a paused archive or a globally paused pipeline never
// surfaces work to a worker.
type Queue struct {
	pool      *pgxpool.Pool
	pause     *PauseState
	observers []Observer
}

func NewQueue(pool *pgxpool.Pool, pause *PauseState) *Queue {
	return &Queue{pool: pool, pause: pause}
}

// AddObserver registers an Observer to be notified of every subsequent
// terminal transition. Not safe to call concurrently with ApplyOutcome.
func (q *Queue) AddObserver(o Observer) {
	q.observers = append(q.observers, o)
}

func (q *Queue) notifyCompleted(ctx context.Context, job *types.Job, result json.RawMessage) {
	for _, o := range q.observers {
		o.OnJobCompleted(ctx, job, result)
	}
}

func (q *Queue) notifyFailed(ctx context.Context, job *types.Job, errMsg string) {
	for _, o := range q.observers {
		o.OnJobFailed(ctx, job, errMsg)
	}
}

// EnqueueParams describes a new job row. SchemaTag defaults to "public"
// when empty; Priority defaults to 0; MaxRetries defaults to 3.
type EnqueueParams struct {
	Type        types.JobType
	Payload     json.RawMessage
	SchemaTag   string
	NoteID      *uuid.UUID
	Priority    int
	MaxRetries  int
	ScheduledAt *time.Time
}

// Enqueue inserts a new pending job row, for both externally triggered work
// (a note edit scheduling an embedding job) and handler-chained follow-up
// work (file_extraction scheduling chunking once text is available).
func (q *Queue) Enqueue(ctx context.Context, p EnqueueParams) (*types.Job, error) {
	schema := p.SchemaTag
	if schema == "" {
		schema = "public"
	}
	maxRetries := p.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	payload := p.Payload
	if payload == nil {
		payload = json.RawMessage("{}")
	}

	row := q.pool.QueryRow(ctx, `
		INSERT INTO public.jobs (id, type, priority, status, payload, schema_tag, note_id,
		                         retry_count, max_retries, created_at, scheduled_at)
		VALUES ($1, $2, $3, 'pending', $4, $5, $6, 0, $7, now(), $8)
		RETURNING id, type, priority, status, payload, schema_tag, note_id,
		          retry_count, max_retries, result, error, created_at,
		          scheduled_at, started_at, completed_at,
		          progress_percent, progress_message
	`, uuid.New(), p.Type, p.Priority, payload, schema, p.NoteID, maxRetries, p.ScheduledAt)

	job, err := scanJob(row)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindDatabase, "enqueue job", err)
	}
	return job, nil
}

// Claim atomically selects and locks the next eligible job, ordered by
// priority DESC, created_at ASC, transitioning it to running. Returns
// (nil, nil) when no job is eligible.
func (q *Queue) Claim(ctx context.Context) (*types.Job, error) {
	if q.pause.IsGloballyPaused() {
		return nil, nil
	}

	pausedArchives := q.pause.pausedList()

	tx, err := q.pool.Begin(ctx)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindDatabase, "begin claim transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	row := tx.QueryRow(ctx, `
		SELECT id, type, priority, status, payload, schema_tag, note_id,
		       retry_count, max_retries, result, error, created_at,
		       scheduled_at, started_at, completed_at,
		       progress_percent, progress_message
		FROM public.jobs
		WHERE status = 'pending'
		  AND (scheduled_at IS NULL OR scheduled_at <= now())
		  AND schema_tag != ALL($1::text[])
		ORDER BY priority DESC, created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, pausedArchives)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apierr.Wrap(apierr.KindDatabase, "claim job", err)
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		UPDATE public.jobs SET status = 'running', started_at = $2 WHERE id = $1
	`, job.ID, now); err != nil {
		return nil, apierr.Wrap(apierr.KindDatabase, "mark job running", err)
	}
	job.Status = types.StatusRunning
	job.StartedAt = &now

	if err := tx.Commit(ctx); err != nil {
		return nil, apierr.Wrap(apierr.KindDatabase, "commit claim", err)
	}
	return job, nil
}

// ApplyOutcome transitions job according to the handler's returned Outcome:
// Success completes it, Retry reschedules with backoff while retry_count is
// below max_retries (and fails it once max_retries retries have been used),
// Failure marks it failed.
func (q *Queue) ApplyOutcome(ctx context.Context, job *types.Job, outcome types.Outcome) error {
	switch outcome.Kind {
	case types.OutcomeSuccess:
		_, err := q.pool.Exec(ctx, `
			UPDATE public.jobs
			SET status = 'completed', completed_at = now(), result = $2
			WHERE id = $1
		`, job.ID, outcome.Result)
		if err == nil {
			q.notifyCompleted(ctx, job, outcome.Result)
		}
		return err

	case types.OutcomeRetry:
		if job.RetryCount >= job.MaxRetries {
			_, err := q.pool.Exec(ctx, `
				UPDATE public.jobs SET status = 'failed', error = $2 WHERE id = $1
			`, job.ID, outcome.Reason)
			if err == nil {
				q.notifyFailed(ctx, job, outcome.Reason)
			}
			return err
		}
		scheduledAt := time.Now().Add(NextBackoff(job.RetryCount))
		_, err := q.pool.Exec(ctx, `
			UPDATE public.jobs
			SET status = 'pending', retry_count = retry_count + 1, scheduled_at = $2
			WHERE id = $1
		`, job.ID, scheduledAt)
		return err

	case types.OutcomeFailure:
		_, err := q.pool.Exec(ctx, `
			UPDATE public.jobs SET status = 'failed', error = $2 WHERE id = $1
		`, job.ID, outcome.Error)
		if err == nil {
			q.notifyFailed(ctx, job, outcome.Error)
		}
		return err
	}
	return nil
}

// RecordProgress writes a streamed {percent, message} update back to the
// job row without otherwise affecting its status.
func (q *Queue) RecordProgress(ctx context.Context, jobID uuid.UUID, update types.ProgressUpdate) error {
	_, err := q.pool.Exec(ctx, `
		UPDATE public.jobs SET progress_percent = $2, progress_message = $3 WHERE id = $1
	`, jobID, update.Percent, update.Message)
	return err
}

// SweepStalled returns jobs stuck in running past stallThreshold back to
// pending, incrementing retry_count — recovery for a claim that committed
// but crashed before its handler finished.
func (q *Queue) SweepStalled(ctx context.Context, stallThreshold time.Duration) (int, error) {
	tag, err := q.pool.Exec(ctx, `
		UPDATE public.jobs
		SET status = 'pending', retry_count = retry_count + 1, started_at = NULL
		WHERE status = 'running' AND started_at < now() - $1::interval
	`, stallThreshold)
	if err != nil {
		return 0, apierr.Wrap(apierr.KindDatabase, "sweep stalled jobs", err)
	}
	return int(tag.RowsAffected()), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*types.Job, error) {
	var j types.Job
	var payload, result json.RawMessage
	var errMsg *string
	if err := row.Scan(
		&j.ID, &j.Type, &j.Priority, &j.Status, &payload, &j.SchemaTag, &j.NoteID,
		&j.RetryCount, &j.MaxRetries, &result, &errMsg, &j.CreatedAt,
		&j.ScheduledAt, &j.StartedAt, &j.CompletedAt,
		&j.ProgressPercent, &j.ProgressMessage,
	); err != nil {
		return nil, err
	}
	j.Payload = payload
	j.Result = result
	if errMsg != nil {
		j.Error = *errMsg
	}
	return &j, nil
}
