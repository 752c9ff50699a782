package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"matric-memory/internal/obslog"
	"matric-memory/internal/schemactx"
	"matric-memory/internal/types"
)

// Worker is one long-running claim loop: each iteration claims at most one
// row, binds its schema, dispatches to the registered handler, and applies
// the resulting outcome. No thread-local state — every iteration builds
// its own SchemaContext from the job's own schema tag.
type Worker struct {
	pool     *pgxpool.Pool
	queue    *Queue
	registry *Registry
	pollWait time.Duration
}

func NewWorker(pool *pgxpool.Pool, queue *Queue, registry *Registry, pollWait time.Duration) *Worker {
	if pollWait <= 0 {
		pollWait = 2 * time.Second
	}
	return &Worker{pool: pool, queue: queue, registry: registry, pollWait: pollWait}
}

// Run claims and processes jobs until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	log := obslog.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		processed, err := w.tick(ctx)
		if err != nil {
			log.Error("job worker tick failed", obslog.ErrorMsg, err)
		}
		if !processed {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.pollWait):
			}
		}
	}
}

// tick claims and processes at most one job, returning whether any job was
// claimed (used by Run to decide whether to back off before polling again).
func (w *Worker) tick(ctx context.Context) (bool, error) {
	job, err := w.queue.Claim(ctx)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	log := obslog.FromContext(ctx)
	schema := job.SchemaTag
	if schema == "" {
		schema = "public"
	}

	schemaCtx, err := schemactx.New(w.pool, schema)
	if err != nil {
		// A malformed schema tag can never succeed; fail outright rather
		// than burning retries on a request that cannot become valid.
		_ = w.queue.ApplyOutcome(ctx, job, types.Failure(err.Error()))
		return true, nil
	}

	handler, ok := w.registry.Lookup(job.Type)
	if !ok {
		_ = w.queue.ApplyOutcome(ctx, job, types.Failure("no handler registered for job type "+string(job.Type)))
		return true, nil
	}

	jc := &JobContext{
		Job:       job,
		SchemaCtx: schemaCtx,
		OnProgress: func(ctx context.Context, update types.ProgressUpdate) error {
			return w.queue.RecordProgress(ctx, job.ID, update)
		},
	}

	outcome := w.runHandler(ctx, handler, jc, log)
	if err := w.queue.ApplyOutcome(ctx, job, outcome); err != nil {
		log.Error("failed to apply job outcome", obslog.JobID, job.ID, obslog.ErrorMsg, err)
	}
	return true, nil
}

// runHandler recovers a handler panic into a Failure outcome so one bad
// handler never kills the worker loop.
func (w *Worker) runHandler(ctx context.Context, h Handler, jc *JobContext, log *slog.Logger) (outcome types.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("job handler panicked", obslog.JobID, jc.Job.ID, obslog.ErrorMsg, r)
			outcome = types.Failure("handler panic")
		}
	}()
	return h.Handle(ctx, jc)
}
