package jobs

import (
	"context"

	"matric-memory/internal/schemactx"
	"matric-memory/internal/types"
)

// JobContext is the argument bundle passed to every handler: the claimed
// job row plus a SchemaContext already bound to payload.schema.
type JobContext struct {
	Job         *types.Job
	SchemaCtx   *schemactx.Context
	OnProgress  func(context.Context, types.ProgressUpdate) error
}

// Handler processes one claimed job and returns the status transition the
// worker should apply.
type Handler interface {
	Handle(ctx context.Context, jc *JobContext) types.Outcome
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, jc *JobContext) types.Outcome

func (f HandlerFunc) Handle(ctx context.Context, jc *JobContext) types.Outcome {
	return f(ctx, jc)
}

// Registry maps a JobType to its single registered Handler.
type Registry struct {
	handlers map[types.JobType]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[types.JobType]Handler)}
}

func (r *Registry) Register(t types.JobType, h Handler) {
	r.handlers[t] = h
}

func (r *Registry) Lookup(t types.JobType) (Handler, bool) {
	h, ok := r.handlers[t]
	return h, ok
}
