package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType names a registered handler, including the extra ReembedSet type
// for re-embedding an existing embedding set under a new configuration.
type JobType string

const (
	JobAiRevision      JobType = "ai_revision"
	JobEmbedding       JobType = "embedding"
	JobTitleGeneration JobType = "title_generation"
	JobLinking         JobType = "linking"
	JobConceptTagging  JobType = "concept_tagging"
	JobChunking        JobType = "chunking"
	JobFileExtraction  JobType = "file_extraction"
	JobReembedSet      JobType = "reembed_set"
	JobWebhookDelivery JobType = "webhook_delivery"
	JobBackup          JobType = "backup"
)

// JobStatus is the lifecycle state of a queued job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job is a durable queue row. Payload always embeds a "schema" key naming
// the archive the handler must bind (defaulting to "public").
type Job struct {
	ID               uuid.UUID
	Type             JobType
	Priority         int
	Status           JobStatus
	Payload          json.RawMessage
	SchemaTag        string
	NoteID           *uuid.UUID
	RetryCount       int
	MaxRetries       int
	Result           json.RawMessage
	Error            string
	CreatedAt        time.Time
	ScheduledAt      *time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	ProgressPercent  int
	ProgressMessage  string
}

// Outcome is the value a handler returns from Handle; the worker maps it to
// a status transition.
type Outcome struct {
	Kind   OutcomeKind
	Result json.RawMessage // set for OutcomeSuccess
	Reason string          // set for OutcomeRetry
	Error  string          // set for OutcomeFailure
}

// OutcomeKind discriminates the Outcome variants.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRetry
	OutcomeFailure
)

func Success(result json.RawMessage) Outcome {
	return Outcome{Kind: OutcomeSuccess, Result: result}
}

func Retry(reason string) Outcome {
	return Outcome{Kind: OutcomeRetry, Reason: reason}
}

func Failure(errMsg string) Outcome {
	return Outcome{Kind: OutcomeFailure, Error: errMsg}
}

// ProgressUpdate is a handler-streamed {percent, message} the worker writes
// back to the job row as it runs.
type ProgressUpdate struct {
	Percent int
	Message string
}
