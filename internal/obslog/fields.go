// Package obslog defines standardized structured-logging field names shared
// across every subsystem, plus the slog.Logger construction used by the
// daemon and CLI entry points.
//
// All subsystems log through these constants so log aggregation queries
// stay stable across the codebase.
package obslog

// Identity fields.
const (
	RequestID = "request_id"
	Subsystem = "subsystem"
	Component = "component"
	Operation = "op"
)

// Entity fields.
const (
	NoteID  = "note_id"
	JobID   = "job_id"
	JobType = "job_type"
	Query   = "query"
	Schema  = "schema"
)

// Measurement fields.
const (
	DurationMS  = "duration_ms"
	ResultCount = "result_count"
	ChunkCount  = "chunk_count"
	InputCount  = "input_count"
	PromptLen   = "prompt_len"
	ResponseLen = "response_len"
)

// Search-specific fields.
const (
	FTSHits        = "fts_hits"
	SemanticHits   = "semantic_hits"
	FTSWeight      = "fts_weight"
	SemanticWeight = "semantic_weight"
	FusionMethod   = "fusion_method"
	RRFK           = "rrf_k"
)

// Database fields.
const (
	PoolSize = "pool_size"
	PoolIdle = "pool_idle"
	DBTable  = "db_table"
)

// Inference fields.
const (
	Model   = "model"
	RawMode = "raw_mode"
)

// Outcome fields.
const (
	Success = "success"
	ErrorMsg = "error"
	Slow     = "slow"
)
