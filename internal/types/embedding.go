package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EmbeddingProvider names the backend generating embeddings for a
// configuration.
type EmbeddingProvider string

const (
	ProviderOllama EmbeddingProvider = "ollama"
	ProviderOpenAI EmbeddingProvider = "openai"
	ProviderVoyage EmbeddingProvider = "voyage"
	ProviderCohere EmbeddingProvider = "cohere"
	ProviderCustom EmbeddingProvider = "custom"
)

// DocumentComposition controls which parts of a note are concatenated to
// form the text fed to the embedder.
type DocumentComposition string

const (
	CompositionTitleAndContent DocumentComposition = "title_and_content"
	CompositionTitleOnly       DocumentComposition = "title_only"
	CompositionContentOnly     DocumentComposition = "content_only"
)

// EmbeddingConfig is a first-class, named embedding-generation
// configuration referenced by one or more EmbeddingSets.
type EmbeddingConfig struct {
	ID                  uuid.UUID
	Name                string
	Description         string
	Model               string
	Dimension           int
	ChunkSize           int // default 1000
	ChunkOverlap        int // default 100
	Provider            EmbeddingProvider
	ProviderConfig      json.RawMessage
	SupportsMRL         bool
	MatryoshkaDims      []int
	DefaultTruncateDim  *int
	ContentTypes        []string
	HNSWM               *int
	HNSWEfConstruction  *int
	DocumentComposition DocumentComposition
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// EmbeddingSetMode distinguishes how notes are associated with a set.
type EmbeddingSetMode string

const (
	SetModeManual EmbeddingSetMode = "manual"
	SetModeAuto   EmbeddingSetMode = "auto"   // tag/filter-driven membership
	SetModeFilter EmbeddingSetMode = "filter" // view over a parent set
)

// EmbeddingSet is a named bag of notes sharing an EmbeddingConfig.
type EmbeddingSet struct {
	ID                uuid.UUID
	Name              string
	EmbeddingConfigID uuid.UUID
	Mode              EmbeddingSetMode
	ParentSetID       *uuid.UUID // set when Mode == SetModeFilter
	Criteria          *EmbeddingSetCriteria
	IsSystem          bool // system sets cannot be deleted
	CreatedAt         time.Time
}

// EmbeddingSetCriteria is a structured value object (never a free-form map)
// describing the auto/filter membership rule.
type EmbeddingSetCriteria struct {
	RequiredTagIDs []uuid.UUID
	ExcludedTagIDs []uuid.UUID
	CollectionID   *uuid.UUID
}

// Embedding is a dense vector tied to a note (and optionally a specific
// chunk) under one EmbeddingConfig.
type Embedding struct {
	NoteID            uuid.UUID
	ChunkID           *uuid.UUID
	EmbeddingConfigID uuid.UUID
	Vector            []float32
	CreatedAt         time.Time
}

// TokenEmbedding is one row of a ColBERT-style per-token embedding sequence,
// ordered by TokenPosition, consumed by late-interaction re-ranking.
type TokenEmbedding struct {
	NoteID        uuid.UUID
	ChunkID       *uuid.UUID
	TokenPosition int
	TokenText     string
	Vector        []float32
	Model         string
}
