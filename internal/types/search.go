package types

import "github.com/google/uuid"

// SearchStrategy selects which retriever(s) the hybrid engine runs.
type SearchStrategy string

const (
	StrategyAuto       SearchStrategy = "" // let the engine decide
	StrategyFtsOnly     SearchStrategy = "fts_only"
	StrategySemanticOnly SearchStrategy = "semantic_only"
	StrategyHybrid      SearchStrategy = "hybrid"
)

// FusionMethod selects RRF or RSF when both retrievers ran.
type FusionMethod string

const (
	FusionRRF FusionMethod = "rrf"
	FusionRSF FusionMethod = "rsf"
)

// DedupConfig controls chain (chunk-sibling) deduplication after fusion.
type DedupConfig struct {
	ExpandChains bool
}

// SearchRequest is the hybrid engine's single entry contract.
type SearchRequest struct {
	QueryText       string
	QueryVector     []float32 // nil if no vector was supplied by the caller
	Limit           *int      // nil means unset (use the engine default); 0 or negative is a validation error
	Offset          int
	MinScore        float64
	Filters         map[string]string
	StrictFilter    *StrictFilter
	EmbeddingSetID  *uuid.UUID
	Strategy        SearchStrategy
	FusionMethod    FusionMethod
	AdaptiveWeights bool // if false, use flat 0.5/0.5
	DedupConfig     DedupConfig
	Rerank          bool // enable ColBERT late-interaction re-ranking
	RerankTopK      int  // default 50
}

// QueryCharacteristics are computed once per request before fusion
// and drive adaptive weight/k selection.
type QueryCharacteristics struct {
	TokenCount       int
	IsQuoted         bool
	MeanTokenLength  float64
	IsKeywordQuery   bool
	ExactTagMatch    bool // quoted text matches a known tag/title
}

// ChainInfo annotates a deduplicated hit with the sibling chunks it absorbed.
type ChainInfo struct {
	ParentID      uuid.UUID
	ChunkCount    int
	MatchedChunks []MatchedChunk
}

// MatchedChunk is one sibling chunk's contribution to a deduplicated hit.
type MatchedChunk struct {
	Index int
	Score float64
}

// EnhancedSearchHit is one ranked result returned by the hybrid engine.
type EnhancedSearchHit struct {
	NoteID    uuid.UUID
	Title     string
	Snippet   string
	Score     float64
	Tags      []string
	ChunkInfo *ChunkMetadata
	Chain     *ChainInfo
}

// PaginationMeta is the envelope metadata accompanying every list endpoint
//. HasMore = Offset + len(data) < Total.
type PaginationMeta struct {
	Total   int `json:"total"`
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewPaginationMeta computes HasMore from the other three fields.
func NewPaginationMeta(total, limit, offset, returned int) PaginationMeta {
	return PaginationMeta{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+returned < total,
	}
}

// SearchResponse is the list envelope {data, pagination} plus non-fatal
// warnings (e.g. semantic-search degraded to FTS-only).
type SearchResponse struct {
	Data       []EnhancedSearchHit
	Pagination PaginationMeta
	Warnings   []string
}

// StrictTagFilter composes AND/OR/NOT constraints on SKOS concept IDs
// attached to a note.
type StrictTagFilter struct {
	RequiredConcepts []uuid.UUID
	AnyConcepts      []uuid.UUID
	ExcludedConcepts []uuid.UUID
	RequiredSchemes  []uuid.UUID
	ExcludedSchemes  []uuid.UUID
	MinTagCount      int
	IncludeUntagged  bool
}

// IsEmpty reports whether the filter contributes any SQL clause.
func (f *StrictTagFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return len(f.RequiredConcepts) == 0 && len(f.AnyConcepts) == 0 &&
		len(f.ExcludedConcepts) == 0 && len(f.RequiredSchemes) == 0 &&
		len(f.ExcludedSchemes) == 0 && f.MinTagCount == 0
}

// NamedTemporalRange names a relative time window for StrictTemporalFilter.
type NamedTemporalRange string

const (
	RangeToday     NamedTemporalRange = "today"
	RangeThisWeek  NamedTemporalRange = "this_week"
	RangeThisMonth NamedTemporalRange = "this_month"
	RangeThisYear  NamedTemporalRange = "this_year"
)

// StrictTemporalFilter constrains notes by creation/update time via a named
// relative range; explicit start/end bounds are not supported.
type StrictTemporalFilter struct {
	CreatedWithin *NamedTemporalRange
	UpdatedWithin *NamedTemporalRange
}

func (f *StrictTemporalFilter) IsEmpty() bool {
	return f == nil || (f.CreatedWithin == nil && f.UpdatedWithin == nil)
}

// StrictCollectionFilter constrains notes to a hierarchical collection,
// optionally including descendants.
type StrictCollectionFilter struct {
	CollectionID    uuid.UUID
	WithDescendants bool
}

func (f *StrictCollectionFilter) IsEmpty() bool {
	return f == nil
}

// StrictFilter composes the three independent filtering dimensions into one
// value object; an empty StrictFilter adds no SQL clauses.
type StrictFilter struct {
	Tags        *StrictTagFilter
	Temporal    *StrictTemporalFilter
	Collections *StrictCollectionFilter
}

func NewStrictFilter() *StrictFilter { return &StrictFilter{} }

func (f *StrictFilter) WithTags(t *StrictTagFilter) *StrictFilter {
	f.Tags = t
	return f
}

func (f *StrictFilter) WithTemporal(t *StrictTemporalFilter) *StrictFilter {
	f.Temporal = t
	return f
}

func (f *StrictFilter) WithCollections(c *StrictCollectionFilter) *StrictFilter {
	f.Collections = c
	return f
}

func (f *StrictFilter) HasTagConstraints() bool         { return !f.Tags.IsEmpty() }
func (f *StrictFilter) HasTemporalConstraints() bool     { return !f.Temporal.IsEmpty() }
func (f *StrictFilter) HasCollectionConstraints() bool   { return !f.Collections.IsEmpty() }
