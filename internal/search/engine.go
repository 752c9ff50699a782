// Package search implements the hybrid search engine: fusion of PostgreSQL
// full-text search and pgvector similarity, with adaptive parameter tuning,
// strict tag/temporal/collection filtering, chain deduplication, and
// optional ColBERT late-interaction re-ranking.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"matric-memory/internal/apierr"
	"matric-memory/internal/schemactx"
	"matric-memory/internal/search/fusion"
	"matric-memory/internal/types"
)

// Engine ties the FTS and semantic retrievers together with the fusion,
// filtering, dedup, and rerank stages.
type Engine struct {
	pool            *pgxpool.Pool
	fusionConfig    FusionConfig
	hnswConfig      fusion.HNSWTuningConfig
	weightConfig    fusion.AdaptiveWeightConfig
	rrfConfig       fusion.AdaptiveRRFConfig
	cache           *ResultCache // nil when REDIS_ENABLED=false
}

// WithCache attaches a ResultCache so Search can skip retrieval/fusion for
// a repeated identical request. A nil cache (the zero value Engine starts
// with) makes Search behave exactly as if no cache were configured.
func (e *Engine) WithCache(cache *ResultCache) *Engine {
	e.cache = cache
	return e
}

// FusionConfig bundles the defaults applied when a SearchRequest leaves a
// field at its zero value.
type FusionConfig struct {
	DefaultLimit      int
	DefaultRerankTopK int
	DefaultFusion     types.FusionMethod
	RecallTarget      fusion.RecallTarget
}

func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		DefaultLimit:      20,
		DefaultRerankTopK: 50,
		DefaultFusion:     types.FusionRRF,
		RecallTarget:      fusion.RecallBalanced,
	}
}

// New constructs an Engine bound to pool, with every fusion tunable at its
// documented default.
func New(pool *pgxpool.Pool) *Engine {
	return &Engine{
		pool:         pool,
		fusionConfig: DefaultFusionConfig(),
		hnswConfig:   fusion.DefaultHNSWTuningConfig(),
		weightConfig: fusion.DefaultAdaptiveWeightConfig(),
		rrfConfig:    fusion.DefaultAdaptiveRRFConfig(),
	}
}

// resolveStrategy picks FtsOnly/SemanticOnly/Hybrid: an explicit request
// strategy is honored; otherwise the absence of a query vector forces
// FtsOnly, and its presence selects Hybrid.
func resolveStrategy(req types.SearchRequest) types.SearchStrategy {
	if req.Strategy != types.StrategyAuto {
		return req.Strategy
	}
	if req.QueryVector == nil {
		return types.StrategyFtsOnly
	}
	return types.StrategyHybrid
}

// Search runs the full hybrid pipeline: query analysis, strategy
// resolution, retrieval, fusion, strict-filter lowering (applied inside
// each retriever's SQL), chain dedup, and optional ColBERT rerank.
func (e *Engine) Search(ctx context.Context, sc *schemactx.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	limit := e.fusionConfig.DefaultLimit
	if req.Limit != nil {
		if *req.Limit <= 0 {
			return nil, apierr.New(apierr.KindInvalidInput, "limit must be a positive integer")
		}
		limit = *req.Limit
	}

	if e.cache != nil {
		if cached, err := e.cache.Get(ctx, sc.Schema, req); err == nil && cached != nil {
			return cached, nil
		}
	}

	qc := fusion.AnalyzeQuery(req.QueryText)
	if req.Strategy == types.StrategyAuto || req.Strategy == types.StrategyHybrid {
		exact, err := e.exactTagOrTitleMatch(ctx, sc, req.QueryText, qc)
		if err == nil {
			qc.ExactTagMatch = exact
		}
	}

	strategy := resolveStrategy(req)

	var warnings []string
	var ftsHits, semanticHits []fusion.RankedHit
	var ftsScores, semanticScores []float64
	var err error

	if strategy == types.StrategyFtsOnly || strategy == types.StrategyHybrid {
		ftsHits, ftsScores, err = e.ftsSearch(ctx, sc, req)
		if err != nil {
			return nil, fmt.Errorf("fts retrieval: %w", err)
		}
	}

	if strategy == types.StrategySemanticOnly || strategy == types.StrategyHybrid {
		if req.QueryVector == nil {
			warnings = append(warnings, "semantic search requested without a query vector; degraded to FTS-only")
			strategy = types.StrategyFtsOnly
		} else {
			semanticHits, semanticScores, err = e.semanticSearch(ctx, sc, req)
			if err != nil {
				warnings = append(warnings, "semantic search unavailable, degraded to FTS-only: "+err.Error())
				strategy = types.StrategyFtsOnly
			}
		}
	}

	var fused []types.EnhancedSearchHit
	switch strategy {
	case types.StrategyFtsOnly:
		fused = rankOnly(ftsHits)
	case types.StrategySemanticOnly:
		fused = rankOnly(semanticHits)
	default:
		weights := fusion.FusionWeights{FTS: 0.5, Semantic: 0.5}
		if req.AdaptiveWeights {
			weights = fusion.SelectWeights(e.weightConfig, qc)
		}
		method := req.FusionMethod
		if method == "" {
			method = e.fusionConfig.DefaultFusion
		}
		lists := [][]fusion.RankedHit{ftsHits, semanticHits}
		if method == types.FusionRSF {
			fused = fusion.RSFFuse(lists, [][]float64{ftsScores, semanticScores},
				[]float64{weights.FTS, weights.Semantic}, limit)
		} else {
			k := e.rrfConfig.DefaultK
			if e.rrfConfig.AdaptiveEnabled {
				k = fusion.SelectK(e.rrfConfig, qc)
			}
			fused = fusion.RRFFuse(lists, []float64{weights.FTS, weights.Semantic}, k, limit)
		}
	}

	fused = applyMinScore(fused, req.MinScore)
	fused = dedupeChains(fused, req.DedupConfig)

	if req.Rerank && req.QueryVector != nil {
		topK := req.RerankTopK
		if topK <= 0 {
			topK = e.fusionConfig.DefaultRerankTopK
		}
		reranked, err := e.rerankColBERT(ctx, sc, req, fused, topK)
		if err != nil {
			warnings = append(warnings, "ColBERT rerank unavailable: "+err.Error())
		} else {
			fused = reranked
		}
	}

	total := len(fused)
	offset := req.Offset
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := fused[offset:end]

	resp := &types.SearchResponse{
		Data:       page,
		Pagination: types.NewPaginationMeta(total, limit, offset, len(page)),
		Warnings:   warnings,
	}

	if e.cache != nil {
		_ = e.cache.Set(ctx, sc.Schema, req, resp)
	}

	return resp, nil
}

// rankOnly sorts a single retriever's hits by its own raw score, used when
// only one side of the hybrid pipeline ran (limit/offset are applied once,
// after dedup, by the caller).
func rankOnly(hits []fusion.RankedHit) []types.EnhancedSearchHit {
	sorted := make([]fusion.RankedHit, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	out := make([]types.EnhancedSearchHit, 0, len(sorted))
	for _, h := range sorted {
		out = append(out, types.EnhancedSearchHit{
			NoteID:  h.NoteID,
			Title:   h.Title,
			Snippet: h.Snippet,
			Score:   h.Score,
			Tags:    h.Tags,
		})
	}
	return out
}

func applyMinScore(hits []types.EnhancedSearchHit, minScore float64) []types.EnhancedSearchHit {
	if minScore <= 0 {
		return hits
	}
	out := hits[:0]
	for _, h := range hits {
		if h.Score >= minScore {
			out = append(out, h)
		}
	}
	return out
}
