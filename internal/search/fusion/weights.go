package fusion

import "matric-memory/internal/types"

// FusionWeights is the {fts, semantic} split applied before RSF summation,
// or as a pre-fusion hint for RRF list weighting.
type FusionWeights struct {
	FTS      float64
	Semantic float64
}

// AdaptiveWeightConfig names the fixed weight profiles selected per query
// shape.
type AdaptiveWeightConfig struct {
	Enabled           bool
	ExactMatchWeights FusionWeights
	KeywordWeights    FusionWeights
	BalancedWeights   FusionWeights
	ConceptualWeights FusionWeights
	QuotedWeights     FusionWeights
}

// DefaultAdaptiveWeightConfig mirrors the Rust Default impl.
func DefaultAdaptiveWeightConfig() AdaptiveWeightConfig {
	return AdaptiveWeightConfig{
		Enabled:           true,
		ExactMatchWeights: FusionWeights{FTS: 0.8, Semantic: 0.2},
		KeywordWeights:    FusionWeights{FTS: 0.6, Semantic: 0.4},
		BalancedWeights:   FusionWeights{FTS: 0.5, Semantic: 0.5},
		ConceptualWeights: FusionWeights{FTS: 0.35, Semantic: 0.65},
		QuotedWeights:     FusionWeights{FTS: 0.7, Semantic: 0.3},
	}
}

// SelectWeights chooses the FTS/semantic weight split for a query.
//
// Disabled adaptation always returns BalancedWeights. An exact tag/title
// match (qc.ExactTagMatch) takes priority over phrase quoting — this branch
// is a supplement beyond the ported Rust select_weights body, which defines
// ExactMatchWeights but never reaches it; we wire it here because a known
// tag/title hit is a stronger lexical signal than a bare quoted phrase.
// Quoted phrases favor FTS next, then token count buckets the remainder:
// 1-2 tokens are treated as keyword search, 3-5 as balanced, 6+ as
// conceptual (favoring semantic similarity over exact terms).
func SelectWeights(cfg AdaptiveWeightConfig, qc types.QueryCharacteristics) FusionWeights {
	if !cfg.Enabled {
		return cfg.BalancedWeights
	}
	if qc.ExactTagMatch {
		return cfg.ExactMatchWeights
	}
	if qc.IsQuoted {
		return cfg.QuotedWeights
	}
	switch {
	case qc.TokenCount == 0:
		return cfg.BalancedWeights
	case qc.TokenCount <= 2:
		return cfg.KeywordWeights
	case qc.TokenCount <= 5:
		return cfg.BalancedWeights
	default:
		return cfg.ConceptualWeights
	}
}
