// Package fusion implements the score/rank fusion primitives that power
// the hybrid search engine: adaptive RRF k selection, RRF scoring, RSF
// (min-max normalize + weighted sum), adaptive FTS/semantic weight
// selection, and HNSW ef_search tuning.
package fusion

import (
	"strings"
	"unicode/utf8"

	"matric-memory/internal/types"
)

// AnalyzeQuery extracts types.QueryCharacteristics from raw query text using
// simple whitespace tokenization. ExactTagMatch is left false; callers that
// can cheaply check a known-tag/title index should set it after the fact.
func AnalyzeQuery(query string) types.QueryCharacteristics {
	hasQuotes := strings.ContainsAny(query, "\"'")
	tokens := strings.Fields(query)
	tokenCount := len(tokens)

	var avgLen float64
	if tokenCount > 0 {
		total := 0
		for _, t := range tokens {
			total += utf8.RuneCountInString(t)
		}
		avgLen = float64(total) / float64(tokenCount)
	}

	// Heuristic: keyword queries have few, short tokens; natural-language
	// queries have more, longer tokens.
	isKeyword := tokenCount <= 3 && avgLen < 6.0

	return types.QueryCharacteristics{
		TokenCount:      tokenCount,
		IsQuoted:        hasQuotes,
		MeanTokenLength: avgLen,
		IsKeywordQuery:  isKeyword,
	}
}
