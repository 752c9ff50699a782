package search

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"matric-memory/internal/schemactx"
	"matric-memory/internal/types"
)

// exactTagOrTitleMatch reports whether a quoted query's inner text matches
// an existing tag name case-insensitively — the heuristic that promotes a
// quoted query to the stronger exact-match weight profile.
func (e *Engine) exactTagOrTitleMatch(ctx context.Context, sc *schemactx.Context, queryText string, qc types.QueryCharacteristics) (bool, error) {
	if !qc.IsQuoted {
		return false, nil
	}
	inner := strings.Trim(queryText, `"'`)
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return false, nil
	}

	var exists bool
	err := sc.Begin(ctx, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM tags WHERE lower(name) = lower($1))`, inner,
		).Scan(&exists)
	})
	if err != nil {
		return false, err
	}
	return exists, nil
}
