package search

import (
	"fmt"
	"strings"
	"time"

	"matric-memory/internal/types"
)

// lowerStrictFilter compiles a StrictFilter into a SQL fragment (starting
// "AND ...", or "" if empty) plus its positional parameters, with parameter
// numbering starting at startParam so callers can prepend their own $1..
func lowerStrictFilter(f *types.StrictFilter, startParam int) (string, []interface{}) {
	if isStrictFilterEmpty(f) {
		return "", nil
	}

	var clauses []string
	var args []interface{}
	next := startParam

	if f.HasTagConstraints() {
		tagClause, tagArgs, n := lowerTagFilter(f.Tags, next)
		if tagClause != "" {
			clauses = append(clauses, tagClause)
			args = append(args, tagArgs...)
			next = n
		}
	}

	if f.HasTemporalConstraints() {
		temporalClause, temporalArgs, n := lowerTemporalFilter(f.Temporal, next)
		if temporalClause != "" {
			clauses = append(clauses, temporalClause)
			args = append(args, temporalArgs...)
			next = n
		}
	}

	if f.HasCollectionConstraints() {
		collClause, collArgs := lowerCollectionFilter(f.Collections, next)
		if collClause != "" {
			clauses = append(clauses, collClause)
			args = append(args, collArgs...)
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "AND " + strings.Join(clauses, " AND "), args
}

func isStrictFilterEmpty(f *types.StrictFilter) bool {
	return f == nil || (f.Tags.IsEmpty() && f.Temporal.IsEmpty() && f.Collections.IsEmpty())
}

// lowerTagFilter builds the AND/OR/NOT semi-join/anti-join clauses over the
// note-tag relation described by the SKOS concept filter.
func lowerTagFilter(t *types.StrictTagFilter, next int) (string, []interface{}, int) {
	var clauses []string
	var args []interface{}

	for _, concept := range t.RequiredConcepts {
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM note_tags nt WHERE nt.note_id = n.id AND nt.tag_id = $%d)", next))
		args = append(args, concept)
		next++
	}

	if len(t.AnyConcepts) > 0 {
		placeholders := make([]string, 0, len(t.AnyConcepts))
		for _, concept := range t.AnyConcepts {
			placeholders = append(placeholders, fmt.Sprintf("$%d", next))
			args = append(args, concept)
			next++
		}
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM note_tags nt WHERE nt.note_id = n.id AND nt.tag_id IN (%s))",
			strings.Join(placeholders, ", ")))
	}

	for _, concept := range t.ExcludedConcepts {
		clauses = append(clauses, fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM note_tags nt WHERE nt.note_id = n.id AND nt.tag_id = $%d)", next))
		args = append(args, concept)
		next++
	}

	if t.MinTagCount > 0 {
		clauses = append(clauses, fmt.Sprintf(
			"(SELECT count(*) FROM note_tags nt WHERE nt.note_id = n.id) >= $%d", next))
		args = append(args, t.MinTagCount)
		next++
	}

	if !t.IncludeUntagged {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM note_tags nt WHERE nt.note_id = n.id)")
	}

	if len(clauses) == 0 {
		return "", nil, next
	}
	return "(" + strings.Join(clauses, " AND ") + ")", args, next
}

// temporalBounds converts a named relative range into [start, end) UTC
// bounds anchored to now.
func temporalBounds(r types.NamedTemporalRange, now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	switch r {
	case types.RangeToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 0, 1)
	case types.RangeThisWeek:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // treat Sunday as end of week, ISO-style
		}
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 7)
	case types.RangeThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	case types.RangeThisYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	default:
		return now, now
	}
}

func lowerTemporalFilter(t *types.StrictTemporalFilter, next int) (string, []interface{}, int) {
	var clauses []string
	var args []interface{}
	now := time.Now()

	if t.CreatedWithin != nil {
		start, end := temporalBounds(*t.CreatedWithin, now)
		clauses = append(clauses, fmt.Sprintf("n.created_at >= $%d AND n.created_at < $%d", next, next+1))
		args = append(args, start, end)
		next += 2
	}
	if t.UpdatedWithin != nil {
		start, end := temporalBounds(*t.UpdatedWithin, now)
		clauses = append(clauses, fmt.Sprintf("n.updated_at >= $%d AND n.updated_at < $%d", next, next+1))
		args = append(args, start, end)
		next += 2
	}

	if len(clauses) == 0 {
		return "", nil, next
	}
	return strings.Join(clauses, " AND "), args, next
}

func lowerCollectionFilter(c *types.StrictCollectionFilter, next int) (string, []interface{}) {
	if c.WithDescendants {
		return fmt.Sprintf(`n.collection_id IN (
			WITH RECURSIVE descendants AS (
				SELECT id FROM collections WHERE id = $%d
				UNION ALL
				SELECT child.id FROM collections child
				JOIN descendants d ON child.parent_id = d.id
			)
			SELECT id FROM descendants
		)`, next), []interface{}{c.CollectionID}
	}
	return fmt.Sprintf("n.collection_id = $%d", next), []interface{}{c.CollectionID}
}
