package shard

import (
	"encoding/json"
	"fmt"
)

// MigrationResult is the outcome of running a single migration step.
type MigrationResult struct {
	Data     json.RawMessage
	Warnings []MigrationWarning
}

// Migration transforms shard data from one version to the next. A
// migration's From/To pair is an edge in the registry's version graph;
// multi-step migrations are planned by chaining edges, not implemented as
// a single long jump.
type Migration interface {
	From() string
	To() string
	Description() string
	Migrate(data json.RawMessage) (MigrationResult, error)
}

// Registry holds the known migrations and finds a path between versions.
type Registry struct {
	migrations []Migration
}

// NewRegistry returns an empty migration registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a migration to the registry.
func (r *Registry) Register(m Migration) {
	r.migrations = append(r.migrations, m)
}

// FindPath returns the sequence of migrations to apply to go from version
// "from" to version "to", found via BFS over the registered edges so the
// shortest chain of migrations is always preferred. Returns a nil, non-error
// result if from == to (no migrations needed). Returns an error if no path
// exists.
func (r *Registry) FindPath(from, to string) ([]Migration, error) {
	if from == to {
		return nil, nil
	}

	byFrom := make(map[string][]Migration)
	for _, m := range r.migrations {
		byFrom[m.From()] = append(byFrom[m.From()], m)
	}

	type node struct {
		version string
		path    []Migration
	}

	visited := map[string]bool{from: true}
	queue := []node{{version: from}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.version == to {
			return cur.path, nil
		}

		for _, m := range byFrom[cur.version] {
			next := m.To()
			if visited[next] {
				continue
			}
			visited[next] = true
			path := make([]Migration, len(cur.path), len(cur.path)+1)
			copy(path, cur.path)
			path = append(path, m)
			queue = append(queue, node{version: next, path: path})
		}
	}

	return nil, fmt.Errorf("shard: no migration path found from %s to %s", from, to)
}

// Migrate runs data through every migration on the path from "from" to "to",
// accumulating warnings across all steps. A migration step failing aborts
// the whole chain; warnings within completed steps never do.
func (r *Registry) Migrate(data json.RawMessage, from, to string) (MigrationResult, error) {
	path, err := r.FindPath(from, to)
	if err != nil {
		return MigrationResult{}, err
	}

	current := data
	var allWarnings []MigrationWarning

	for _, m := range path {
		result, err := m.Migrate(current)
		if err != nil {
			return MigrationResult{}, fmt.Errorf("shard: migration %s -> %s (%s): %w", m.From(), m.To(), m.Description(), err)
		}
		current = result.Data
		allWarnings = append(allWarnings, result.Warnings...)
	}

	return MigrationResult{Data: current, Warnings: allWarnings}, nil
}
