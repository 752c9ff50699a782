package types

import "time"

// Archive is a PostgreSQL schema providing data isolation; each holds its
// own notes/tags/embeddings tables. At most one archive has IsDefault set.
type Archive struct {
	SchemaName  string
	DisplayName string
	Description string
	IsDefault   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ArchiveContext is the resolved routing decision attached to a request:
// which schema to bind, and whether it was actually the registered default
// or a degraded fallback.
type ArchiveContext struct {
	Schema    string
	IsDefault bool
}

// DefaultArchiveContext is the fallback used when no default archive row
// exists or the lookup failed — degrading to "public" rather than failing
// the request.
func DefaultArchiveContext() ArchiveContext {
	return ArchiveContext{Schema: "public", IsDefault: false}
}

// SystemConfig is a key-value JSON row in the public schema, used for the
// pause-state singleton and the default-archive registry pointer.
type SystemConfig struct {
	Key       string
	Value     []byte // raw JSON
	UpdatedAt time.Time
}
