package shard

// Manifest is the top-level manifest.json written into every exported
// archive shard: enough metadata to decide compatibility, report on prior
// migrations, and sanity-check the shard's contents without touching the
// bulk data files.
type Manifest struct {
	Version          string            `json:"version"`
	MinReaderVersion string            `json:"min_reader_version"`
	MigratedFrom     string            `json:"migrated_from,omitempty"`
	MigrationHistory []MigrationRecord `json:"migration_history,omitempty"`
	Components       []string          `json:"components"`
	Counts           map[string]int    `json:"counts"`
	Checksums        map[string]string `json:"checksums"`
}

// MigrationRecord is one entry in a shard's migration_history: a record
// that the shard was, at some point before export, migrated from an older
// version, along with whatever warnings that step produced.
type MigrationRecord struct {
	From      string             `json:"from"`
	To        string             `json:"to"`
	Warnings  []MigrationWarning `json:"warnings,omitempty"`
	AppliedAt string             `json:"applied_at"`
}

// NewManifest builds a manifest for a shard being exported at the current
// reader's version, with no prior migration history.
func NewManifest(components []string, counts map[string]int) Manifest {
	return Manifest{
		Version:          CurrentVersion,
		MinReaderVersion: CurrentVersion,
		Components:       components,
		Counts:           counts,
		Checksums:        make(map[string]string),
	}
}
