package shard

import "fmt"

// CompatibilityKind discriminates a CompatibilityResult the way a Rust enum
// tag would; callers switch on Kind rather than type-asserting.
type CompatibilityKind string

const (
	// CompatibilityCompatible means the shard's version exactly matches the
	// reader's version; import proceeds with no translation.
	CompatibilityCompatible CompatibilityKind = "compatible"
	// CompatibilityRequiresMigration means the shard predates the reader
	// and must run through the migration registry before use.
	CompatibilityRequiresMigration CompatibilityKind = "requires_migration"
	// CompatibilityNewerMinor means the shard is from a later minor/patch
	// release of the same major version — readable, but some fields may be
	// unrecognized or features unavailable.
	CompatibilityNewerMinor CompatibilityKind = "newer_minor"
	// CompatibilityIncompatible means the shard's major version differs
	// from the reader's and cannot be read at all.
	CompatibilityIncompatible CompatibilityKind = "incompatible"
)

// CompatibilityResult is the outcome of comparing a shard's version against
// the version this build natively reads and writes.
type CompatibilityResult struct {
	Kind CompatibilityKind

	// Populated when Kind == CompatibilityRequiresMigration.
	From Version
	To   Version

	// Populated when Kind == CompatibilityNewerMinor.
	ShardVersion Version
	Warnings     []string

	// Populated when Kind == CompatibilityIncompatible.
	Reason      string
	MinRequired Version
}

// CheckCompatibility compares a shard's declared version against the
// version this build reads and writes natively (CurrentVersion).
func CheckCompatibility(shardVersionStr string) (CompatibilityResult, error) {
	shardVersion, err := ParseVersion(shardVersionStr)
	if err != nil {
		return CompatibilityResult{}, err
	}
	current, err := ParseVersion(CurrentVersion)
	if err != nil {
		return CompatibilityResult{}, err
	}
	return checkCompatibility(shardVersion, current), nil
}

func checkCompatibility(shardVersion, current Version) CompatibilityResult {
	if shardVersion.Major != current.Major {
		return CompatibilityResult{
			Kind: CompatibilityIncompatible,
			Reason: fmt.Sprintf(
				"shard major version %d is incompatible with reader major version %d",
				shardVersion.Major, current.Major,
			),
			MinRequired: Version{Major: shardVersion.Major},
		}
	}

	switch shardVersion.Compare(current) {
	case 0:
		return CompatibilityResult{Kind: CompatibilityCompatible}
	case 1:
		return CompatibilityResult{
			Kind:         CompatibilityNewerMinor,
			ShardVersion: shardVersion,
			Warnings: []string{
				fmt.Sprintf("shard was written by a newer version (%s > %s); some fields may be ignored", shardVersion, current),
				"consider upgrading before importing this shard to avoid data loss",
			},
		}
	default:
		return CompatibilityResult{
			Kind: CompatibilityRequiresMigration,
			From: shardVersion,
			To:   current,
		}
	}
}
