// Package shard implements the archive shard format: version compatibility
// checking, migration path planning, reserved-field enforcement, and the
// upgrade/downgrade guidance shown to an operator importing a shard built by
// a different matric-memory version.
package shard

import (
	"fmt"
	"strconv"
	"strings"
)

// CurrentVersion is the shard format version this build writes and reads
// natively. Archives at other versions go through compatibility checking
// before import.
const CurrentVersion = "1.0.0"

// Version is a parsed semver-style shard version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a "major.minor.patch" string. It rejects anything
// that isn't exactly three dot-separated non-negative integers.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("shard: invalid version %q: expected major.minor.patch", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("shard: invalid version %q: component %q is not a non-negative integer", s, p)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than other.
func (v Version) Compare(other Version) int {
	if v.Major != other.Major {
		return cmpInt(v.Major, other.Major)
	}
	if v.Minor != other.Minor {
		return cmpInt(v.Minor, other.Minor)
	}
	return cmpInt(v.Patch, other.Patch)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IsCompatibleWith reports whether v (a shard's version) can be read by a
// reader running other (typically CurrentVersion) — true as long as the
// major versions match, regardless of minor/patch drift.
func (v Version) IsCompatibleWith(other Version) bool {
	return v.Major == other.Major
}
