package shard

import (
	"fmt"
	"strings"
)

// UpgradeDifficulty ranks how much operator attention importing an older
// shard needs before it's safe to treat as current.
type UpgradeDifficulty string

const (
	UpgradeAutomatic UpgradeDifficulty = "automatic"
	UpgradeSimple    UpgradeDifficulty = "simple"
	UpgradeModerate  UpgradeDifficulty = "moderate"
	UpgradeComplex   UpgradeDifficulty = "complex"
)

func (d UpgradeDifficulty) String() string { return string(d) }

// UpgradeStep is one action an operator (or the importer, automatically)
// takes as part of bringing an older shard up to the current version.
type UpgradeStep struct {
	Order       int    `json:"order"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Command     string `json:"command,omitempty"`
	IsAutomatic bool   `json:"is_automatic"`
}

// UpgradeGuidance is the operator-facing plan for importing a shard from an
// older version.
type UpgradeGuidance struct {
	FromVersion          string            `json:"from_version"`
	ToVersion            string            `json:"to_version"`
	Difficulty           UpgradeDifficulty `json:"difficulty"`
	Steps                []UpgradeStep     `json:"steps"`
	NewFeaturesAvailable []string          `json:"new_features_available"`
	Summary              string            `json:"summary"`
}

// GenerateUpgradeGuidance produces the step list and difficulty rating for
// importing a shard written at fromVersion into a reader at toVersion.
func GenerateUpgradeGuidance(fromVersion, toVersion string) UpgradeGuidance {
	from, fromErr := ParseVersion(fromVersion)
	to, toErr := ParseVersion(toVersion)
	if fromErr != nil {
		from = Version{Major: 1}
	}
	if toErr != nil {
		to = Version{Major: 1}
	}

	var steps []UpgradeStep
	var newFeatures []string
	difficulty := UpgradeAutomatic

	if to.Major > from.Major {
		difficulty = UpgradeComplex
		steps = append(steps, UpgradeStep{
			Order:       1,
			Title:       "Backup current data",
			Description: "Create a backup before major version upgrade",
			Command:     "matricctl backup create --name pre-upgrade",
			IsAutomatic: false,
		})
	}

	steps = append(steps, UpgradeStep{
		Order:       len(steps) + 1,
		Title:       "Apply schema migrations",
		Description: "Database schema will be automatically upgraded",
		IsAutomatic: true,
	})

	if strings.HasPrefix(fromVersion, "1.0") && !strings.HasPrefix(toVersion, "1.0") {
		newFeatures = append(newFeatures, "MRL embeddings support", "Document type registry")
	}

	if len(newFeatures) > 0 && difficulty != UpgradeComplex {
		difficulty = UpgradeSimple
		steps = append(steps, UpgradeStep{
			Order:       len(steps) + 1,
			Title:       "Enable new features",
			Description: fmt.Sprintf("Consider enabling: %s", strings.Join(newFeatures, ", ")),
			IsAutomatic: false,
		})
	}

	var summary string
	switch difficulty {
	case UpgradeAutomatic:
		summary = "Import will be processed automatically with no changes needed."
	case UpgradeSimple:
		summary = fmt.Sprintf("Import will succeed. %d new feature(s) will be available.", len(newFeatures))
	case UpgradeModerate:
		summary = "Import will succeed but some configuration may be needed."
	case UpgradeComplex:
		summary = "Major version upgrade detected. Please review the migration steps carefully."
	}

	return UpgradeGuidance{
		FromVersion:          fromVersion,
		ToVersion:            toVersion,
		Difficulty:           difficulty,
		Steps:                steps,
		NewFeaturesAvailable: newFeatures,
		Summary:              summary,
	}
}
