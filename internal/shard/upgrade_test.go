package shard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUpgradeGuidanceSameVersion(t *testing.T) {
	g := GenerateUpgradeGuidance("1.0.0", "1.0.0")
	assert.Equal(t, "1.0.0", g.FromVersion)
	assert.Equal(t, UpgradeAutomatic, g.Difficulty)
}

func TestGenerateUpgradeGuidanceMinorVersion(t *testing.T) {
	g := GenerateUpgradeGuidance("1.0.0", "1.1.0")
	assert.Equal(t, UpgradeSimple, g.Difficulty)
	assert.NotEmpty(t, g.NewFeaturesAvailable)
}

func TestGenerateUpgradeGuidanceMajorVersion(t *testing.T) {
	g := GenerateUpgradeGuidance("1.0.0", "2.0.0")
	assert.Equal(t, UpgradeComplex, g.Difficulty)

	found := false
	for _, s := range g.Steps {
		if s.Title == "Backup current data" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestUpgradeDifficultyString(t *testing.T) {
	assert.Equal(t, "automatic", UpgradeAutomatic.String())
	assert.Equal(t, "complex", UpgradeComplex.String())
}
