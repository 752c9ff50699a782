package shard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDowngradeMessageEmpty(t *testing.T) {
	impact := DowngradeImpact{
		ShardVersion:   "1.1.0",
		CurrentVersion: "1.0.0",
		CanProceed:     true,
		Summary:        "No issues",
	}
	msg := FormatDowngradeMessage(impact)
	assert.Contains(t, msg, "1.1.0")
	assert.Contains(t, msg, "1.0.0")
	assert.Contains(t, msg, "can proceed")
}

func TestFormatDowngradeMessageWithFeatures(t *testing.T) {
	impact := DowngradeImpact{
		ShardVersion:   "1.2.0",
		CurrentVersion: "1.0.0",
		FeaturesLost: []FeatureLoss{{
			Feature:      "mrl_support",
			IntroducedIn: "1.1.0",
			Description:  "Matryoshka embeddings",
		}},
		CanProceed: true,
	}
	msg := FormatDowngradeMessage(impact)
	assert.Contains(t, msg, "mrl_support")
	assert.Contains(t, msg, "1.1.0")
	assert.Contains(t, msg, "Matryoshka")
}

func TestFormatDowngradeMessageWithDataLoss(t *testing.T) {
	impact := DowngradeImpact{
		ShardVersion:   "1.2.0",
		CurrentVersion: "1.0.0",
		DataLoss: []DataLoss{{
			Component:     "embeddings",
			Field:         "truncate_dim",
			AffectedCount: 50,
			Description:   "MRL dimension truncation",
			Outcome:       DataLossDiscarded,
		}},
		CanProceed: true,
	}
	msg := FormatDowngradeMessage(impact)
	assert.Contains(t, msg, "embeddings.truncate_dim")
	assert.Contains(t, msg, "50 items")
	assert.Contains(t, msg, "DISCARDED")
}

func TestFormatDowngradeMessageBlocked(t *testing.T) {
	impact := DowngradeImpact{
		ShardVersion:   "2.0.0",
		CurrentVersion: "1.0.0",
		DataLoss: []DataLoss{{
			Component:     "notes",
			Field:         "new_format",
			AffectedCount: 1000,
			Description:   "New note format",
			Outcome:       DataLossDiscarded,
		}},
		CanProceed: false,
		Summary:    "Blocked",
	}
	msg := FormatDowngradeMessage(impact)
	assert.Contains(t, msg, "Import blocked")
	assert.Contains(t, msg, "upgrading matric-memory")
}

func TestFormatUpgradeMessage(t *testing.T) {
	guidance := GenerateUpgradeGuidance("1.0.0", "1.1.0")
	msg := FormatUpgradeMessage(guidance)
	assert.Contains(t, msg, "1.0.0")
	assert.Contains(t, msg, "1.1.0")
	assert.Contains(t, msg, "Difficulty")
}
