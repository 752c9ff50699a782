package shard

import (
	"fmt"
	"strings"
)

// FormatDowngradeMessage renders a human-readable block describing what
// importing a newer shard will cost, for display in matricctl.
func FormatDowngradeMessage(impact DowngradeImpact) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("Importing shard from newer version %s into %s", impact.ShardVersion, impact.CurrentVersion), "")

	if len(impact.FeaturesLost) > 0 {
		lines = append(lines, "Features not available in this version:")
		for _, f := range impact.FeaturesLost {
			lines = append(lines, fmt.Sprintf("  - %s (introduced in %s): %s", f.Feature, f.IntroducedIn, f.Description))
		}
		lines = append(lines, "")
	}

	if len(impact.DataLoss) > 0 {
		lines = append(lines, "Data that will be affected:")
		for _, d := range impact.DataLoss {
			action := "DISCARDED"
			switch d.Outcome {
			case DataLossDegraded:
				action = "degraded"
			case DataLossIgnored:
				action = "ignored"
			}
			lines = append(lines, fmt.Sprintf("  - %s.%s (%d items) - %s - %s", d.Component, d.Field, d.AffectedCount, action, d.Description))
		}
		lines = append(lines, "")
	}

	if impact.CanProceed {
		lines = append(lines, "Import can proceed with the above limitations.")
	} else {
		lines = append(lines, "Import blocked due to significant data loss.", "   Consider upgrading matric-memory before importing this shard.")
	}

	return strings.Join(lines, "\n")
}

// FormatUpgradeMessage renders a human-readable upgrade plan, for display
// in matricctl.
func FormatUpgradeMessage(guidance UpgradeGuidance) string {
	var lines []string

	lines = append(lines, fmt.Sprintf("Importing shard from older version %s to %s", guidance.FromVersion, guidance.ToVersion))
	lines = append(lines, fmt.Sprintf("   Difficulty: %s", guidance.Difficulty))
	lines = append(lines, "")

	if len(guidance.Steps) > 0 {
		lines = append(lines, "Migration steps:")
		for _, s := range guidance.Steps {
			auto := ""
			if s.IsAutomatic {
				auto = " (automatic)"
			}
			lines = append(lines, fmt.Sprintf("  %d. %s%s", s.Order, s.Title, auto))
			lines = append(lines, fmt.Sprintf("     %s", s.Description))
			if s.Command != "" {
				lines = append(lines, fmt.Sprintf("     $ %s", s.Command))
			}
		}
		lines = append(lines, "")
	}

	if len(guidance.NewFeaturesAvailable) > 0 {
		lines = append(lines, "New features available after import:")
		for _, f := range guidance.NewFeaturesAvailable {
			lines = append(lines, fmt.Sprintf("  - %s", f))
		}
		lines = append(lines, "")
	}

	lines = append(lines, guidance.Summary)

	return strings.Join(lines, "\n")
}
