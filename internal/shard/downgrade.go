package shard

import (
	"encoding/json"
	"fmt"
)

// DataLossOutcome describes what happens to an affected field when a shard
// from a newer version is imported into an older reader.
type DataLossOutcome string

const (
	DataLossDiscarded DataLossOutcome = "discarded"
	DataLossDegraded  DataLossOutcome = "degraded"
	DataLossIgnored   DataLossOutcome = "ignored"
)

func (o DataLossOutcome) String() string {
	switch o {
	case DataLossDiscarded:
		return "will be discarded"
	case DataLossDegraded:
		return "will be degraded"
	case DataLossIgnored:
		return "will be ignored"
	default:
		return string(o)
	}
}

// FeatureLoss names a capability the reader doesn't support that the shard
// was written with.
type FeatureLoss struct {
	Feature      string `json:"feature"`
	IntroducedIn string `json:"introduced_in"`
	Description  string `json:"description"`
}

// DataLoss describes one field, across some number of records, that will
// be affected on import because the reader predates it.
type DataLoss struct {
	Component     string          `json:"component"`
	Field         string          `json:"field"`
	AffectedCount int             `json:"affected_count"`
	Description   string          `json:"description"`
	Outcome       DataLossOutcome `json:"outcome"`
}

// DowngradeImpact is the result of analyzing what importing a shard from a
// newer version will cost an older reader.
type DowngradeImpact struct {
	ShardVersion   string        `json:"shard_version"`
	CurrentVersion string        `json:"current_version"`
	FeaturesLost   []FeatureLoss `json:"features_lost"`
	DataLoss       []DataLoss    `json:"data_loss"`
	CanProceed     bool          `json:"can_proceed"`
	Summary        string        `json:"summary"`
}

// discardBlockThreshold is the affected-record count at which a discarded
// field blocks the import outright rather than merely warning about it.
const discardBlockThreshold = 100

// AnalyzeDowngradeImpact inspects shardManifest (the decoded JSON manifest
// of a shard written at shardVersion) for fields the reader running
// currentVersion doesn't understand, and reports whether the import can
// proceed. A manifest is decoded generically since the reader, by
// definition, doesn't have a concrete Go type for a field it predates.
func AnalyzeDowngradeImpact(shardVersion, currentVersion string, shardManifest json.RawMessage) (DowngradeImpact, error) {
	var manifest map[string]any
	if err := json.Unmarshal(shardManifest, &manifest); err != nil {
		return DowngradeImpact{}, fmt.Errorf("shard: decode manifest for downgrade analysis: %w", err)
	}

	var dataLoss []DataLoss

	// MRL (Matryoshka Representation Learning) truncated embeddings are a
	// feature introduced after v1.0.0; a reader that predates it discards
	// the truncate_dim field entirely.
	if embeddings, ok := manifest["embeddings"].([]any); ok {
		mrlCount := 0
		for _, e := range embeddings {
			if entry, ok := e.(map[string]any); ok {
				if _, has := entry["truncate_dim"]; has {
					mrlCount++
				}
			}
		}
		if mrlCount > 0 {
			dataLoss = append(dataLoss, DataLoss{
				Component:     "embeddings",
				Field:         "truncate_dim",
				AffectedCount: mrlCount,
				Description:   fmt.Sprintf("%d embeddings use MRL truncation", mrlCount),
				Outcome:       DataLossDiscarded,
			})
		}
	}

	canProceed := true
	for _, d := range dataLoss {
		if d.Outcome == DataLossDiscarded && d.AffectedCount >= discardBlockThreshold {
			canProceed = false
		}
	}

	var summary string
	if len(dataLoss) == 0 {
		summary = "Import should proceed normally."
	} else if !canProceed {
		summary = fmt.Sprintf("Import blocked: %d field(s) affected, with significant data loss.", len(dataLoss))
	} else {
		summary = fmt.Sprintf("Import will proceed with 0 feature(s) unavailable and %d field(s) affected.", len(dataLoss))
	}

	return DowngradeImpact{
		ShardVersion:   shardVersion,
		CurrentVersion: currentVersion,
		FeaturesLost:   nil,
		DataLoss:       dataLoss,
		CanProceed:     canProceed,
		Summary:        summary,
	}, nil
}
