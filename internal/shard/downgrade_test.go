package shard

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeDowngradeImpactNoDataLoss(t *testing.T) {
	manifest := json.RawMessage(`{"version":"1.1.0","notes":[{"id":"1","content":"test"}]}`)

	impact, err := AnalyzeDowngradeImpact("1.1.0", "1.0.0", manifest)
	require.NoError(t, err)

	assert.Equal(t, "1.1.0", impact.ShardVersion)
	assert.Equal(t, "1.0.0", impact.CurrentVersion)
	assert.Empty(t, impact.FeaturesLost)
	assert.Empty(t, impact.DataLoss)
	assert.True(t, impact.CanProceed)
	assert.Contains(t, impact.Summary, "normally")
}

func TestAnalyzeDowngradeImpactWithMRLEmbeddings(t *testing.T) {
	manifest := json.RawMessage(`{
		"version": "1.1.0",
		"embeddings": [
			{"id": "1", "vector": [0.1, 0.2, 0.3], "truncate_dim": 128},
			{"id": "2", "vector": [0.4, 0.5, 0.6], "truncate_dim": 128}
		]
	}`)

	impact, err := AnalyzeDowngradeImpact("1.1.0", "1.0.0", manifest)
	require.NoError(t, err)

	require.Len(t, impact.DataLoss, 1)
	loss := impact.DataLoss[0]
	assert.Equal(t, "embeddings", loss.Component)
	assert.Equal(t, "truncate_dim", loss.Field)
	assert.Equal(t, 2, loss.AffectedCount)
	assert.Equal(t, DataLossDiscarded, loss.Outcome)
	assert.Contains(t, loss.Description, "MRL")
}

func TestAnalyzeDowngradeImpactLargeDataLossBlocks(t *testing.T) {
	embeddings := make([]map[string]any, 0, 150)
	for i := 0; i < 150; i++ {
		embeddings = append(embeddings, map[string]any{
			"id":           fmt.Sprintf("%d", i),
			"vector":       []float64{0.1, 0.2, 0.3},
			"truncate_dim": 128,
		})
	}
	manifest, err := json.Marshal(map[string]any{"version": "1.1.0", "embeddings": embeddings})
	require.NoError(t, err)

	impact, err := AnalyzeDowngradeImpact("1.1.0", "1.0.0", manifest)
	require.NoError(t, err)

	assert.False(t, impact.CanProceed)
	assert.NotEmpty(t, impact.DataLoss)
}

func TestAnalyzeDowngradeImpactMixedEmbeddings(t *testing.T) {
	manifest := json.RawMessage(`{
		"version": "1.1.0",
		"embeddings": [
			{"id": "1", "vector": [0.1, 0.2, 0.3], "truncate_dim": 128},
			{"id": "2", "vector": [0.4, 0.5, 0.6]}
		]
	}`)

	impact, err := AnalyzeDowngradeImpact("1.1.0", "1.0.0", manifest)
	require.NoError(t, err)

	require.Len(t, impact.DataLoss, 1)
	assert.Equal(t, 1, impact.DataLoss[0].AffectedCount)
}

func TestDataLossOutcomeString(t *testing.T) {
	assert.Equal(t, "will be discarded", DataLossDiscarded.String())
	assert.Equal(t, "will be degraded", DataLossDegraded.String())
	assert.Equal(t, "will be ignored", DataLossIgnored.String())
}
