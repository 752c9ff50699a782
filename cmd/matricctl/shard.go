package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"matric-memory/internal/shard"
)

var shardManifestPath string

var shardCmd = &cobra.Command{
	Use:   "shard",
	Short: "Inspect an archive shard's version compatibility before import",
}

var shardCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether a shard manifest is compatible with this build, and any downgrade impact",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(shardManifestPath)
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}

		var manifest shard.Manifest
		if err := json.Unmarshal(raw, &manifest); err != nil {
			return fmt.Errorf("parse manifest: %w", err)
		}

		result, err := shard.CheckCompatibility(manifest.Version)
		if err != nil {
			return fmt.Errorf("check compatibility: %w", err)
		}
		fmt.Printf("compatibility: %s\n", result.Kind)

		switch result.Kind {
		case shard.CompatibilityIncompatible:
			fmt.Printf("reason: %s\n", result.Reason)
			return nil

		case shard.CompatibilityRequiresMigration:
			fmt.Printf("shard is older (v%s); migration to v%s required\n", manifest.Version, shard.CurrentVersion)
			return nil

		case shard.CompatibilityNewerMinor:
			impact, err := shard.AnalyzeDowngradeImpact(manifest.Version, shard.CurrentVersion, raw)
			if err != nil {
				return fmt.Errorf("analyze downgrade impact: %w", err)
			}
			fmt.Println(shard.FormatDowngradeMessage(impact))
			return nil
		}

		fmt.Println("shard is fully compatible; no migration needed")
		return nil
	},
}

func init() {
	shardCheckCmd.Flags().StringVar(&shardManifestPath, "manifest", "", "path to the shard's manifest.json")
	_ = shardCheckCmd.MarkFlagRequired("manifest")
	shardCmd.AddCommand(shardCheckCmd)
}
