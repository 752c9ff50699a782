// Command matricctl is the operator CLI: pause/resume the job pipeline,
// inspect queue stats, check a shard manifest's compatibility with this
// build (it does not export or import shards), and manage PKE recipient
// keys. It connects directly to Postgres; it is not a client of
// matricd's (nonexistent) HTTP surface.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"matric-memory/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "matricctl",
	Short: "Operator CLI for matric-memory",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")
	rootCmd.AddCommand(pauseCmd, resumeCmd, queueStatsCmd, shardCmd, pkeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connectPool loads cold config and opens a pool with pgxpool's default
// sizing; cfg's pool_max_conns/pool_min_conns are not applied here.
func connectPool(ctx context.Context) (*pgxpool.Pool, *config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, cfg, nil
}
