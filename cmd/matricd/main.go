// Command matricd is the background daemon: it runs the job worker pool,
// the stalled-job sweep, and webhook delivery against a Postgres pool. It
// has no HTTP surface of its own — that is an external collaborator, the
// same way matricctl owns operator commands and migrations are applied
// by a separate tool.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"matric-memory/internal/blobstore"
	"matric-memory/internal/config"
	"matric-memory/internal/inference"
	"matric-memory/internal/jobs"
	"matric-memory/internal/obslog"
	"matric-memory/internal/types"
	"matric-memory/internal/webhook"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "matricd",
		Short: "matric-memory background daemon: job worker, stall sweep, webhook delivery",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to config.yaml (optional; env vars alone are sufficient)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	logger := obslog.New(cfg.LogFormat, level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = obslog.WithContext(ctx, logger)

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	pause := jobs.NewPauseState(pool)
	if err := pause.Load(ctx); err != nil {
		logger.Warn("failed to load pause state, starting unpaused", obslog.ErrorMsg, err)
	}

	queue := jobs.NewQueue(pool, pause)

	webhookStore := webhook.NewStore(pool)
	dispatcher := webhook.NewDispatcher(webhookStore)
	queue.AddObserver(dispatcher)

	registry := buildHandlerRegistry(pool, queue, cfg)
	worker := jobs.NewWorker(pool, queue, registry, 0)

	var watcherStop context.CancelFunc
	if cfg.RedisEnabled || configPath != "" {
		watchCtx, stop := context.WithCancel(ctx)
		watcherStop = stop
		if err := config.WatchRedisToggle(watchCtx, configPath, logger, func(enabled bool) {
			logger.Info("redis_enabled toggled via config reload", "enabled", enabled)
		}); err != nil {
			logger.Warn("config watcher unavailable, redis toggle requires a restart", obslog.ErrorMsg, err)
			stop()
			watcherStop = nil
		}
	}
	if watcherStop != nil {
		defer watcherStop()
	}

	logger.Info("matricd starting",
		"workers", cfg.WorkerConcurrency,
		"stall_threshold", cfg.StallThreshold,
		"redis_enabled", cfg.RedisEnabled,
	)

	for i := 0; i < cfg.WorkerConcurrency; i++ {
		go worker.Run(ctx)
	}

	return runEventLoop(ctx, cancel, queue, cfg, logger)
}

// newPool opens a pgxpool bound to cfg's pool sizing. Cold settings only —
// the pool is never resized after startup.
func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = cfg.PoolMaxConns
	poolCfg.MinConns = cfg.PoolMinConns
	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// buildHandlerRegistry registers every handler this module ships a concrete
// implementation for. A JobType with no entry here simply fails gracefully
// when claimed (Worker.tick's no-handler-registered path) rather than
// crashing the worker, so a partial registry is a supported configuration.
func buildHandlerRegistry(pool *pgxpool.Pool, queue *jobs.Queue, cfg *config.Config) *jobs.Registry {
	registry := jobs.NewRegistry()

	extractors := jobs.NewExtractionRegistry()
	extractors.Register("text/*", jobs.TextNativeAdapter{})
	extractors.Register("application/json", jobs.TextNativeAdapter{})
	extractors.Register("application/x-ndjson", jobs.TextNativeAdapter{})

	blobs := blobstore.New(pool, blobRoot())
	registry.Register(types.JobFileExtraction, jobs.NewFileExtractionHandler(blobs, extractors, queue))

	backends := inference.NewRegistry()
	backends.RegisterEmbedder(string(types.ProviderOllama), inference.NewOllamaBackend(cfg.OllamaURL, cfg.OllamaModel))
	registry.Register(types.JobEmbedding, jobs.NewEmbeddingHandler(backends))

	chunker := jobs.NewSemanticChunker(jobs.ChunkerConfig{
		MaxTokens:     cfg.ChunkMaxTokens,
		MinTokens:     cfg.ChunkMaxTokens / 10,
		OverlapTokens: cfg.ChunkMaxTokens / 10,
	})
	registry.Register(types.JobChunking, jobs.NewChunkingHandler(chunker, cfg.ChunkMaxTokens))

	return registry
}

// blobRoot resolves the blob store's root directory. MATRIC_BLOB_ROOT isn't
// one of Config's cold keys since it names a filesystem path rather than a
// service endpoint; matricd reads it directly, defaulting to a local
// directory suitable for development.
func blobRoot() string {
	if root := os.Getenv("MATRIC_BLOB_ROOT"); root != "" {
		return root
	}
	return "./data/blobs"
}
