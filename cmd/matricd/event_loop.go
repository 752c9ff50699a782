package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matric-memory/internal/config"
	"matric-memory/internal/jobs"
	"matric-memory/internal/obslog"
)

var daemonSignals = []os.Signal{syscall.SIGTERM, syscall.SIGINT}

// runEventLoop is matricd's top-level select loop: a stalled-job sweep
// ticker, a periodic health log, and signal/context-driven shutdown. The
// worker pool itself runs in its own goroutines (started by run before this
// is called); this loop's only direct database access is the sweep.
func runEventLoop(ctx context.Context, cancel context.CancelFunc, queue *jobs.Queue, cfg *config.Config, logger *slog.Logger) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, daemonSignals...)
	defer signal.Stop(sigChan)

	sweepTicker := time.NewTicker(cfg.StallThreshold)
	defer sweepTicker.Stop()

	healthTicker := time.NewTicker(60 * time.Second)
	defer healthTicker.Stop()

	for {
		select {
		case <-sweepTicker.C:
			n, err := queue.SweepStalled(ctx, cfg.StallThreshold)
			if err != nil {
				logger.Error("stalled job sweep failed", obslog.ErrorMsg, err)
				continue
			}
			if n > 0 {
				logger.Info("swept stalled jobs back to pending", "count", n)
			}

		case <-healthTicker.C:
			logger.Info("matricd heartbeat")

		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil

		case <-ctx.Done():
			logger.Info("context canceled, shutting down")
			return nil
		}
	}
}
