package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchRedisToggle watches configPath for writes and invokes onChange with
// the freshly reloaded redis_enabled value whenever it changes, so the daemon
// can flip its cache layer on or off without a restart. It runs until ctx
// is canceled. Any other field change in config.yaml is ignored — cold
// settings like the database URL or pool sizing are read once at startup
// and require a restart to take effect.
func WatchRedisToggle(ctx context.Context, configPath string, logger *slog.Logger, onChange func(enabled bool)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return err
	}

	lastEnabled, err := currentRedisEnabled(configPath)
	if err != nil {
		lastEnabled = false
	}

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != filepath.Base(configPath) || !event.Has(fsnotify.Write) {
					continue
				}
				enabled, err := currentRedisEnabled(configPath)
				if err != nil {
					logger.Warn("config: reload failed", "error", err, "path", configPath)
					continue
				}
				if enabled != lastEnabled {
					lastEnabled = enabled
					onChange(enabled)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config: watcher error", "error", err)
			}
		}
	}()

	return nil
}

func currentRedisEnabled(configPath string) (bool, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return false, err
	}
	return cfg.RedisEnabled, nil
}
