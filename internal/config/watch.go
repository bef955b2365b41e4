package config

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// WatchSchedule polls path and calls onUpdate with the schedule section
// whenever the file changes and still loads. It performs an initial load
// before entering the watch loop.
func WatchSchedule(ctx context.Context, path string, interval time.Duration, logger zerolog.Logger, onUpdate func(ScheduleConfig)) error {
	if path == "" {
		path = Path()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	cfg, err := Load(path)
	if err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(cfg.Schedule)
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	lastMod := info.ModTime()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(path)
				if err != nil {
					continue
				}
				if !info.ModTime().After(lastMod) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					logger.Warn().Err(err).Str("path", path).Msg("config reload failed, keeping previous schedule settings")
					continue
				}
				lastMod = info.ModTime()
				logger.Info().Str("path", path).Msg("schedule settings reloaded")
				if onUpdate != nil {
					onUpdate(cfg.Schedule)
				}
			}
		}
	}()

	return nil
}
