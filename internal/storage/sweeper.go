package storage

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper runs store.SweepExpired every interval until ctx is done.
// A non-positive interval disables background sweeping.
func StartSweeper(ctx context.Context, store Store, interval time.Duration, logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		logger.Info("Session sweeper started", "interval", interval)

		for {
			select {
			case <-ticker.C:
				store.SweepExpired()
			case <-ctx.Done():
				logger.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
	return done
}
