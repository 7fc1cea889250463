package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/jotter/internal/state"
)

const maxBackoff = 30 * time.Second

// StartPoller launches a background goroutine that reloads mgr at a fixed
// cadence, backing off while the server is unreachable. It returns
// immediately.
func StartPoller(ctx context.Context, mgr *state.Manager, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			if err := mgr.Load(ctx); err != nil && ctx.Err() == nil {
				logger.Debug("background reload failed", "error", err)
			}
			timer.Reset(calculateBackoff(mgr.Snapshot().ConsecutiveFailures, interval))
		}
	}()
}

// calculateBackoff doubles base for each consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
