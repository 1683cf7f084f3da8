// Package janitor periodically removes expired semantic cache items.
package janitor

import (
	"context"
	"time"

	"github.com/davidbz/relay/internal/clock"
	"github.com/davidbz/relay/internal/observability"
)

// Config contains cleanup scheduling settings.
type Config struct {
	Interval time.Duration `env:"CACHE_CLEANUP_INTERVAL" envDefault:"1h"`
}

// Cleaner removes expired items and reports how many were deleted.
type Cleaner interface {
	CleanupExpiredCache(ctx context.Context) (int, error)
}

// Janitor runs a Cleaner on a fixed interval.
type Janitor struct {
	cleaner Cleaner
	clock   clock.Clock
	cfg     Config
}

// New creates a janitor.
func New(cleaner Cleaner, clk clock.Clock, cfg *Config) *Janitor {
	return &Janitor{
		cleaner: cleaner,
		clock:   clk,
		cfg:     *cfg,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (j *Janitor) Run(ctx context.Context) {
	if j.cfg.Interval <= 0 {
		observability.FromContext(ctx).Info("cache cleanup disabled")
		return
	}

	ticker := j.clock.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep performs one cleanup pass. Errors are logged and retried on the next tick.
func (j *Janitor) Sweep(ctx context.Context) int {
	logger := observability.FromContext(ctx)

	removed, err := j.cleaner.CleanupExpiredCache(ctx)
	if err != nil {
		logger.Error("cache cleanup failed", observability.Error(err))
		return 0
	}

	if removed > 0 {
		logger.Info("expired cache items removed", observability.Int("removed", removed))
	}
	return removed
}
