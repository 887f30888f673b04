package workers

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/archive/record-locks/application"
	"quorum/contexts/archive/record-locks/ports"
)

// Sweeper force-clears lock flags whose locked_at exceeds the staleness
// window, recovering records whose holder crashed without releasing.
type Sweeper struct {
	Store    ports.Store
	Window   time.Duration
	Interval time.Duration
	Clock    ports.Clock
	Metrics  ports.Metrics
	Logger   *slog.Logger
}

// RunOnce performs a single idempotent sweep.
func (s Sweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	window := s.Window
	if window <= 0 {
		window = 5 * time.Minute
	}
	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	cleared, err := s.Store.ReleaseStale(ctx, now.Add(-window))
	if err != nil {
		logger.Error("stale lock sweep failed",
			"event", "lock_sweep_failed",
			"module", "archive/record-locks",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if cleared > 0 {
		if s.Metrics != nil {
			s.Metrics.StaleCleared(cleared)
		}
		logger.Warn("stale locks cleared",
			"event", "lock_sweep_cleared",
			"module", "archive/record-locks",
			"layer", "worker",
			"cleared_count", cleared,
			"staleness_window", window.String(),
		)
	}
	return nil
}

// Run sweeps immediately and then on every interval tick until ctx ends.
func (s Sweeper) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	logger := application.ResolveLogger(s.Logger)
	logger.Info("lock sweeper started",
		"event", "lock_sweeper_started",
		"module", "archive/record-locks",
		"layer", "worker",
		"sweep_interval", interval.String(),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
