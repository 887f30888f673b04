package locking

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/archive/record-locks/application"
	"quorum/contexts/archive/record-locks/ports"
)

const (
	DefaultInitialBackoff = 10 * time.Millisecond
	DefaultBackoffFactor  = 1.5
	DefaultMaxBackoff     = 500 * time.Millisecond
)

// Service hands out reentrant lock handles over one lock store. Backoff
// parameters apply to every handle it creates.
type Service struct {
	Store          ports.Store
	InitialBackoff time.Duration
	BackoffFactor  float64
	MaxBackoff     time.Duration
	Metrics        ports.Metrics
	Logger         *slog.Logger
}

// Handle creates a fresh handle for the record. Reentrancy is per handle:
// two handles for the same record contend through the store like two
// processes would.
func (s *Service) Handle(recordID int64) *Handle {
	return &Handle{service: s, recordID: recordID}
}

// WithLock runs fn while holding the record lock and releases on every exit
// path, fn errors and panics included. A positive timeout bounds the
// acquisition; zero or negative blocks until ctx is done.
func (s *Service) WithLock(ctx context.Context, recordID int64, timeout time.Duration, fn func(ctx context.Context) error) error {
	handle := s.Handle(recordID)

	var err error
	if timeout > 0 {
		err = handle.AcquireTimeout(ctx, timeout)
	} else {
		err = handle.Acquire(ctx)
	}
	if err != nil {
		return err
	}

	defer func() {
		// Release must survive ctx cancellation or the lock would be stuck
		// until the sweeper clears it.
		if releaseErr := handle.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			application.ResolveLogger(s.Logger).Error("record lock release failed",
				"event", "lock_release_failed",
				"module", "archive/record-locks",
				"layer", "application",
				"record_id", recordID,
				"error", releaseErr.Error(),
			)
		}
	}()

	return fn(ctx)
}

func (s *Service) initialBackoff() time.Duration {
	if s.InitialBackoff <= 0 {
		return DefaultInitialBackoff
	}
	return s.InitialBackoff
}

func (s *Service) backoffFactor() float64 {
	if s.BackoffFactor <= 1 {
		return DefaultBackoffFactor
	}
	return s.BackoffFactor
}

func (s *Service) maxBackoff() time.Duration {
	if s.MaxBackoff <= 0 {
		return DefaultMaxBackoff
	}
	return s.MaxBackoff
}
