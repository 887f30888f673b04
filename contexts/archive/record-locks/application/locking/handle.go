package locking

import (
	"context"
	"sync"
	"time"

	domainerrors "quorum/contexts/archive/record-locks/domain/errors"
)

// Handle is a reentrant lock over one record. The in-process counter tracks
// only this holder's nesting depth; whether the record is locked at all is
// decided solely by the store row, since other processes must agree.
type Handle struct {
	service  *Service
	recordID int64

	mu    sync.Mutex
	depth int
}

// TryAcquire attempts the lock without blocking. Reentrant calls increment
// the counter with no store round-trip; otherwise one conditional update
// decides the outcome and contention reports false, not an error.
func (h *Handle) TryAcquire(ctx context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.depth > 0 {
		h.depth++
		return true, nil
	}
	ok, err := h.service.Store.TryLock(ctx, h.recordID)
	if err != nil {
		return false, err
	}
	if ok {
		h.depth = 1
	}
	return ok, nil
}

// Acquire blocks until the lock is held, retrying the conditional update on
// the service's backoff schedule. It returns ctx.Err() when ctx ends first.
func (h *Handle) Acquire(ctx context.Context) error {
	return h.acquire(ctx, time.Time{})
}

// AcquireTimeout is Acquire bounded by a deadline. Expiry fails with
// ErrAcquireTimeout, distinct from ordinary contention.
func (h *Handle) AcquireTimeout(ctx context.Context, timeout time.Duration) error {
	return h.acquire(ctx, time.Now().Add(timeout))
}

func (h *Handle) acquire(ctx context.Context, deadline time.Time) error {
	wait := h.service.initialBackoff()
	for {
		ok, err := h.TryAcquire(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			if h.service.Metrics != nil {
				h.service.Metrics.AcquireTimedOut()
			}
			return domainerrors.ErrAcquireTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		wait = time.Duration(float64(wait) * h.service.backoffFactor())
		if max := h.service.maxBackoff(); wait > max {
			wait = max
		}
	}
}

// Release decrements the nesting counter and clears the store flag only when
// the counter reaches zero. Releasing an unheld handle is a no-op.
func (h *Handle) Release(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.depth == 0 {
		return nil
	}
	if h.depth > 1 {
		h.depth--
		return nil
	}
	if err := h.service.Store.Unlock(ctx, h.recordID); err != nil {
		return err
	}
	h.depth = 0
	return nil
}

// Depth reports the current nesting level of this handle.
func (h *Handle) Depth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.depth
}
