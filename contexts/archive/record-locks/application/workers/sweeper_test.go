package workers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"quorum/contexts/archive/record-locks/adapters/memory"
	"quorum/contexts/archive/record-locks/application/workers"
)

type fakeMetrics struct {
	mu      sync.Mutex
	cleared int64
}

func (f *fakeMetrics) AcquireTimedOut() {}

func (f *fakeMetrics) StaleCleared(count int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared += count
}

func TestSweeperClearsOnlyStaleLocks(t *testing.T) {
	store := memory.NewStore()
	metrics := &fakeMetrics{}
	now := time.Now().UTC()

	store.SetLocked(1, now.Add(-10*time.Minute))
	store.SetLocked(2, now.Add(-time.Minute))

	sweeper := workers.Sweeper{
		Store:   store,
		Window:  5 * time.Minute,
		Metrics: metrics,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if store.IsLocked(1) {
		t.Fatalf("stale lock must be cleared")
	}
	if !store.IsLocked(2) {
		t.Fatalf("fresh lock must survive the sweep")
	}
	if metrics.cleared != 1 {
		t.Fatalf("expected 1 cleared lock recorded, got %d", metrics.cleared)
	}
}

func TestSweeperNoopWithoutStaleLocks(t *testing.T) {
	store := memory.NewStore()
	metrics := &fakeMetrics{}

	store.SetLocked(1, time.Now().UTC())

	sweeper := workers.Sweeper{
		Store:   store,
		Window:  5 * time.Minute,
		Metrics: metrics,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}

	if !store.IsLocked(1) {
		t.Fatalf("fresh lock must stay held")
	}
	if metrics.cleared != 0 {
		t.Fatalf("expected no cleared locks, got %d", metrics.cleared)
	}
}
