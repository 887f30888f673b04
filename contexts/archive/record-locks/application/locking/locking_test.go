package locking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quorum/contexts/archive/record-locks/adapters/memory"
	"quorum/contexts/archive/record-locks/application/locking"
	domainerrors "quorum/contexts/archive/record-locks/domain/errors"
)

type fakeMetrics struct {
	mu       sync.Mutex
	timeouts int
	cleared  int64
}

func (f *fakeMetrics) AcquireTimedOut() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.timeouts++
}

func (f *fakeMetrics) StaleCleared(count int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared += count
}

func newService(store *memory.Store, metrics *fakeMetrics) *locking.Service {
	return &locking.Service{
		Store:          store,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  1.5,
		MaxBackoff:     5 * time.Millisecond,
		Metrics:        metrics,
	}
}

func TestTryAcquireContention(t *testing.T) {
	store := memory.NewStore()
	service := newService(store, nil)
	ctx := context.Background()

	first := service.Handle(42)
	second := service.Handle(42)

	ok, err := first.TryAcquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	ok, err = second.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("second acquire errored: %v", err)
	}
	if ok {
		t.Fatalf("expected contention to fail the second handle")
	}
	if !store.IsLocked(42) {
		t.Fatalf("record should be locked")
	}

	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = second.TryAcquire(ctx)
	if err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}
}

func TestReentrantNesting(t *testing.T) {
	store := memory.NewStore()
	service := newService(store, nil)
	ctx := context.Background()
	handle := service.Handle(7)

	for i := 0; i < 2; i++ {
		ok, err := handle.TryAcquire(ctx)
		if err != nil || !ok {
			t.Fatalf("acquire %d: ok=%v err=%v", i, ok, err)
		}
	}
	if handle.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", handle.Depth())
	}

	if err := handle.Release(ctx); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if !store.IsLocked(7) {
		t.Fatalf("record must stay locked after partial release")
	}

	if err := handle.Release(ctx); err != nil {
		t.Fatalf("second release: %v", err)
	}
	if store.IsLocked(7) {
		t.Fatalf("record must unlock at depth zero")
	}

	if err := handle.Release(ctx); err != nil {
		t.Fatalf("release at zero must be a no-op, got %v", err)
	}
}

func TestConcurrentTryAcquireExactlyOne(t *testing.T) {
	store := memory.NewStore()
	service := newService(store, nil)
	ctx := context.Background()

	const callers = 16
	var wg sync.WaitGroup
	results := make([]bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			ok, err := service.Handle(99).TryAcquire(ctx)
			if err != nil {
				t.Errorf("caller %d: %v", slot, err)
				return
			}
			results[slot] = ok
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, ok := range results {
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestAcquireTimeout(t *testing.T) {
	store := memory.NewStore()
	metrics := &fakeMetrics{}
	service := newService(store, metrics)
	ctx := context.Background()

	holder := service.Handle(5)
	if ok, err := holder.TryAcquire(ctx); err != nil || !ok {
		t.Fatalf("holder acquire: ok=%v err=%v", ok, err)
	}

	waiter := service.Handle(5)
	err := waiter.AcquireTimeout(ctx, 20*time.Millisecond)
	if !errors.Is(err, domainerrors.ErrAcquireTimeout) {
		t.Fatalf("expected ErrAcquireTimeout, got %v", err)
	}
	if metrics.timeouts != 1 {
		t.Fatalf("expected one timeout recorded, got %d", metrics.timeouts)
	}
	if !store.IsLocked(5) {
		t.Fatalf("holder must keep the lock after a waiter times out")
	}
}

func TestAcquireBlocksUntilRelease(t *testing.T) {
	store := memory.NewStore()
	service := newService(store, nil)
	ctx := context.Background()

	holder := service.Handle(3)
	if ok, err := holder.TryAcquire(ctx); err != nil || !ok {
		t.Fatalf("holder acquire: ok=%v err=%v", ok, err)
	}

	go func() {
		time.Sleep(15 * time.Millisecond)
		_ = holder.Release(context.Background())
	}()

	waiter := service.Handle(3)
	if err := waiter.Acquire(ctx); err != nil {
		t.Fatalf("blocking acquire: %v", err)
	}
	if waiter.Depth() != 1 {
		t.Fatalf("expected waiter to hold the lock")
	}
}

func TestAcquireHonorsContextCancel(t *testing.T) {
	store := memory.NewStore()
	service := newService(store, nil)

	holder := service.Handle(11)
	if ok, err := holder.TryAcquire(context.Background()); err != nil || !ok {
		t.Fatalf("holder acquire: ok=%v err=%v", ok, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()

	err := service.Handle(11).Acquire(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline, got %v", err)
	}
}

func TestWithLockReleasesOnError(t *testing.T) {
	store := memory.NewStore()
	service := newService(store, nil)
	ctx := context.Background()

	boom := errors.New("edit failed")
	err := service.WithLock(ctx, 8, 0, func(context.Context) error {
		if !store.IsLocked(8) {
			t.Fatalf("lock must be held inside the guarded block")
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error to surface, got %v", err)
	}
	if store.IsLocked(8) {
		t.Fatalf("lock must be released after fn error")
	}
}

func TestWithLockTimeoutSurfacesDistinctError(t *testing.T) {
	store := memory.NewStore()
	service := newService(store, nil)
	ctx := context.Background()

	holder := service.Handle(2)
	if ok, err := holder.TryAcquire(ctx); err != nil || !ok {
		t.Fatalf("holder acquire: ok=%v err=%v", ok, err)
	}

	err := service.WithLock(ctx, 2, 20*time.Millisecond, func(context.Context) error {
		t.Fatalf("guarded block must not run without the lock")
		return nil
	})
	if !errors.Is(err, domainerrors.ErrAcquireTimeout) {
		t.Fatalf("expected ErrAcquireTimeout, got %v", err)
	}
}
