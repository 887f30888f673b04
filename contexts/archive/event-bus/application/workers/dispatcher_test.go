package workers_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quorum/contexts/archive/event-bus/adapters/memory"
	"quorum/contexts/archive/event-bus/application/workers"
	"quorum/internal/platform/messaging"
	"quorum/internal/shared/events"
	"quorum/internal/shared/outbox"
)

type recordingFanout struct {
	mu        sync.Mutex
	delivered []int64
}

func (f *recordingFanout) Dispatch(_ context.Context, event events.Envelope) {
	f.mu.Lock()
	f.delivered = append(f.delivered, event.ID)
	f.mu.Unlock()
}

func (f *recordingFanout) ids() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.delivered...)
}

// gatedFanout parks every delivery until release closes, so tests can hold a
// worker busy at a known point.
type gatedFanout struct {
	recordingFanout
	started chan int64
	release chan struct{}
}

func (f *gatedFanout) Dispatch(ctx context.Context, event events.Envelope) {
	f.started <- event.ID
	<-f.release
	f.recordingFanout.Dispatch(ctx, event)
}

type busMetrics struct {
	mu       sync.Mutex
	enqueued int
	dropped  int
}

func (m *busMetrics) EventEnqueued() {
	m.mu.Lock()
	m.enqueued++
	m.mu.Unlock()
}

func (m *busMetrics) EventDropped() {
	m.mu.Lock()
	m.dropped++
	m.mu.Unlock()
}

func (m *busMetrics) EventProcessed()   {}
func (m *busMetrics) DispatchStarted()  {}
func (m *busMetrics) DispatchFinished() {}

func (m *busMetrics) droppedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

type failingListener struct{}

func (failingListener) Listen(context.Context, func(), func(int64)) error {
	return errors.New("listen: connection refused")
}

type subscriberFailures struct {
	mu    sync.Mutex
	count int
}

func (c *subscriberFailures) SubscriberFailed() {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
}

func (c *subscriberFailures) failures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func appendEvent(log *outbox.MemoryLog) int64 {
	return log.Append(events.Envelope{
		AggregateType: "build",
		AggregateID:   "1",
		Type:          "build_submitted",
		Payload:       map[string]any{"build_id": int64(1)},
	})
}

func waitFor(t *testing.T, timeout time.Duration, describe string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", describe)
}

func TestRunReplaysBacklogInOrder(t *testing.T) {
	log := outbox.NewMemoryLog()
	for i := 0; i < 3; i++ {
		appendEvent(log)
	}
	store := memory.NewStore(log)
	fanout := &recordingFanout{}
	dispatcher := &workers.Dispatcher{
		Store:       store,
		Listener:    store,
		Fanout:      fanout,
		QueueSize:   8,
		Concurrency: 1,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(ctx) }()

	waitFor(t, time.Second, "backlog to drain", func() bool {
		return len(log.UnprocessedIDs()) == 0
	})
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}

	ids := fanout.ids()
	if len(ids) != 3 {
		t.Fatalf("delivered = %v, want 3 events", ids)
	}
	for i, id := range ids {
		if id != int64(i+1) {
			t.Fatalf("delivery order = %v, want ascending ids", ids)
		}
	}
}

func TestDuplicateNotificationsDeliverOnce(t *testing.T) {
	log := outbox.NewMemoryLog()
	store := memory.NewStore(log)
	fanout := &recordingFanout{}
	dispatcher := &workers.Dispatcher{
		Store:       store,
		Listener:    store,
		Fanout:      fanout,
		QueueSize:   8,
		Concurrency: 2,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(ctx) }()

	id := appendEvent(log)
	waitFor(t, time.Second, "live event to process", func() bool {
		envelope, ok := log.Get(id)
		return ok && envelope.Processed
	})

	dispatcher.Notify(id)
	dispatcher.Notify(999)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}

	if ids := fanout.ids(); len(ids) != 1 || ids[0] != id {
		t.Fatalf("delivered = %v, want exactly one delivery of %d", ids, id)
	}
}

func TestFailingSubscriberStillMarksProcessed(t *testing.T) {
	log := outbox.NewMemoryLog()
	store := memory.NewStore(log)
	counter := &subscriberFailures{}
	registry := messaging.NewRegistry(nil, counter)
	registry.Register("build_submitted", func(context.Context, events.Envelope) error {
		return errors.New("audit sink offline")
	})
	dispatcher := &workers.Dispatcher{
		Store:       store,
		Listener:    store,
		Fanout:      registry,
		QueueSize:   8,
		Concurrency: 1,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(ctx) }()

	id := appendEvent(log)
	waitFor(t, time.Second, "event to be marked processed", func() bool {
		envelope, ok := log.Get(id)
		return ok && envelope.Processed
	})
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := counter.failures(); got != 1 {
		t.Fatalf("subscriber failures = %d, want 1", got)
	}
}

func TestQueueFullDropIsRecoveredByRestart(t *testing.T) {
	log := outbox.NewMemoryLog()
	store := memory.NewStore(log)
	fanout := &gatedFanout{
		started: make(chan int64, 8),
		release: make(chan struct{}),
	}
	metrics := &busMetrics{}
	dispatcher := &workers.Dispatcher{
		Store:          store,
		Listener:       store,
		Fanout:         fanout,
		Metrics:        metrics,
		QueueSize:      1,
		EnqueueTimeout: 25 * time.Millisecond,
		Concurrency:    1,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dispatcher.Run(ctx) }()

	first := appendEvent(log)
	select {
	case <-fanout.started:
	case <-time.After(time.Second):
		t.Fatalf("worker never picked up the first event")
	}
	second := appendEvent(log)
	third := appendEvent(log)

	waitFor(t, time.Second, "overflow notification to drop", func() bool {
		return metrics.droppedCount() == 1
	})

	cancel()
	close(fanout.release)
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, id := range []int64{first, second} {
		envelope, ok := log.Get(id)
		if !ok || !envelope.Processed {
			t.Fatalf("event %d should have drained before shutdown", id)
		}
	}
	if envelope, _ := log.Get(third); envelope.Processed {
		t.Fatalf("dropped event %d must stay unprocessed until restart", third)
	}

	replayFanout := &recordingFanout{}
	restarted := &workers.Dispatcher{
		Store:       store,
		Listener:    store,
		Fanout:      replayFanout,
		QueueSize:   8,
		Concurrency: 1,
	}
	ctx2, cancel2 := context.WithCancel(context.Background())
	done2 := make(chan error, 1)
	go func() { done2 <- restarted.Run(ctx2) }()

	waitFor(t, time.Second, "restart to replay the dropped event", func() bool {
		envelope, ok := log.Get(third)
		return ok && envelope.Processed
	})
	cancel2()
	if err := <-done2; err != nil {
		t.Fatalf("restarted run: %v", err)
	}
	if ids := replayFanout.ids(); len(ids) != 1 || ids[0] != third {
		t.Fatalf("replay delivered = %v, want exactly %d", ids, third)
	}
}

func TestRunSurfacesListenerFatalError(t *testing.T) {
	dispatcher := &workers.Dispatcher{
		Store:    memory.NewStore(nil),
		Listener: failingListener{},
		Fanout:   &recordingFanout{},
	}
	if err := dispatcher.Run(context.Background()); err == nil {
		t.Fatalf("expected the listener failure to surface")
	}
}
