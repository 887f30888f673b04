package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"quorum/internal/shared/events"
)

// MemoryLog is the in-memory stand-in for the events table. Module memory
// adapters append to it and the in-memory bus wiring dispatches from it, so
// module tests can observe full event flow without a database.
type MemoryLog struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]*events.Envelope
	order   []int64
	claimed map[int64]bool
	notify  func(eventID int64)
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		rows:    make(map[int64]*events.Envelope),
		claimed: make(map[int64]bool),
	}
}

// OnAppend registers the live-notification hook invoked after each append,
// mirroring the commit-time pg_notify of the postgres appender.
func (l *MemoryLog) OnAppend(notify func(eventID int64)) {
	l.mu.Lock()
	l.notify = notify
	l.mu.Unlock()
}

func (l *MemoryLog) Append(envelope events.Envelope) int64 {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	envelope.ID = id
	envelope.Processed = false
	envelope.ProcessedAt = nil
	if envelope.CorrelationID == "" {
		envelope.CorrelationID = uuid.NewString()
	}
	if envelope.OccurredAt.IsZero() {
		envelope.OccurredAt = time.Now().UTC()
	}
	stored := envelope
	l.rows[id] = &stored
	l.order = append(l.order, id)
	notify := l.notify
	l.mu.Unlock()

	if notify != nil {
		notify(id)
	}
	return id
}

func (l *MemoryLog) Get(eventID int64) (events.Envelope, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	row, ok := l.rows[eventID]
	if !ok {
		return events.Envelope{}, false
	}
	return *row, true
}

func (l *MemoryLog) UnprocessedIDs() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]int64, 0, len(l.order))
	for _, id := range l.order {
		if row := l.rows[id]; row != nil && !row.Processed {
			ids = append(ids, id)
		}
	}
	return ids
}

func (l *MemoryLog) List(processed *bool, limit int) []events.Envelope {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]events.Envelope, 0, len(l.order))
	for _, id := range l.order {
		row := l.rows[id]
		if row == nil {
			continue
		}
		if processed != nil && row.Processed != *processed {
			continue
		}
		items = append(items, *row)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items
}

// Dispatch mimics the skip-locked dispatch transaction: an absent, processed,
// or already-claimed row is a no-op; otherwise the envelope is delivered and
// the row marked processed.
func (l *MemoryLog) Dispatch(ctx context.Context, eventID int64, deliver func(context.Context, events.Envelope)) (bool, error) {
	l.mu.Lock()
	row, ok := l.rows[eventID]
	if !ok || row.Processed || l.claimed[eventID] {
		l.mu.Unlock()
		return false, nil
	}
	l.claimed[eventID] = true
	snapshot := *row
	l.mu.Unlock()

	deliver(ctx, snapshot)

	l.mu.Lock()
	now := time.Now().UTC()
	row.Processed = true
	row.ProcessedAt = &now
	delete(l.claimed, eventID)
	l.mu.Unlock()
	return true, nil
}
