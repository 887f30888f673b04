package memory

import (
	"context"

	domainerrors "quorum/contexts/archive/event-bus/domain/errors"
	"quorum/contexts/archive/event-bus/ports"
	"quorum/internal/shared/events"
	"quorum/internal/shared/outbox"
)

// Store adapts the shared memory log to the event store and listener ports,
// so the full dispatcher pipeline runs in tests without postgres.
type Store struct {
	log *outbox.MemoryLog
}

func NewStore(log *outbox.MemoryLog) *Store {
	if log == nil {
		log = outbox.NewMemoryLog()
	}
	return &Store{log: log}
}

// EventLog exposes the backing log so tests can append and inspect rows.
func (s *Store) EventLog() *outbox.MemoryLog {
	return s.log
}

func (s *Store) UnprocessedIDs(_ context.Context) ([]int64, error) {
	return s.log.UnprocessedIDs(), nil
}

func (s *Store) Dispatch(ctx context.Context, eventID int64, deliver ports.DeliverFunc) (bool, error) {
	return s.log.Dispatch(ctx, eventID, func(ctx context.Context, event events.Envelope) {
		if deliver != nil {
			deliver(ctx, event)
		}
	})
}

func (s *Store) GetEvent(_ context.Context, eventID int64) (events.Envelope, error) {
	envelope, ok := s.log.Get(eventID)
	if !ok {
		return events.Envelope{}, domainerrors.ErrEventNotFound
	}
	return envelope, nil
}

// ListEvents returns newest first, matching the postgres store.
func (s *Store) ListEvents(_ context.Context, filter ports.EventFilter) ([]events.Envelope, error) {
	items := s.log.List(filter.Processed, 0)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

// Listen registers the append hook as the live notification feed, reports
// ready, and blocks until ctx ends. The memory log never fails, so the only
// exit is cancellation.
func (s *Store) Listen(ctx context.Context, ready func(), notify func(eventID int64)) error {
	s.log.OnAppend(notify)
	if ready != nil {
		ready()
	}
	<-ctx.Done()
	s.log.OnAppend(nil)
	return nil
}

var (
	_ ports.EventStore = (*Store)(nil)
	_ ports.Listener   = (*Store)(nil)
)
