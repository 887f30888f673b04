package ports

import (
	"context"

	"quorum/internal/shared/events"
)

// DeliverFunc hands one claimed envelope to the fan-out. It returns nothing:
// subscriber failures are contained downstream and never keep the event from
// being marked processed.
type DeliverFunc func(ctx context.Context, event events.Envelope)

// EventStore reads and claims rows of the shared events table. Dispatch must
// claim the row so that one worker across all process instances delivers it;
// an absent, already-processed, or concurrently claimed row is a no-op
// reported as (false, nil).
type EventStore interface {
	UnprocessedIDs(ctx context.Context) ([]int64, error)
	Dispatch(ctx context.Context, eventID int64, deliver DeliverFunc) (bool, error)
	GetEvent(ctx context.Context, eventID int64) (events.Envelope, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]events.Envelope, error)
}

type EventFilter struct {
	Processed *bool
	Limit     int
}

// Listener surfaces live event-id notifications. Listen blocks until ctx ends
// (nil) or the source fails for good (the fatal error); ready fires once when
// the subscription is registered, before the first notify.
type Listener interface {
	Listen(ctx context.Context, ready func(), notify func(eventID int64)) error
}

// Fanout delivers one envelope to every subscriber of its type.
type Fanout interface {
	Dispatch(ctx context.Context, event events.Envelope)
}

type Metrics interface {
	EventEnqueued()
	EventDropped()
	EventProcessed()
	DispatchStarted()
	DispatchFinished()
}
