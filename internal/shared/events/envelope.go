package events

import (
	"context"
	"time"
)

// Envelope is the canonical shape of a persisted domain event.
// Ids are assigned by the events table and strictly increase in insert order;
// processed flips false to true exactly once, under the dispatcher.
type Envelope struct {
	ID            int64          `json:"id"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	Type          string         `json:"type"`
	Payload       map[string]any `json:"payload"`
	CorrelationID string         `json:"correlation_id"`
	OccurredAt    time.Time      `json:"occurred_at"`
	Processed     bool           `json:"processed"`
	ProcessedAt   *time.Time     `json:"processed_at,omitempty"`
}

// Subscriber consumes envelopes of the event type it registered for.
// A subscriber error is logged and counted; it never blocks the event from
// being marked processed.
type Subscriber func(ctx context.Context, event Envelope) error
