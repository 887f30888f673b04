package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"quorum/internal/shared/events"
)

// FailureCounter records subscriber failures for the metrics surface.
type FailureCounter interface {
	SubscriberFailed()
}

// Registry is the in-process subscriber table the event bus fans out through.
// Subscribers register per event type; an envelope is delivered only to the
// subscribers of its type, and a failing subscriber never blocks the others.
type Registry struct {
	mu          sync.RWMutex
	subscribers map[string][]events.Subscriber
	logger      *slog.Logger
	metrics     FailureCounter
}

func NewRegistry(logger *slog.Logger, metrics FailureCounter) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		subscribers: make(map[string][]events.Subscriber),
		logger:      logger,
		metrics:     metrics,
	}
}

func (r *Registry) Register(eventType string, subscriber events.Subscriber) {
	if eventType == "" || subscriber == nil {
		return
	}
	r.mu.Lock()
	r.subscribers[eventType] = append(r.subscribers[eventType], subscriber)
	r.mu.Unlock()

	r.logger.Info("event subscriber registered",
		"event", "subscriber_registered",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"event_type", eventType,
	)
}

// Handlers reports how many subscribers are registered for the event type.
func (r *Registry) Handlers(eventType string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers[eventType])
}

// Dispatch delivers the envelope to every subscriber of its type. Errors and
// panics are contained per subscriber, logged, and counted.
func (r *Registry) Dispatch(ctx context.Context, event events.Envelope) {
	r.mu.RLock()
	subs := append([]events.Subscriber(nil), r.subscribers[event.Type]...)
	r.mu.RUnlock()

	for _, sub := range subs {
		if err := r.invoke(ctx, sub, event); err != nil {
			if r.metrics != nil {
				r.metrics.SubscriberFailed()
			}
			r.logger.Error("event subscriber failed",
				"event", "subscriber_failed",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"event_id", event.ID,
				"event_type", event.Type,
				"error", err.Error(),
			)
		}
	}
}

func (r *Registry) invoke(ctx context.Context, subscriber events.Subscriber, event events.Envelope) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("subscriber panic: %v", recovered)
		}
	}()
	return subscriber(ctx, event)
}
