package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	application "quorum/contexts/archive/event-bus/application"
	"quorum/contexts/archive/event-bus/ports"
	"quorum/internal/shared/events"
)

const (
	DefaultQueueSize      = 1000
	DefaultEnqueueTimeout = 5 * time.Second
	DefaultConcurrency    = 10
)

// Dispatcher owns the dispatch pipeline: listener notifications and the
// startup backlog feed one bounded queue drained by a fixed worker pool.
// Every path into the queue carries bare event ids; the row itself is read,
// delivered, and marked inside the store's dispatch transaction.
type Dispatcher struct {
	Store          ports.EventStore
	Listener       ports.Listener
	Fanout         ports.Fanout
	Metrics        ports.Metrics
	QueueSize      int
	EnqueueTimeout time.Duration
	Concurrency    int
	InstanceID     string
	Logger         *slog.Logger

	mu        sync.Mutex
	queue     chan int64
	accepting bool
	notifiers sync.WaitGroup
}

// Run blocks until ctx ends or the listener fails for good. The listener's
// subscription must be registered before the backlog is replayed, otherwise
// an event appended between replay and subscribe would wait for the next
// process start; hence the ready handshake. On shutdown the queue is drained
// and in-flight dispatches finish on an uncancelled context.
func (d *Dispatcher) Run(ctx context.Context) error {
	logger := application.ResolveLogger(d.Logger)

	d.mu.Lock()
	d.queue = make(chan int64, d.queueSize())
	d.accepting = true
	queue := d.queue
	d.mu.Unlock()

	logger.Info("event dispatcher starting",
		"event", "bus_dispatcher_starting",
		"module", "archive/event-bus",
		"layer", "worker",
		"instance_id", d.InstanceID,
		"queue_size", d.queueSize(),
		"concurrency", d.concurrency(),
	)

	ready := make(chan struct{})
	var readyOnce sync.Once
	listenerDone := make(chan error, 1)
	go func() {
		listenerDone <- d.Listener.Listen(ctx, func() {
			readyOnce.Do(func() { close(ready) })
		}, d.Notify)
	}()

	select {
	case <-ready:
	case err := <-listenerDone:
		d.stopAccepting()
		return err
	}

	var workers sync.WaitGroup
	deliverCtx := context.WithoutCancel(ctx)
	for i := 0; i < d.concurrency(); i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for eventID := range queue {
				d.dispatch(deliverCtx, logger, eventID)
			}
		}()
	}

	if err := d.replayBacklog(ctx, logger, queue); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("unprocessed backlog replay failed",
			"event", "bus_replay_failed",
			"module", "archive/event-bus",
			"layer", "worker",
			"error", err.Error(),
		)
	}

	err := <-listenerDone

	d.stopAccepting()
	d.notifiers.Wait()
	close(queue)
	workers.Wait()

	logger.Info("event dispatcher stopped",
		"event", "bus_dispatcher_stopped",
		"module", "archive/event-bus",
		"layer", "worker",
		"instance_id", d.InstanceID,
	)
	return err
}

// Notify is the live path: it places one event id on the bounded queue,
// giving up after the enqueue timeout. A dropped or ignored id is not lost
// for good; the replay on the next process start picks the row up again.
func (d *Dispatcher) Notify(eventID int64) {
	d.mu.Lock()
	queue := d.queue
	accepting := d.accepting
	if accepting {
		d.notifiers.Add(1)
	}
	d.mu.Unlock()

	logger := application.ResolveLogger(d.Logger)
	if !accepting {
		logger.Debug("notification outside dispatcher lifetime ignored",
			"event", "bus_notify_ignored",
			"module", "archive/event-bus",
			"layer", "worker",
			"event_id", eventID,
		)
		return
	}
	defer d.notifiers.Done()

	select {
	case queue <- eventID:
		if d.Metrics != nil {
			d.Metrics.EventEnqueued()
		}
		return
	default:
	}

	timer := time.NewTimer(d.enqueueTimeout())
	defer timer.Stop()
	select {
	case queue <- eventID:
		if d.Metrics != nil {
			d.Metrics.EventEnqueued()
		}
	case <-timer.C:
		if d.Metrics != nil {
			d.Metrics.EventDropped()
		}
		logger.Error("dispatch queue full, dropping notification",
			"event", "bus_enqueue_timeout",
			"module", "archive/event-bus",
			"layer", "worker",
			"event_id", eventID,
			"enqueue_timeout", d.enqueueTimeout().String(),
		)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, logger *slog.Logger, eventID int64) {
	if d.Metrics != nil {
		d.Metrics.DispatchStarted()
		defer d.Metrics.DispatchFinished()
	}
	claimed, err := d.Store.Dispatch(ctx, eventID, func(ctx context.Context, event events.Envelope) {
		if d.Fanout != nil {
			d.Fanout.Dispatch(ctx, event)
		}
	})
	if err != nil {
		logger.Error("event dispatch failed",
			"event", "bus_dispatch_failed",
			"module", "archive/event-bus",
			"layer", "worker",
			"event_id", eventID,
			"error", err.Error(),
		)
		return
	}
	if !claimed {
		return
	}
	if d.Metrics != nil {
		d.Metrics.EventProcessed()
	}
	logger.Info("event dispatched",
		"event", "bus_event_dispatched",
		"module", "archive/event-bus",
		"layer", "worker",
		"event_id", eventID,
		"instance_id", d.InstanceID,
	)
}

// replayBacklog feeds every unprocessed event id through the same queue the
// live path uses, in ascending id order, blocking when the queue is full.
func (d *Dispatcher) replayBacklog(ctx context.Context, logger *slog.Logger, queue chan<- int64) error {
	ids, err := d.Store.UnprocessedIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	logger.Info("replaying unprocessed events",
		"event", "bus_replay_started",
		"module", "archive/event-bus",
		"layer", "worker",
		"backlog_count", len(ids),
	)
	for _, eventID := range ids {
		select {
		case queue <- eventID:
			if d.Metrics != nil {
				d.Metrics.EventEnqueued()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (d *Dispatcher) stopAccepting() {
	d.mu.Lock()
	d.accepting = false
	d.mu.Unlock()
}

func (d *Dispatcher) queueSize() int {
	if d.QueueSize > 0 {
		return d.QueueSize
	}
	return DefaultQueueSize
}

func (d *Dispatcher) enqueueTimeout() time.Duration {
	if d.EnqueueTimeout > 0 {
		return d.EnqueueTimeout
	}
	return DefaultEnqueueTimeout
}

func (d *Dispatcher) concurrency() int {
	if d.Concurrency > 0 {
		return d.Concurrency
	}
	return DefaultConcurrency
}
