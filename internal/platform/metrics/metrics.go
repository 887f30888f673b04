package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorum_events_enqueued_total",
		Help: "Total number of event notifications placed on the dispatch queue.",
	})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorum_events_dropped_total",
		Help: "Total number of event notifications dropped because the dispatch queue stayed full past the put timeout.",
	})

	EventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorum_events_processed_total",
		Help: "Total number of events dispatched and marked processed.",
	})

	SubscriberFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorum_subscriber_failures_total",
		Help: "Total number of subscriber errors swallowed during dispatch.",
	})

	DispatchInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quorum_dispatch_in_flight",
		Help: "Number of events currently inside a dispatch transaction.",
	})

	LockAcquireTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorum_lock_acquire_timeouts_total",
		Help: "Total number of record lock acquisitions that gave up on timeout.",
	})

	StaleLocksCleared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorum_stale_locks_cleared_total",
		Help: "Total number of stale record locks force-cleared by the sweeper.",
	})

	VotesCast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quorum_votes_cast_total",
		Help: "Total number of vote upserts accepted, toggles included.",
	})

	SessionsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quorum_vote_sessions_closed_total",
		Help: "Total number of vote sessions closed, labelled by result.",
	}, []string{"result"})
)

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// BusMetrics adapts the counters to the event bus metrics port.
type BusMetrics struct{}

func (BusMetrics) EventEnqueued() { EventsEnqueued.Inc() }

func (BusMetrics) EventDropped() { EventsDropped.Inc() }

func (BusMetrics) EventProcessed() { EventsProcessed.Inc() }

func (BusMetrics) SubscriberFailed() { SubscriberFailures.Inc() }

func (BusMetrics) DispatchStarted() { DispatchInFlight.Inc() }

func (BusMetrics) DispatchFinished() { DispatchInFlight.Dec() }

// LockMetrics adapts the counters to the record lock metrics port.
type LockMetrics struct{}

func (LockMetrics) AcquireTimedOut() { LockAcquireTimeouts.Inc() }

func (LockMetrics) StaleCleared(count int64) { StaleLocksCleared.Add(float64(count)) }

// VoteMetrics adapts the counters to the vote session metrics port.
type VoteMetrics struct{}

func (VoteMetrics) VoteCast() { VotesCast.Inc() }

func (VoteMetrics) SessionClosed(result string) { SessionsClosed.WithLabelValues(result).Inc() }
