package eventbus

import (
	"log/slog"
	"time"

	httpadapter "quorum/contexts/archive/event-bus/adapters/http"
	"quorum/contexts/archive/event-bus/adapters/memory"
	"quorum/contexts/archive/event-bus/application/queries"
	"quorum/contexts/archive/event-bus/application/workers"
	"quorum/contexts/archive/event-bus/ports"
	"quorum/internal/shared/outbox"
)

type Module struct {
	Handler    httpadapter.Handler
	Dispatcher *workers.Dispatcher
	Store      *memory.Store
}

// Dependencies wires the bus. The API process passes no Listener and never
// runs the Dispatcher; the worker process runs it under its supervisor.
type Dependencies struct {
	Store          ports.EventStore
	Listener       ports.Listener
	Fanout         ports.Fanout
	Metrics        ports.Metrics
	QueueSize      int
	EnqueueTimeout time.Duration
	Concurrency    int
	InstanceID     string
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	dispatcher := &workers.Dispatcher{
		Store:          deps.Store,
		Listener:       deps.Listener,
		Fanout:         deps.Fanout,
		Metrics:        deps.Metrics,
		QueueSize:      deps.QueueSize,
		EnqueueTimeout: deps.EnqueueTimeout,
		Concurrency:    deps.Concurrency,
		InstanceID:     deps.InstanceID,
		Logger:         deps.Logger,
	}
	eventsUseCase := queries.EventsUseCase{Store: deps.Store}
	return Module{
		Handler: httpadapter.Handler{
			Events: eventsUseCase,
			Logger: deps.Logger,
		},
		Dispatcher: dispatcher,
	}
}

// NewInMemoryModule wires the dispatcher and queries against the shared
// memory log; the memory store doubles as the listener via the append hook.
func NewInMemoryModule(log *outbox.MemoryLog, fanout ports.Fanout, logger *slog.Logger) Module {
	store := memory.NewStore(log)
	module := NewModule(Dependencies{
		Store:    store,
		Listener: store,
		Fanout:   fanout,
		Logger:   logger,
	})
	module.Store = store
	return module
}
