package recordlocks

import (
	"log/slog"
	"time"

	"quorum/contexts/archive/record-locks/adapters/memory"
	"quorum/contexts/archive/record-locks/application/locking"
	"quorum/contexts/archive/record-locks/application/workers"
	"quorum/contexts/archive/record-locks/ports"
)

type Module struct {
	Service *locking.Service
	Sweeper workers.Sweeper
	Store   *memory.Store
}

type Dependencies struct {
	Store          ports.Store
	InitialBackoff time.Duration
	BackoffFactor  float64
	MaxBackoff     time.Duration
	SweepWindow    time.Duration
	SweepInterval  time.Duration
	Clock          ports.Clock
	Metrics        ports.Metrics
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := &locking.Service{
		Store:          deps.Store,
		InitialBackoff: deps.InitialBackoff,
		BackoffFactor:  deps.BackoffFactor,
		MaxBackoff:     deps.MaxBackoff,
		Metrics:        deps.Metrics,
		Logger:         deps.Logger,
	}
	return Module{
		Service: service,
		Sweeper: workers.Sweeper{
			Store:    deps.Store,
			Window:   deps.SweepWindow,
			Interval: deps.SweepInterval,
			Clock:    deps.Clock,
			Metrics:  deps.Metrics,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Store:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
