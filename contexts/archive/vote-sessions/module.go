package votesessions

import (
	"log/slog"

	httpadapter "quorum/contexts/archive/vote-sessions/adapters/http"
	"quorum/contexts/archive/vote-sessions/adapters/memory"
	"quorum/contexts/archive/vote-sessions/application/commands"
	"quorum/contexts/archive/vote-sessions/application/queries"
	"quorum/contexts/archive/vote-sessions/ports"
	"quorum/internal/shared/outbox"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Sessions ports.SessionRepository
	Builds   ports.BuildDirectory
	Messages ports.MessageDirectory
	Metrics  ports.Metrics
	Clock    ports.Clock
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	createUseCase := commands.CreateSessionUseCase{
		Sessions: deps.Sessions,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	castUseCase := commands.CastVoteUseCase{
		Sessions: deps.Sessions,
		Builds:   deps.Builds,
		Messages: deps.Messages,
		Metrics:  deps.Metrics,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	cancelUseCase := commands.CancelSessionUseCase{
		Sessions: deps.Sessions,
		Metrics:  deps.Metrics,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	sessionsUseCase := queries.SessionsUseCase{
		Sessions: deps.Sessions,
	}
	return Module{
		Handler: httpadapter.Handler{
			Create:   createUseCase,
			Cast:     castUseCase,
			Cancel:   cancelUseCase,
			Sessions: sessionsUseCase,
			Logger:   deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against a fresh memory store. The build
// and message directories stay nil unless the caller supplies them, in which
// case approved sessions reach into those seams after closing.
func NewInMemoryModule(log *outbox.MemoryLog, builds ports.BuildDirectory, messages ports.MessageDirectory, logger *slog.Logger) Module {
	store := memory.NewStore(log)
	module := NewModule(Dependencies{
		Sessions: store,
		Builds:   builds,
		Messages: messages,
		Logger:   logger,
	})
	module.Store = store
	return module
}
