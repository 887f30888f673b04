package messagelog

import (
	"log/slog"

	httpadapter "quorum/contexts/archive/message-log/adapters/http"
	"quorum/contexts/archive/message-log/adapters/memory"
	"quorum/contexts/archive/message-log/application/commands"
	"quorum/contexts/archive/message-log/application/queries"
	"quorum/contexts/archive/message-log/ports"
	"quorum/internal/shared/outbox"
)

type Module struct {
	Handler httpadapter.Handler
	Mark    commands.MarkForDeletionUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Messages ports.MessageRepository
	Clock    ports.Clock
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	trackUseCase := commands.TrackMessageUseCase{
		Messages: deps.Messages,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	markUseCase := commands.MarkForDeletionUseCase{
		Messages: deps.Messages,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	untrackUseCase := commands.UntrackMessageUseCase{
		Messages: deps.Messages,
		Logger:   deps.Logger,
	}
	messagesUseCase := queries.MessagesUseCase{
		Messages: deps.Messages,
	}
	return Module{
		Handler: httpadapter.Handler{
			Track:    trackUseCase,
			Untrack:  untrackUseCase,
			Messages: messagesUseCase,
			Logger:   deps.Logger,
		},
		Mark: markUseCase,
	}
}

func NewInMemoryModule(log *outbox.MemoryLog, logger *slog.Logger) Module {
	store := memory.NewStore(log)
	module := NewModule(Dependencies{
		Messages: store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
