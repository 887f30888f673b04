package buildregistry

import (
	"log/slog"
	"time"

	httpadapter "quorum/contexts/archive/build-registry/adapters/http"
	"quorum/contexts/archive/build-registry/adapters/memory"
	"quorum/contexts/archive/build-registry/application/commands"
	"quorum/contexts/archive/build-registry/application/queries"
	"quorum/contexts/archive/build-registry/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Review  commands.ReviewBuildUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Builds      ports.BuildRepository
	Locks       ports.RecordLocker
	LockTimeout time.Duration
	Clock       ports.Clock
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	submitUseCase := commands.SubmitBuildUseCase{
		Builds: deps.Builds,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	editUseCase := commands.EditBuildUseCase{
		Builds:      deps.Builds,
		Locks:       deps.Locks,
		LockTimeout: deps.LockTimeout,
		Clock:       deps.Clock,
		Logger:      deps.Logger,
	}
	reviewUseCase := commands.ReviewBuildUseCase{
		Builds:      deps.Builds,
		Locks:       deps.Locks,
		LockTimeout: deps.LockTimeout,
		Clock:       deps.Clock,
		Logger:      deps.Logger,
	}
	buildsUseCase := queries.BuildsUseCase{
		Builds: deps.Builds,
	}
	return Module{
		Handler: httpadapter.Handler{
			Submit: submitUseCase,
			Edit:   editUseCase,
			Builds: buildsUseCase,
			Logger: deps.Logger,
		},
		Review: reviewUseCase,
	}
}

// NewInMemoryModule wires the module against a caller-built memory store. The
// locker is supplied from outside because acquisition strategy lives in its
// own module; the store doubles as that locker's persistence seam.
func NewInMemoryModule(store *memory.Store, locks ports.RecordLocker, logger *slog.Logger) Module {
	module := NewModule(Dependencies{
		Builds: store,
		Locks:  locks,
		Logger: logger,
	})
	module.Store = store
	return module
}
