// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.
// Cross-module glue (vote session side effects into the registry and the
// log) lives here too; the context packages never import each other.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	buildregistry "quorum/contexts/archive/build-registry"
	buildspostgres "quorum/contexts/archive/build-registry/adapters/postgres"
	registrycommands "quorum/contexts/archive/build-registry/application/commands"
	registryentities "quorum/contexts/archive/build-registry/domain/entities"
	eventbus "quorum/contexts/archive/event-bus"
	buspostgres "quorum/contexts/archive/event-bus/adapters/postgres"
	messagelog "quorum/contexts/archive/message-log"
	logpostgres "quorum/contexts/archive/message-log/adapters/postgres"
	logcommands "quorum/contexts/archive/message-log/application/commands"
	logentities "quorum/contexts/archive/message-log/domain/entities"
	recordlocks "quorum/contexts/archive/record-locks"
	votesessions "quorum/contexts/archive/vote-sessions"
	sessionspostgres "quorum/contexts/archive/vote-sessions/adapters/postgres"
	sessionentities "quorum/contexts/archive/vote-sessions/domain/entities"
	"quorum/internal/platform/config"
	"quorum/internal/platform/db"
	"quorum/internal/platform/httpserver"
	"quorum/internal/platform/messaging"
	"quorum/internal/platform/metrics"
	"quorum/internal/shared/events"
	"quorum/internal/shared/outbox"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	bus           eventbus.Module
	locks         recordlocks.Module
	metricsAddr   string
	runDispatcher bool
	runSweeper    bool
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	appender := outbox.Appender{Channel: cfg.EventsChannel}
	buildsRepo := buildspostgres.NewRepository(pg.DB, appender, logger)
	messagesRepo := logpostgres.NewRepository(pg.DB, appender, logger)
	sessionsRepo := sessionspostgres.NewRepository(pg.DB, appender, logger)

	locks := recordlocks.NewModule(recordlocks.Dependencies{
		Store:   buildsRepo,
		Metrics: metrics.LockMetrics{},
		Logger:  logger,
	})

	buildsModule := buildregistry.NewModule(buildregistry.Dependencies{
		Builds:      buildsRepo,
		Locks:       locks.Service,
		LockTimeout: cfg.LockAcquireTimeout,
		Logger:      logger,
	})

	messagesModule := messagelog.NewModule(messagelog.Dependencies{
		Messages: messagesRepo,
		Logger:   logger,
	})

	sessionsModule := votesessions.NewModule(votesessions.Dependencies{
		Sessions: sessionsRepo,
		Builds:   buildDirectory{review: buildsModule.Review},
		Messages: messageDirectory{mark: messagesModule.Mark},
		Metrics:  metrics.VoteMetrics{},
		Logger:   logger,
	})

	// The API wires the bus for its read endpoints only; dispatching is the
	// worker's job.
	busModule := eventbus.NewModule(eventbus.Dependencies{
		Store:  buspostgres.NewStore(pg.DB, logger),
		Logger: logger,
	})

	server := httpserver.New(
		buildsModule,
		messagesModule,
		sessionsModule,
		busModule,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	appender := outbox.Appender{Channel: cfg.EventsChannel}
	buildsRepo := buildspostgres.NewRepository(pg.DB, appender, logger)

	locks := recordlocks.NewModule(recordlocks.Dependencies{
		Store:         buildsRepo,
		SweepWindow:   cfg.LockStaleness,
		SweepInterval: cfg.LockSweepInterval,
		Metrics:       metrics.LockMetrics{},
		Logger:        logger,
	})

	registry := messaging.NewRegistry(logger, metrics.BusMetrics{})
	registerWorkerSubscribers(registry, logger)
	logger.Info("worker subscribers registered",
		"event", "bootstrap_subscribers_registered",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"session_closed_handlers", registry.Handlers(sessionentities.EventTypeVoteSessionClosed),
		"purge_handlers", registry.Handlers(logentities.EventTypeMessageMarkedForDeletion),
	)

	busModule := eventbus.NewModule(eventbus.Dependencies{
		Store: buspostgres.NewStore(pg.DB, logger),
		Listener: &buspostgres.Listener{
			Connect:     db.ListenDialer(cfg.PostgresDSN),
			Channel:     cfg.EventsChannel,
			MaxAttempts: cfg.ListenMaxAttempts,
			MaxBackoff:  cfg.ListenMaxBackoff,
			Logger:      logger,
		},
		Fanout:         registry,
		Metrics:        metrics.BusMetrics{},
		QueueSize:      cfg.EventQueueSize,
		EnqueueTimeout: cfg.EventEnqueueTimeout,
		Concurrency:    cfg.DispatchConcurrency,
		InstanceID:     uuid.NewString(),
		Logger:         logger,
	})

	return &WorkerApp{
		postgres:      pg,
		bus:           busModule,
		locks:         locks,
		metricsAddr:   normalizeAddr(cfg.MetricsPort),
		runDispatcher: cfg.EnableEventDispatcher,
		runSweeper:    cfg.EnableLockSweeper,
		logger:        logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"dispatcher_enabled", w.runDispatcher,
		"sweeper_enabled", w.runSweeper,
	)

	group, ctx := errgroup.WithContext(ctx)

	if w.runDispatcher {
		group.Go(func() error {
			return w.bus.Dispatcher.Run(ctx)
		})
	}
	if w.runSweeper {
		group.Go(func() error {
			return w.locks.Sweeper.Run(ctx)
		})
	}
	group.Go(func() error {
		return w.serveMetrics(ctx)
	})

	return group.Wait()
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) serveMetrics(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte(`{"status":"ok"}`))
	})

	server := &http.Server{Addr: w.metricsAddr, Handler: mux}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	w.logger.Info("metrics server starting",
		"event", "metrics_server_starting",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"addr", w.metricsAddr,
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func registerWorkerSubscribers(registry *messaging.Registry, logger *slog.Logger) {
	registry.Register(sessionentities.EventTypeVoteSessionClosed, func(_ context.Context, event events.Envelope) error {
		logger.Info("vote session closure audited",
			"event", "worker_session_closed_audited",
			"module", "internal/app/bootstrap",
			"layer", "worker",
			"event_id", event.ID,
			"session_id", event.AggregateID,
			"kind", event.Payload["kind"],
			"result", event.Payload["result"],
			"net", event.Payload["net"],
		)
		return nil
	})

	// Purging from the chat platform is a separate integration; the worker
	// records what is due so the queue is visible in the logs and metrics.
	registry.Register(logentities.EventTypeMessageMarkedForDeletion, func(_ context.Context, event events.Envelope) error {
		logger.Info("message queued for purge",
			"event", "worker_purge_queued",
			"module", "internal/app/bootstrap",
			"layer", "worker",
			"event_id", event.ID,
			"message_id", event.AggregateID,
			"channel_id", event.Payload["channel_id"],
		)
		return nil
	})
}

// buildDirectory settles a decided build through the registry's review flow.
// Session changes convert field by field; the two contexts keep separate
// Change types on purpose.
type buildDirectory struct {
	review registrycommands.ReviewBuildUseCase
}

func (d buildDirectory) ApproveBuild(ctx context.Context, buildID int64, changes []sessionentities.Change) error {
	converted := make([]registryentities.Change, 0, len(changes))
	for _, change := range changes {
		converted = append(converted, registryentities.Change{
			Field: change.Field,
			From:  change.From,
			To:    change.To,
		})
	}
	return d.review.Confirm(ctx, registrycommands.ConfirmBuildCommand{
		BuildID: buildID,
		Changes: converted,
	})
}

func (d buildDirectory) DenyBuild(ctx context.Context, buildID int64) error {
	return d.review.Deny(ctx, registrycommands.DenyBuildCommand{BuildID: buildID})
}

type messageDirectory struct {
	mark logcommands.MarkForDeletionUseCase
}

func (d messageDirectory) MarkMessageForDeletion(ctx context.Context, messageID int64) error {
	return d.mark.Execute(ctx, logcommands.MarkForDeletionCommand{MessageID: messageID})
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
