package commands

import (
	"context"
	"log/slog"
	"sort"
	"time"

	application "quorum/contexts/archive/vote-sessions/application"
	"quorum/contexts/archive/vote-sessions/domain/entities"
	domainerrors "quorum/contexts/archive/vote-sessions/domain/errors"
	"quorum/contexts/archive/vote-sessions/ports"
)

// CreateSessionCommand opens a vote session around a proposed change. Exactly
// one of Build or Deletion must be set, matching Kind.
type CreateSessionCommand struct {
	Kind          entities.SessionKind
	AuthorID      int64
	PassThreshold float64
	FailThreshold float64
	MessageIDs    []int64
	Build         *entities.BuildConfirmation
	Deletion      *entities.LogDeletion
}

type CreateSessionUseCase struct {
	Sessions ports.SessionRepository
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (uc CreateSessionUseCase) Execute(ctx context.Context, cmd CreateSessionCommand) (entities.VoteSession, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("vote session creation started",
		"event", "sessions_create_started",
		"module", "archive/vote-sessions",
		"layer", "application",
		"kind", string(cmd.Kind),
		"author_id", cmd.AuthorID,
	)

	if err := validateCreate(cmd); err != nil {
		logger.Warn("vote session creation validation failed",
			"event", "sessions_create_validation_failed",
			"module", "archive/vote-sessions",
			"layer", "application",
			"kind", string(cmd.Kind),
			"author_id", cmd.AuthorID,
			"error", err.Error(),
		)
		return entities.VoteSession{}, err
	}

	session := entities.VoteSession{
		Kind:          cmd.Kind,
		AuthorID:      cmd.AuthorID,
		PassThreshold: cmd.PassThreshold,
		FailThreshold: cmd.FailThreshold,
		Status:        entities.StatusOpen,
		Result:        entities.ResultPending,
		MessageIDs:    dedupeMessageIDs(cmd.MessageIDs),
		Build:         cmd.Build,
		Deletion:      cmd.Deletion,
		CreatedAt:     uc.now(),
	}
	created, err := uc.Sessions.CreateSession(ctx, session)
	if err != nil {
		logger.Error("vote session creation failed",
			"event", "sessions_create_failed",
			"module", "archive/vote-sessions",
			"layer", "application",
			"kind", string(cmd.Kind),
			"author_id", cmd.AuthorID,
			"error", err.Error(),
		)
		return entities.VoteSession{}, err
	}

	logger.Info("vote session created",
		"event", "sessions_created",
		"module", "archive/vote-sessions",
		"layer", "application",
		"session_id", created.ID,
		"kind", string(created.Kind),
		"message_count", len(created.MessageIDs),
	)
	return created, nil
}

func validateCreate(cmd CreateSessionCommand) error {
	if cmd.AuthorID <= 0 {
		return domainerrors.ErrInvalidSessionInput
	}
	if cmd.PassThreshold <= 0 || cmd.FailThreshold >= 0 {
		return domainerrors.ErrInvalidThresholds
	}
	if len(dedupeMessageIDs(cmd.MessageIDs)) > entities.MaxSessionMessages {
		return domainerrors.ErrTooManyMessages
	}
	switch cmd.Kind {
	case entities.KindBuildConfirmation:
		if cmd.Build == nil || cmd.Build.BuildID <= 0 || cmd.Deletion != nil {
			return domainerrors.ErrInvalidSessionInput
		}
	case entities.KindLogDeletion:
		if cmd.Deletion == nil || cmd.Deletion.TargetMessageID <= 0 || cmd.Deletion.TargetChannelID <= 0 || cmd.Build != nil {
			return domainerrors.ErrInvalidSessionInput
		}
	default:
		return domainerrors.ErrInvalidSessionInput
	}
	return nil
}

// dedupeMessageIDs collapses the caller's list to set semantics, keeping a
// stable ascending order.
func dedupeMessageIDs(messageIDs []int64) []int64 {
	if len(messageIDs) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(messageIDs))
	deduped := make([]int64, 0, len(messageIDs))
	for _, id := range messageIDs {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}
	sort.Slice(deduped, func(i, j int) bool { return deduped[i] < deduped[j] })
	if len(deduped) == 0 {
		return nil
	}
	return deduped
}

func (uc CreateSessionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
