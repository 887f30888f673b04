package commands

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/archive/message-log/application"
	domainerrors "quorum/contexts/archive/message-log/domain/errors"
	"quorum/contexts/archive/message-log/ports"
)

// MarkForDeletionCommand flags a tracked message for the purge worker.
type MarkForDeletionCommand struct {
	MessageID int64
}

// MarkForDeletionUseCase sets the deletion flag at most once. The repository
// pairs the flip with the marked event; a message already flagged stays
// untouched and emits nothing.
type MarkForDeletionUseCase struct {
	Messages ports.MessageRepository
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (uc MarkForDeletionUseCase) Execute(ctx context.Context, cmd MarkForDeletionCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if cmd.MessageID <= 0 {
		return domainerrors.ErrInvalidMessageInput
	}

	marked, err := uc.Messages.MarkForDeletion(ctx, cmd.MessageID, uc.now())
	if err != nil {
		logger.Error("message mark for deletion failed",
			"event", "messagelog_mark_failed",
			"module", "archive/message-log",
			"layer", "application",
			"message_id", cmd.MessageID,
			"error", err.Error(),
		)
		return err
	}
	if !marked {
		logger.Info("message already marked for deletion",
			"event", "messagelog_mark_repeated",
			"module", "archive/message-log",
			"layer", "application",
			"message_id", cmd.MessageID,
		)
		return nil
	}

	logger.Info("message marked for deletion",
		"event", "messagelog_marked",
		"module", "archive/message-log",
		"layer", "application",
		"message_id", cmd.MessageID,
	)
	return nil
}

// UntrackMessageCommand removes a message from the log without touching the
// chat platform.
type UntrackMessageCommand struct {
	MessageID int64
}

type UntrackMessageUseCase struct {
	Messages ports.MessageRepository
	Logger   *slog.Logger
}

func (uc UntrackMessageUseCase) Execute(ctx context.Context, cmd UntrackMessageCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if cmd.MessageID <= 0 {
		return domainerrors.ErrInvalidMessageInput
	}
	if err := uc.Messages.UntrackMessage(ctx, cmd.MessageID); err != nil {
		logger.Error("message untrack failed",
			"event", "messagelog_untrack_failed",
			"module", "archive/message-log",
			"layer", "application",
			"message_id", cmd.MessageID,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("message untracked",
		"event", "messagelog_untracked",
		"module", "archive/message-log",
		"layer", "application",
		"message_id", cmd.MessageID,
	)
	return nil
}

func (uc MarkForDeletionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
