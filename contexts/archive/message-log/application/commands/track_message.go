package commands

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/archive/message-log/application"
	"quorum/contexts/archive/message-log/domain/entities"
	domainerrors "quorum/contexts/archive/message-log/domain/errors"
	"quorum/contexts/archive/message-log/ports"
)

// TrackMessageCommand records a posted chat message. ID is the platform's
// message id; tracking the same id twice is a no-op.
type TrackMessageCommand struct {
	MessageID     int64
	ChannelID     int64
	AuthorID      int64
	Purpose       entities.MessagePurpose
	Content       string
	BuildID       *int64
	VoteSessionID *int64
}

type TrackMessageUseCase struct {
	Messages ports.MessageRepository
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (uc TrackMessageUseCase) Execute(ctx context.Context, cmd TrackMessageCommand) (entities.Message, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("message tracking started",
		"event", "messagelog_track_started",
		"module", "archive/message-log",
		"layer", "application",
		"message_id", cmd.MessageID,
		"purpose", string(cmd.Purpose),
	)
	if cmd.MessageID <= 0 || cmd.ChannelID <= 0 || !entities.ValidPurpose(cmd.Purpose) {
		return entities.Message{}, uc.rejected(logger, cmd)
	}
	if entities.RequiresBuild(cmd.Purpose) && cmd.BuildID == nil {
		return entities.Message{}, uc.rejected(logger, cmd)
	}
	if entities.RequiresSession(cmd.Purpose) && cmd.VoteSessionID == nil {
		return entities.Message{}, uc.rejected(logger, cmd)
	}

	message := entities.Message{
		ID:            cmd.MessageID,
		ChannelID:     cmd.ChannelID,
		AuthorID:      cmd.AuthorID,
		Purpose:       cmd.Purpose,
		Content:       cmd.Content,
		BuildID:       cmd.BuildID,
		VoteSessionID: cmd.VoteSessionID,
		TrackedAt:     uc.now(),
	}
	if err := uc.Messages.TrackMessage(ctx, message); err != nil {
		logger.Error("message tracking failed",
			"event", "messagelog_track_failed",
			"module", "archive/message-log",
			"layer", "application",
			"message_id", cmd.MessageID,
			"error", err.Error(),
		)
		return entities.Message{}, err
	}

	logger.Info("message tracked",
		"event", "messagelog_tracked",
		"module", "archive/message-log",
		"layer", "application",
		"message_id", message.ID,
		"purpose", string(message.Purpose),
	)
	return message, nil
}

func (uc TrackMessageUseCase) rejected(logger *slog.Logger, cmd TrackMessageCommand) error {
	logger.Warn("message tracking validation failed",
		"event", "messagelog_track_validation_failed",
		"module", "archive/message-log",
		"layer", "application",
		"message_id", cmd.MessageID,
		"purpose", string(cmd.Purpose),
	)
	return domainerrors.ErrInvalidMessageInput
}

func (uc TrackMessageUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
