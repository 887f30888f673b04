package queries

import (
	"context"

	"quorum/contexts/archive/message-log/domain/entities"
	domainerrors "quorum/contexts/archive/message-log/domain/errors"
	"quorum/contexts/archive/message-log/ports"
)

const defaultListLimit = 100

type GetMessageQuery struct {
	MessageID int64
}

type ListMarkedQuery struct {
	Limit int
}

type ListBySessionQuery struct {
	SessionID int64
}

type MessagesUseCase struct {
	Messages ports.MessageRepository
}

func (uc MessagesUseCase) Get(ctx context.Context, query GetMessageQuery) (entities.Message, error) {
	if query.MessageID <= 0 {
		return entities.Message{}, domainerrors.ErrMessageNotFound
	}
	return uc.Messages.GetMessage(ctx, query.MessageID)
}

func (uc MessagesUseCase) ListMarked(ctx context.Context, query ListMarkedQuery) ([]entities.Message, error) {
	limit := query.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return uc.Messages.ListMarked(ctx, limit)
}

func (uc MessagesUseCase) ListBySession(ctx context.Context, query ListBySessionQuery) ([]entities.Message, error) {
	if query.SessionID <= 0 {
		return nil, domainerrors.ErrInvalidMessageInput
	}
	return uc.Messages.ListBySession(ctx, query.SessionID)
}
