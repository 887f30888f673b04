package ports

import (
	"context"
	"time"

	"quorum/contexts/archive/message-log/domain/entities"
)

// MessageRepository persists tracked messages. TrackMessage is idempotent on
// the caller-supplied id; MarkForDeletion sets the flag at most once and
// appends the marked event in the same transaction as the flip, reporting
// whether this call did the marking.
type MessageRepository interface {
	TrackMessage(ctx context.Context, message entities.Message) error
	GetMessage(ctx context.Context, messageID int64) (entities.Message, error)
	MarkForDeletion(ctx context.Context, messageID int64, markedAt time.Time) (bool, error)
	UntrackMessage(ctx context.Context, messageID int64) error
	ListMarked(ctx context.Context, limit int) ([]entities.Message, error)
	ListBySession(ctx context.Context, sessionID int64) ([]entities.Message, error)
}

type Clock interface {
	Now() time.Time
}
