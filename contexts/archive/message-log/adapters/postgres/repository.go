package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"quorum/contexts/archive/message-log/domain/entities"
	domainerrors "quorum/contexts/archive/message-log/domain/errors"
	"quorum/contexts/archive/message-log/ports"
	"quorum/internal/shared/events"
	"quorum/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	outbox outbox.Appender
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, appender outbox.Appender, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		outbox: appender,
		logger: logger,
	}
}

// TrackMessage inserts the row if the id is new and leaves an existing row
// untouched, so replayed tracking calls stay harmless.
func (r *Repository) TrackMessage(ctx context.Context, message entities.Message) error {
	row := messageModelFromEntity(message)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("messagelog_repo_track_failed", create.Error, "message_id", message.ID)
	}
	return nil
}

func (r *Repository) GetMessage(ctx context.Context, messageID int64) (entities.Message, error) {
	var row messageModel
	err := r.db.WithContext(ctx).
		Where("id = ?", messageID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Message{}, domainerrors.ErrMessageNotFound
		}
		return entities.Message{}, r.logError("messagelog_repo_get_failed", err, "message_id", messageID)
	}
	return row.toEntity(), nil
}

// MarkForDeletion flips the flag once and appends the marked event in the
// same transaction. Returns false without touching anything when the message
// was already marked.
func (r *Repository) MarkForDeletion(ctx context.Context, messageID int64, markedAt time.Time) (bool, error) {
	marked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row messageModel
		if err := tx.Where("id = ?", messageID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrMessageNotFound
			}
			return err
		}
		if row.MarkedForDeletion {
			return nil
		}

		update := tx.Model(&messageModel{}).
			Where("id = ? AND marked_for_deletion = ?", messageID, false).
			Updates(map[string]any{
				"marked_for_deletion": true,
				"marked_at":           markedAt.UTC(),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return nil
		}

		_, err := r.outbox.AppendTx(tx, events.Envelope{
			AggregateType: entities.AggregateTypeMessage,
			AggregateID:   strconv.FormatInt(messageID, 10),
			Type:          entities.EventTypeMessageMarkedForDeletion,
			Payload: map[string]any{
				"message_id": messageID,
				"channel_id": row.ChannelID,
			},
			OccurredAt: markedAt,
		})
		if err != nil {
			return err
		}
		marked = true
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrMessageNotFound) {
			return false, err
		}
		return false, r.logError("messagelog_repo_mark_failed", err, "message_id", messageID)
	}
	return marked, nil
}

func (r *Repository) UntrackMessage(ctx context.Context, messageID int64) error {
	del := r.db.WithContext(ctx).Where("id = ?", messageID).Delete(&messageModel{})
	if del.Error != nil {
		return r.logError("messagelog_repo_untrack_failed", del.Error, "message_id", messageID)
	}
	if del.RowsAffected == 0 {
		return domainerrors.ErrMessageNotFound
	}
	return nil
}

func (r *Repository) ListMarked(ctx context.Context, limit int) ([]entities.Message, error) {
	var rows []messageModel
	tx := r.db.WithContext(ctx).
		Where("marked_for_deletion = ?", true).
		Order("marked_at ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.logError("messagelog_repo_list_marked_failed", err)
	}
	return toMessageEntities(rows), nil
}

func (r *Repository) ListBySession(ctx context.Context, sessionID int64) ([]entities.Message, error) {
	var rows []messageModel
	err := r.db.WithContext(ctx).
		Where("vote_session_id = ?", sessionID).
		Order("id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("messagelog_repo_list_by_session_failed", err, "session_id", sessionID)
	}
	return toMessageEntities(rows), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "archive/message-log",
		"layer", "adapter",
		"error", err.Error(),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		fields = append(fields, "pg_code", pgErr.Code)
	}
	fields = append(fields, attrs...)
	r.logger.Error("message log repository operation failed", fields...)
	return err
}

type messageModel struct {
	ID                int64      `gorm:"column:id;primaryKey"`
	ChannelID         int64      `gorm:"column:channel_id"`
	AuthorID          int64      `gorm:"column:author_id"`
	Purpose           string     `gorm:"column:purpose"`
	Content           string     `gorm:"column:content"`
	BuildID           *int64     `gorm:"column:build_id"`
	VoteSessionID     *int64     `gorm:"column:vote_session_id"`
	MarkedForDeletion bool       `gorm:"column:marked_for_deletion"`
	MarkedAt          *time.Time `gorm:"column:marked_at"`
	TrackedAt         time.Time  `gorm:"column:tracked_at"`
}

func (messageModel) TableName() string {
	return "messages"
}

func messageModelFromEntity(message entities.Message) messageModel {
	row := messageModel{
		ID:                message.ID,
		ChannelID:         message.ChannelID,
		AuthorID:          message.AuthorID,
		Purpose:           string(message.Purpose),
		Content:           message.Content,
		BuildID:           message.BuildID,
		VoteSessionID:     message.VoteSessionID,
		MarkedForDeletion: message.MarkedForDeletion,
		MarkedAt:          message.MarkedAt,
		TrackedAt:         message.TrackedAt.UTC(),
	}
	if row.TrackedAt.IsZero() {
		row.TrackedAt = time.Now().UTC()
	}
	return row
}

func (m messageModel) toEntity() entities.Message {
	return entities.Message{
		ID:                m.ID,
		ChannelID:         m.ChannelID,
		AuthorID:          m.AuthorID,
		Purpose:           entities.MessagePurpose(m.Purpose),
		Content:           m.Content,
		BuildID:           m.BuildID,
		VoteSessionID:     m.VoteSessionID,
		MarkedForDeletion: m.MarkedForDeletion,
		MarkedAt:          m.MarkedAt,
		TrackedAt:         m.TrackedAt,
	}
}

func toMessageEntities(rows []messageModel) []entities.Message {
	messages := make([]entities.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.toEntity())
	}
	return messages
}

var _ ports.MessageRepository = (*Repository)(nil)
