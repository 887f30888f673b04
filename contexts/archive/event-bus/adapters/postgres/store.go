package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainerrors "quorum/contexts/archive/event-bus/domain/errors"
	"quorum/contexts/archive/event-bus/ports"
	"quorum/internal/shared/events"
	"quorum/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store reads and claims rows of the events table the outbox appends to.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger,
	}
}

func (s *Store) UnprocessedIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&outbox.Record{}).
		Where("processed = ?", false).
		Order("id ASC").
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, s.logError("bus_store_backlog_failed", err)
	}
	return ids, nil
}

// Dispatch claims the row with FOR UPDATE SKIP LOCKED so concurrent workers
// and instances never deliver the same event twice. The row is marked
// processed in the same transaction, even when its payload fails to decode;
// a poison row must not wedge the queue forever.
func (s *Store) Dispatch(ctx context.Context, eventID int64, deliver ports.DeliverFunc) (bool, error) {
	claimed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row outbox.Record
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("id = ? AND processed = ?", eventID, false).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		claimed = true

		envelope, decodeErr := row.ToEnvelope()
		if decodeErr != nil {
			s.logError("bus_store_decode_failed", decodeErr, "event_id", eventID)
		} else if deliver != nil {
			deliver(ctx, envelope)
		}

		update := tx.Model(&outbox.Record{}).
			Where("id = ?", eventID).
			Updates(map[string]any{
				"processed":    true,
				"processed_at": time.Now().UTC(),
			})
		return update.Error
	})
	if err != nil {
		return false, s.logError("bus_store_dispatch_failed", err, "event_id", eventID)
	}
	return claimed, nil
}

func (s *Store) GetEvent(ctx context.Context, eventID int64) (events.Envelope, error) {
	var row outbox.Record
	err := s.db.WithContext(ctx).
		Where("id = ?", eventID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return events.Envelope{}, domainerrors.ErrEventNotFound
		}
		return events.Envelope{}, s.logError("bus_store_get_failed", err, "event_id", eventID)
	}
	envelope, err := row.ToEnvelope()
	if err != nil {
		return events.Envelope{}, s.logError("bus_store_decode_failed", err, "event_id", eventID)
	}
	return envelope, nil
}

// ListEvents returns newest first; this surface exists for operators asking
// what the bus did recently.
func (s *Store) ListEvents(ctx context.Context, filter ports.EventFilter) ([]events.Envelope, error) {
	tx := s.db.WithContext(ctx).Model(&outbox.Record{}).Order("id DESC")
	if filter.Processed != nil {
		tx = tx.Where("processed = ?", *filter.Processed)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var rows []outbox.Record
	if err := tx.Find(&rows).Error; err != nil {
		return nil, s.logError("bus_store_list_failed", err)
	}
	items := make([]events.Envelope, 0, len(rows))
	for _, row := range rows {
		envelope, err := row.ToEnvelope()
		if err != nil {
			return nil, s.logError("bus_store_decode_failed", err, "event_id", row.ID)
		}
		items = append(items, envelope)
	}
	return items, nil
}

func (s *Store) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "archive/event-bus",
		"layer", "adapter",
		"error", err.Error(),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		fields = append(fields, "pg_code", pgErr.Code)
	}
	fields = append(fields, attrs...)
	s.logger.Error("event store operation failed", fields...)
	return err
}

var _ ports.EventStore = (*Store)(nil)
