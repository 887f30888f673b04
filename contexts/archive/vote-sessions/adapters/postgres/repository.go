package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"quorum/contexts/archive/vote-sessions/domain/entities"
	domainerrors "quorum/contexts/archive/vote-sessions/domain/errors"
	"quorum/contexts/archive/vote-sessions/ports"
	"quorum/internal/shared/events"
	"quorum/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists sessions across four tables: the session row, its kind
// payload, the message links, and the vote rows keyed by (session, user).
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

func (r *Repository) CreateSession(ctx context.Context, session entities.VoteSession) (entities.VoteSession, error) {
	row := sessionModelFromEntity(session)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if session.Build != nil {
			changes, err := marshalChanges(session.Build.Changes)
			if err != nil {
				return err
			}
			confirmation := buildConfirmationModel{
				SessionID: row.ID,
				BuildID:   session.Build.BuildID,
				Changes:   changes,
			}
			if err := tx.Create(&confirmation).Error; err != nil {
				return err
			}
		}
		if session.Deletion != nil {
			deletion := logDeletionModel{
				SessionID:       row.ID,
				TargetMessageID: session.Deletion.TargetMessageID,
				TargetChannelID: session.Deletion.TargetChannelID,
			}
			if err := tx.Create(&deletion).Error; err != nil {
				return err
			}
		}
		for _, messageID := range session.MessageIDs {
			link := sessionMessageModel{SessionID: row.ID, MessageID: messageID}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return entities.VoteSession{}, r.logError("sessions_repo_create_failed", err, "author_id", session.AuthorID)
	}

	created := session
	created.ID = row.ID
	created.CreatedAt = row.CreatedAt
	return created, nil
}

func (r *Repository) GetSession(ctx context.Context, sessionID int64) (entities.VoteSession, error) {
	var row sessionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", sessionID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoteSession{}, domainerrors.ErrSessionNotFound
		}
		return entities.VoteSession{}, r.logError("sessions_repo_get_failed", err, "session_id", sessionID)
	}
	session, err := r.assembleSession(r.db.WithContext(ctx), row)
	if err != nil {
		return entities.VoteSession{}, r.logError("sessions_repo_load_failed", err, "session_id", sessionID)
	}
	return session, nil
}

// SessionByMessage resolves the session a tracked ballot message belongs to.
// When the same message was relinked across sessions the newest link wins.
func (r *Repository) SessionByMessage(ctx context.Context, messageID int64) (entities.VoteSession, bool, error) {
	var link sessionMessageModel
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("session_id DESC").
		First(&link).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoteSession{}, false, nil
		}
		return entities.VoteSession{}, false, r.logError("sessions_repo_by_message_failed", err, "message_id", messageID)
	}
	session, err := r.GetSession(ctx, link.SessionID)
	if err != nil {
		return entities.VoteSession{}, false, err
	}
	return session, true, nil
}

func (r *Repository) ListOpenSessions(ctx context.Context) ([]entities.VoteSession, error) {
	var rows []sessionModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.StatusOpen)).
		Order("id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("sessions_repo_list_open_failed", err)
	}
	sessions := make([]entities.VoteSession, 0, len(rows))
	for _, row := range rows {
		session, err := r.assembleSession(r.db.WithContext(ctx), row)
		if err != nil {
			return nil, r.logError("sessions_repo_load_failed", err, "session_id", row.ID)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (r *Repository) CurrentWeight(ctx context.Context, sessionID int64, userID int64) (float64, bool, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, r.logError("sessions_repo_current_weight_failed", err, "session_id", sessionID, "user_id", userID)
	}
	return row.Weight, true, nil
}

// SetVote upserts or removes one vote row while holding the session row, so a
// close racing in never loses a vote silently: either the vote lands before
// the flip and the closer tallies it, or the flip lands first and the vote is
// rejected here with ErrSessionClosed.
func (r *Repository) SetVote(ctx context.Context, sessionID int64, userID int64, weight float64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row sessionModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", sessionID).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrSessionNotFound
			}
			return err
		}
		if row.Status != string(entities.StatusOpen) {
			return domainerrors.ErrSessionClosed
		}
		if weight == 0 {
			return tx.
				Where("session_id = ? AND user_id = ?", sessionID, userID).
				Delete(&voteModel{}).
				Error
		}
		vote := voteModel{
			SessionID: sessionID,
			UserID:    userID,
			Weight:    weight,
			UpdatedAt: time.Now().UTC(),
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"weight", "updated_at"}),
		}).Create(&vote).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrSessionNotFound) || errors.Is(err, domainerrors.ErrSessionClosed) {
			return err
		}
		return r.logError("sessions_repo_set_vote_failed", err, "session_id", sessionID, "user_id", userID)
	}
	return nil
}

func (r *Repository) ListVotes(ctx context.Context, sessionID int64) ([]entities.Vote, error) {
	var rows []voteModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("user_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("sessions_repo_list_votes_failed", err, "session_id", sessionID)
	}
	votes := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		votes = append(votes, entities.Vote{
			SessionID: row.SessionID,
			UserID:    row.UserID,
			Weight:    row.Weight,
		})
	}
	return votes, nil
}

// CloseSession is the conditional open-to-closed flip. Exactly one caller wins
// it under concurrency, and only the winner appends the closure event.
func (r *Repository) CloseSession(ctx context.Context, sessionID int64, result entities.SessionResult, net float64, closedAt time.Time) (bool, error) {
	flipped := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&sessionModel{}).
			Where("id = ? AND status = ?", sessionID, string(entities.StatusOpen)).
			Updates(map[string]any{
				"status":    string(entities.StatusClosed),
				"result":    string(result),
				"closed_at": closedAt.UTC(),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			var row sessionModel
			if err := tx.Where("id = ?", sessionID).First(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domainerrors.ErrSessionNotFound
				}
				return err
			}
			return nil
		}
		flipped = true

		var row sessionModel
		if err := tx.Where("id = ?", sessionID).First(&row).Error; err != nil {
			return err
		}
		_, err := r.outbox.AppendTx(tx, events.Envelope{
			AggregateType: entities.AggregateTypeVoteSession,
			AggregateID:   strconv.FormatInt(sessionID, 10),
			Type:          entities.EventTypeVoteSessionClosed,
			Payload: map[string]any{
				"session_id": sessionID,
				"kind":       row.Kind,
				"result":     string(result),
				"net":        net,
			},
			OccurredAt: closedAt,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrSessionNotFound) {
			return false, err
		}
		return false, r.logError("sessions_repo_close_failed", err, "session_id", sessionID)
	}
	return flipped, nil
}

func (r *Repository) assembleSession(tx *gorm.DB, row sessionModel) (entities.VoteSession, error) {
	session := row.toEntity()

	var links []sessionMessageModel
	err := tx.
		Where("session_id = ?", row.ID).
		Order("message_id ASC").
		Find(&links).
		Error
	if err != nil {
		return entities.VoteSession{}, err
	}
	if len(links) > 0 {
		session.MessageIDs = make([]int64, 0, len(links))
		for _, link := range links {
			session.MessageIDs = append(session.MessageIDs, link.MessageID)
		}
	}

	switch entities.SessionKind(row.Kind) {
	case entities.KindBuildConfirmation:
		var confirmation buildConfirmationModel
		if err := tx.Where("session_id = ?", row.ID).First(&confirmation).Error; err != nil {
			return entities.VoteSession{}, err
		}
		changes, err := unmarshalChanges(confirmation.Changes)
		if err != nil {
			return entities.VoteSession{}, err
		}
		session.Build = &entities.BuildConfirmation{
			BuildID: confirmation.BuildID,
			Changes: changes,
		}
	case entities.KindLogDeletion:
		var deletion logDeletionModel
		if err := tx.Where("session_id = ?", row.ID).First(&deletion).Error; err != nil {
			return entities.VoteSession{}, err
		}
		session.Deletion = &entities.LogDeletion{
			TargetMessageID: deletion.TargetMessageID,
			TargetChannelID: deletion.TargetChannelID,
		}
	}
	return session, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "archive/vote-sessions",
		"layer", "adapter",
		"error", err.Error(),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		fields = append(fields, "pg_code", pgErr.Code)
	}
	fields = append(fields, attrs...)
	r.logger.Error("vote session repository operation failed", fields...)
	return err
}

type sessionModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	Kind          string     `gorm:"column:kind"`
	AuthorID      int64      `gorm:"column:author_id"`
	PassThreshold float64    `gorm:"column:pass_threshold"`
	FailThreshold float64    `gorm:"column:fail_threshold"`
	Status        string     `gorm:"column:status"`
	Result        string     `gorm:"column:result"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	ClosedAt      *time.Time `gorm:"column:closed_at"`
}

func (sessionModel) TableName() string {
	return "vote_sessions"
}

func sessionModelFromEntity(session entities.VoteSession) sessionModel {
	row := sessionModel{
		ID:            session.ID,
		Kind:          string(session.Kind),
		AuthorID:      session.AuthorID,
		PassThreshold: session.PassThreshold,
		FailThreshold: session.FailThreshold,
		Status:        string(session.Status),
		Result:        string(session.Result),
		CreatedAt:     session.CreatedAt.UTC(),
		ClosedAt:      timePtrUTC(session.ClosedAt),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m sessionModel) toEntity() entities.VoteSession {
	return entities.VoteSession{
		ID:            m.ID,
		Kind:          entities.SessionKind(m.Kind),
		AuthorID:      m.AuthorID,
		PassThreshold: m.PassThreshold,
		FailThreshold: m.FailThreshold,
		Status:        entities.SessionStatus(m.Status),
		Result:        entities.SessionResult(m.Result),
		CreatedAt:     m.CreatedAt,
		ClosedAt:      m.ClosedAt,
	}
}

type sessionMessageModel struct {
	SessionID int64 `gorm:"column:session_id;primaryKey"`
	MessageID int64 `gorm:"column:message_id;primaryKey"`
}

func (sessionMessageModel) TableName() string {
	return "session_messages"
}

type buildConfirmationModel struct {
	SessionID int64  `gorm:"column:session_id;primaryKey"`
	BuildID   int64  `gorm:"column:build_id"`
	Changes   []byte `gorm:"column:changes"`
}

func (buildConfirmationModel) TableName() string {
	return "build_confirmations"
}

type logDeletionModel struct {
	SessionID       int64 `gorm:"column:session_id;primaryKey"`
	TargetMessageID int64 `gorm:"column:target_message_id"`
	TargetChannelID int64 `gorm:"column:target_channel_id"`
}

func (logDeletionModel) TableName() string {
	return "log_deletions"
}

type voteModel struct {
	SessionID int64     `gorm:"column:session_id;primaryKey"`
	UserID    int64     `gorm:"column:user_id;primaryKey"`
	Weight    float64   `gorm:"column:weight"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func marshalChanges(changes []entities.Change) ([]byte, error) {
	if len(changes) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(changes)
}

func unmarshalChanges(raw []byte) ([]entities.Change, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var changes []entities.Change
	if err := json.Unmarshal(raw, &changes); err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, nil
	}
	return changes, nil
}

func timePtrUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

var _ ports.SessionRepository = (*Repository)(nil)
