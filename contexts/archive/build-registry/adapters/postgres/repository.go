package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"quorum/contexts/archive/build-registry/domain/entities"
	domainerrors "quorum/contexts/archive/build-registry/domain/errors"
	"quorum/contexts/archive/build-registry/ports"
	"quorum/internal/shared/events"
	"quorum/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository persists builds and implements the record-lock store against the
// same table, since the lock flag lives on the build row itself.
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

func (r *Repository) CreateBuild(ctx context.Context, build entities.Build) (entities.Build, error) {
	row, err := buildModelFromEntity(build)
	if err != nil {
		return entities.Build{}, r.logError("registry_repo_marshal_build_failed", err, "build_id", build.ID)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		_, err := r.outbox.AppendTx(tx, events.Envelope{
			AggregateType: entities.AggregateTypeBuild,
			AggregateID:   strconv.FormatInt(row.ID, 10),
			Type:          entities.EventTypeBuildSubmitted,
			Payload: map[string]any{
				"build_id":     row.ID,
				"name":         row.Name,
				"submitter_id": row.SubmitterID,
			},
			OccurredAt: row.CreatedAt,
		})
		return err
	})
	if err != nil {
		return entities.Build{}, r.logError("registry_repo_create_build_failed", err, "submitter_id", build.SubmitterID)
	}
	return row.toEntity()
}

func (r *Repository) GetBuild(ctx context.Context, buildID int64) (entities.Build, error) {
	var row buildModel
	err := r.db.WithContext(ctx).
		Where("id = ?", buildID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Build{}, domainerrors.ErrBuildNotFound
		}
		return entities.Build{}, r.logError("registry_repo_get_build_failed", err, "build_id", buildID)
	}
	return row.toEntity()
}

// SaveBuild writes the editable columns only. Status, lock state, and the
// confirmation stamp are owned by their dedicated operations.
func (r *Repository) SaveBuild(ctx context.Context, build entities.Build) error {
	attributes, err := marshalAttributes(build.Attributes)
	if err != nil {
		return r.logError("registry_repo_marshal_build_failed", err, "build_id", build.ID)
	}
	update := r.db.WithContext(ctx).Model(&buildModel{}).
		Where("id = ?", build.ID).
		Updates(map[string]any{
			"name":        build.Name,
			"description": build.Description,
			"attributes":  attributes,
			"updated_at":  build.UpdatedAt.UTC(),
		})
	if update.Error != nil {
		return r.logError("registry_repo_save_build_failed", update.Error, "build_id", build.ID)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrBuildNotFound
	}
	return nil
}

func (r *Repository) ListBuilds(ctx context.Context, filter ports.BuildFilter) ([]entities.Build, error) {
	tx := r.db.WithContext(ctx).Model(&buildModel{}).Order("id ASC")
	if filter.Status != nil {
		tx = tx.Where("status = ?", string(*filter.Status))
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var rows []buildModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.logError("registry_repo_list_builds_failed", err)
	}
	builds := make([]entities.Build, 0, len(rows))
	for _, row := range rows {
		build, err := row.toEntity()
		if err != nil {
			return nil, r.logError("registry_repo_decode_build_failed", err, "build_id", row.ID)
		}
		builds = append(builds, build)
	}
	return builds, nil
}

// Confirm flips pending to confirmed, persisting the applied diff and the
// confirmed event in one transaction. A repeat confirmation is a no-op; any
// other prior outcome reports the build as no longer pending.
func (r *Repository) Confirm(ctx context.Context, build entities.Build) (entities.Build, error) {
	attributes, err := marshalAttributes(build.Attributes)
	if err != nil {
		return entities.Build{}, r.logError("registry_repo_marshal_build_failed", err, "build_id", build.ID)
	}

	confirmed := build
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&buildModel{}).
			Where("id = ? AND status = ?", build.ID, string(entities.BuildStatusPending)).
			Updates(map[string]any{
				"name":         build.Name,
				"description":  build.Description,
				"attributes":   attributes,
				"status":       string(entities.BuildStatusConfirmed),
				"confirmed_at": timePtrUTC(build.ConfirmedAt),
				"updated_at":   build.UpdatedAt.UTC(),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			current, err := getBuildTx(tx, build.ID)
			if err != nil {
				return err
			}
			if current.Status == entities.BuildStatusConfirmed {
				confirmed = current
				return nil
			}
			return domainerrors.ErrBuildNotPending
		}
		_, err := r.outbox.AppendTx(tx, events.Envelope{
			AggregateType: entities.AggregateTypeBuild,
			AggregateID:   strconv.FormatInt(build.ID, 10),
			Type:          entities.EventTypeBuildConfirmed,
			Payload: map[string]any{
				"build_id": build.ID,
				"name":     build.Name,
			},
			OccurredAt: build.UpdatedAt,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrBuildNotFound) || errors.Is(err, domainerrors.ErrBuildNotPending) {
			return entities.Build{}, err
		}
		return entities.Build{}, r.logError("registry_repo_confirm_build_failed", err, "build_id", build.ID)
	}
	return confirmed, nil
}

// Deny flips pending to denied and appends the denied event in the same
// transaction. Repeat denials are no-ops.
func (r *Repository) Deny(ctx context.Context, buildID int64) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&buildModel{}).
			Where("id = ? AND status = ?", buildID, string(entities.BuildStatusPending)).
			Updates(map[string]any{
				"status":     string(entities.BuildStatusDenied),
				"updated_at": now,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			current, err := getBuildTx(tx, buildID)
			if err != nil {
				return err
			}
			if current.Status == entities.BuildStatusDenied {
				return nil
			}
			return domainerrors.ErrBuildNotPending
		}
		_, err := r.outbox.AppendTx(tx, events.Envelope{
			AggregateType: entities.AggregateTypeBuild,
			AggregateID:   strconv.FormatInt(buildID, 10),
			Type:          entities.EventTypeBuildDenied,
			Payload: map[string]any{
				"build_id": buildID,
			},
			OccurredAt: now,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrBuildNotFound) || errors.Is(err, domainerrors.ErrBuildNotPending) {
			return err
		}
		return r.logError("registry_repo_deny_build_failed", err, "build_id", buildID)
	}
	return nil
}

// TryLock is the single atomic conditional update behind the record lock. A
// missing row reads the same as contention so callers keep their retry loop.
func (r *Repository) TryLock(ctx context.Context, recordID int64) (bool, error) {
	update := r.db.WithContext(ctx).Model(&buildModel{}).
		Where("id = ? AND is_locked = ?", recordID, false).
		Updates(map[string]any{
			"is_locked": true,
			"locked_at": time.Now().UTC(),
		})
	if update.Error != nil {
		return false, r.logError("registry_repo_try_lock_failed", update.Error, "build_id", recordID)
	}
	return update.RowsAffected == 1, nil
}

func (r *Repository) Unlock(ctx context.Context, recordID int64) error {
	update := r.db.WithContext(ctx).Model(&buildModel{}).
		Where("id = ?", recordID).
		Updates(map[string]any{
			"is_locked": false,
			"locked_at": nil,
		})
	if update.Error != nil {
		return r.logError("registry_repo_unlock_failed", update.Error, "build_id", recordID)
	}
	return nil
}

func (r *Repository) ReleaseStale(ctx context.Context, olderThan time.Time) (int64, error) {
	update := r.db.WithContext(ctx).Model(&buildModel{}).
		Where("is_locked = ? AND locked_at < ?", true, olderThan.UTC()).
		Updates(map[string]any{
			"is_locked": false,
			"locked_at": nil,
		})
	if update.Error != nil {
		return 0, r.logError("registry_repo_release_stale_failed", update.Error)
	}
	return update.RowsAffected, nil
}

func getBuildTx(tx *gorm.DB, buildID int64) (entities.Build, error) {
	var row buildModel
	if err := tx.Where("id = ?", buildID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Build{}, domainerrors.ErrBuildNotFound
		}
		return entities.Build{}, err
	}
	return row.toEntity()
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "archive/build-registry",
		"layer", "adapter",
		"error", err.Error(),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		fields = append(fields, "pg_code", pgErr.Code)
	}
	fields = append(fields, attrs...)
	r.logger.Error("build registry repository operation failed", fields...)
	return err
}

type buildModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	Name        string     `gorm:"column:name"`
	Description string     `gorm:"column:description"`
	SubmitterID int64      `gorm:"column:submitter_id"`
	Attributes  []byte     `gorm:"column:attributes"`
	Status      string     `gorm:"column:status"`
	IsLocked    bool       `gorm:"column:is_locked"`
	LockedAt    *time.Time `gorm:"column:locked_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at"`
}

func (buildModel) TableName() string {
	return "builds"
}

func buildModelFromEntity(build entities.Build) (buildModel, error) {
	attributes, err := marshalAttributes(build.Attributes)
	if err != nil {
		return buildModel{}, err
	}
	row := buildModel{
		ID:          build.ID,
		Name:        build.Name,
		Description: build.Description,
		SubmitterID: build.SubmitterID,
		Attributes:  attributes,
		Status:      string(build.Status),
		IsLocked:    build.IsLocked,
		LockedAt:    timePtrUTC(build.LockedAt),
		CreatedAt:   build.CreatedAt.UTC(),
		UpdatedAt:   build.UpdatedAt.UTC(),
		ConfirmedAt: timePtrUTC(build.ConfirmedAt),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row, nil
}

func (m buildModel) toEntity() (entities.Build, error) {
	attributes, err := unmarshalAttributes(m.Attributes)
	if err != nil {
		return entities.Build{}, err
	}
	return entities.Build{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		SubmitterID: m.SubmitterID,
		Attributes:  attributes,
		Status:      entities.BuildStatus(m.Status),
		IsLocked:    m.IsLocked,
		LockedAt:    m.LockedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		ConfirmedAt: m.ConfirmedAt,
	}, nil
}

func marshalAttributes(attributes map[string]any) ([]byte, error) {
	if len(attributes) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(attributes)
}

func unmarshalAttributes(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var attributes map[string]any
	if err := json.Unmarshal(raw, &attributes); err != nil {
		return nil, err
	}
	if len(attributes) == 0 {
		return nil, nil
	}
	return attributes, nil
}

func timePtrUTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

var _ ports.BuildRepository = (*Repository)(nil)
