package commands

import (
	"context"
	"log/slog"
	"time"

	application "quorum/contexts/archive/build-registry/application"
	"quorum/contexts/archive/build-registry/domain/entities"
	domainerrors "quorum/contexts/archive/build-registry/domain/errors"
	"quorum/contexts/archive/build-registry/ports"
)

// DefaultEditLockTimeout bounds how long an edit waits for the record lock
// before giving up with the locker's timeout error.
const DefaultEditLockTimeout = 30 * time.Second

// EditBuildCommand applies a field diff to an existing build.
type EditBuildCommand struct {
	BuildID int64
	Changes []entities.Change
}

// EditBuildUseCase performs the guarded read-modify-write edit. The whole
// sequence runs inside the record lock so concurrent editors and the review
// side effects never interleave partial writes on the same row.
type EditBuildUseCase struct {
	Builds      ports.BuildRepository
	Locks       ports.RecordLocker
	LockTimeout time.Duration
	Clock       ports.Clock
	Logger      *slog.Logger
}

func (uc EditBuildUseCase) Execute(ctx context.Context, cmd EditBuildCommand) (entities.Build, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("build edit started",
		"event", "registry_build_edit_started",
		"module", "archive/build-registry",
		"layer", "application",
		"build_id", cmd.BuildID,
		"change_count", len(cmd.Changes),
	)
	if cmd.BuildID <= 0 || len(cmd.Changes) == 0 {
		logger.Warn("build edit validation failed",
			"event", "registry_build_edit_validation_failed",
			"module", "archive/build-registry",
			"layer", "application",
			"build_id", cmd.BuildID,
		)
		return entities.Build{}, domainerrors.ErrInvalidBuildInput
	}
	if err := entities.ValidateChanges(cmd.Changes); err != nil {
		logger.Warn("build edit rejected invalid changes",
			"event", "registry_build_edit_invalid_changes",
			"module", "archive/build-registry",
			"layer", "application",
			"build_id", cmd.BuildID,
		)
		return entities.Build{}, err
	}

	var updated entities.Build
	err := uc.Locks.WithLock(ctx, cmd.BuildID, uc.lockTimeout(), func(ctx context.Context) error {
		build, err := uc.Builds.GetBuild(ctx, cmd.BuildID)
		if err != nil {
			return err
		}
		applied, err := entities.ApplyChanges(build, cmd.Changes)
		if err != nil {
			return err
		}
		applied.UpdatedAt = uc.now()
		if err := uc.Builds.SaveBuild(ctx, applied); err != nil {
			return err
		}
		updated = applied
		return nil
	})
	if err != nil {
		logger.Error("build edit failed",
			"event", "registry_build_edit_failed",
			"module", "archive/build-registry",
			"layer", "application",
			"build_id", cmd.BuildID,
			"error", err.Error(),
		)
		return entities.Build{}, err
	}

	logger.Info("build edited",
		"event", "registry_build_edited",
		"module", "archive/build-registry",
		"layer", "application",
		"build_id", updated.ID,
		"change_count", len(cmd.Changes),
	)
	return updated, nil
}

func (uc EditBuildUseCase) lockTimeout() time.Duration {
	if uc.LockTimeout <= 0 {
		return DefaultEditLockTimeout
	}
	return uc.LockTimeout
}

func (uc EditBuildUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
