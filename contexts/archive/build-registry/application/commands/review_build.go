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

// ConfirmBuildCommand finalizes an approved build, applying the diff the vote
// session carried before the status flip.
type ConfirmBuildCommand struct {
	BuildID int64
	Changes []entities.Change
}

// DenyBuildCommand finalizes a rejected build.
type DenyBuildCommand struct {
	BuildID int64
}

// ReviewBuildUseCase settles a pending build exactly once. Both outcomes run
// under the record lock, re-read current state, and treat a repeat of the same
// outcome as a no-op so replayed session closures stay harmless.
type ReviewBuildUseCase struct {
	Builds      ports.BuildRepository
	Locks       ports.RecordLocker
	LockTimeout time.Duration
	Clock       ports.Clock
	Logger      *slog.Logger
}

// Confirm applies the stored diff and flips the build pending to confirmed.
// The repository pairs the flip with the confirmed event in one transaction.
func (uc ReviewBuildUseCase) Confirm(ctx context.Context, cmd ConfirmBuildCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("build confirmation started",
		"event", "registry_build_confirm_started",
		"module", "archive/build-registry",
		"layer", "application",
		"build_id", cmd.BuildID,
		"change_count", len(cmd.Changes),
	)
	if cmd.BuildID <= 0 {
		return domainerrors.ErrInvalidBuildInput
	}
	if err := entities.ValidateChanges(cmd.Changes); err != nil {
		return err
	}

	err := uc.Locks.WithLock(ctx, cmd.BuildID, uc.lockTimeout(), func(ctx context.Context) error {
		build, err := uc.Builds.GetBuild(ctx, cmd.BuildID)
		if err != nil {
			return err
		}
		if build.Status == entities.BuildStatusConfirmed {
			return nil
		}
		if !build.IsPending() {
			return domainerrors.ErrBuildNotPending
		}
		applied, err := entities.ApplyChanges(build, cmd.Changes)
		if err != nil {
			return err
		}
		now := uc.now()
		applied.Status = entities.BuildStatusConfirmed
		applied.ConfirmedAt = &now
		applied.UpdatedAt = now
		_, err = uc.Builds.Confirm(ctx, applied)
		return err
	})
	if err != nil {
		logger.Error("build confirmation failed",
			"event", "registry_build_confirm_failed",
			"module", "archive/build-registry",
			"layer", "application",
			"build_id", cmd.BuildID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("build confirmed",
		"event", "registry_build_confirmed",
		"module", "archive/build-registry",
		"layer", "application",
		"build_id", cmd.BuildID,
	)
	return nil
}

// Deny flips the build pending to denied without touching its fields.
func (uc ReviewBuildUseCase) Deny(ctx context.Context, cmd DenyBuildCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("build denial started",
		"event", "registry_build_deny_started",
		"module", "archive/build-registry",
		"layer", "application",
		"build_id", cmd.BuildID,
	)
	if cmd.BuildID <= 0 {
		return domainerrors.ErrInvalidBuildInput
	}

	err := uc.Locks.WithLock(ctx, cmd.BuildID, uc.lockTimeout(), func(ctx context.Context) error {
		build, err := uc.Builds.GetBuild(ctx, cmd.BuildID)
		if err != nil {
			return err
		}
		if build.Status == entities.BuildStatusDenied {
			return nil
		}
		if !build.IsPending() {
			return domainerrors.ErrBuildNotPending
		}
		return uc.Builds.Deny(ctx, cmd.BuildID)
	})
	if err != nil {
		logger.Error("build denial failed",
			"event", "registry_build_deny_failed",
			"module", "archive/build-registry",
			"layer", "application",
			"build_id", cmd.BuildID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("build denied",
		"event", "registry_build_denied",
		"module", "archive/build-registry",
		"layer", "application",
		"build_id", cmd.BuildID,
	)
	return nil
}

func (uc ReviewBuildUseCase) lockTimeout() time.Duration {
	if uc.LockTimeout <= 0 {
		return DefaultEditLockTimeout
	}
	return uc.LockTimeout
}

func (uc ReviewBuildUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
