package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/archive/build-registry/application"
	"quorum/contexts/archive/build-registry/domain/entities"
	domainerrors "quorum/contexts/archive/build-registry/domain/errors"
	"quorum/contexts/archive/build-registry/ports"
)

// SubmitBuildCommand is the write-model input for a new archive submission.
type SubmitBuildCommand struct {
	Name        string
	Description string
	SubmitterID int64
	Attributes  map[string]any
}

// SubmitBuildUseCase records a new build in pending state. The repository
// appends the submitted event inside the insert transaction, so a build row
// never exists without its announcement.
type SubmitBuildUseCase struct {
	Builds ports.BuildRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (uc SubmitBuildUseCase) Execute(ctx context.Context, cmd SubmitBuildCommand) (entities.Build, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("build submission started",
		"event", "registry_build_submit_started",
		"module", "archive/build-registry",
		"layer", "application",
		"submitter_id", cmd.SubmitterID,
	)
	if strings.TrimSpace(cmd.Name) == "" || cmd.SubmitterID <= 0 {
		logger.Warn("build submission validation failed",
			"event", "registry_build_submit_validation_failed",
			"module", "archive/build-registry",
			"layer", "application",
			"submitter_id", cmd.SubmitterID,
		)
		return entities.Build{}, domainerrors.ErrInvalidBuildInput
	}

	now := uc.now()
	build := entities.Build{
		Name:        strings.TrimSpace(cmd.Name),
		Description: strings.TrimSpace(cmd.Description),
		SubmitterID: cmd.SubmitterID,
		Attributes:  cmd.Attributes,
		Status:      entities.BuildStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := uc.Builds.CreateBuild(ctx, build)
	if err != nil {
		logger.Error("build submission failed",
			"event", "registry_build_submit_failed",
			"module", "archive/build-registry",
			"layer", "application",
			"submitter_id", cmd.SubmitterID,
			"error", err.Error(),
		)
		return entities.Build{}, err
	}

	logger.Info("build submitted",
		"event", "registry_build_submitted",
		"module", "archive/build-registry",
		"layer", "application",
		"build_id", created.ID,
		"submitter_id", created.SubmitterID,
	)
	return created, nil
}

func (uc SubmitBuildUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
