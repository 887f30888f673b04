package queries

import (
	"context"
	"strings"

	"quorum/contexts/archive/build-registry/domain/entities"
	domainerrors "quorum/contexts/archive/build-registry/domain/errors"
	"quorum/contexts/archive/build-registry/ports"
)

const defaultListLimit = 50

type GetBuildQuery struct {
	BuildID int64
}

type ListBuildsQuery struct {
	Status string
	Limit  int
}

type BuildsUseCase struct {
	Builds ports.BuildRepository
}

func (uc BuildsUseCase) Get(ctx context.Context, query GetBuildQuery) (entities.Build, error) {
	if query.BuildID <= 0 {
		return entities.Build{}, domainerrors.ErrBuildNotFound
	}
	return uc.Builds.GetBuild(ctx, query.BuildID)
}

func (uc BuildsUseCase) List(ctx context.Context, query ListBuildsQuery) ([]entities.Build, error) {
	filter := ports.BuildFilter{Limit: query.Limit}
	if filter.Limit <= 0 || filter.Limit > defaultListLimit {
		filter.Limit = defaultListLimit
	}
	if status := strings.TrimSpace(query.Status); status != "" {
		parsed := entities.BuildStatus(status)
		switch parsed {
		case entities.BuildStatusPending, entities.BuildStatusConfirmed, entities.BuildStatusDenied:
			filter.Status = &parsed
		default:
			return nil, domainerrors.ErrInvalidBuildInput
		}
	}
	return uc.Builds.ListBuilds(ctx, filter)
}
