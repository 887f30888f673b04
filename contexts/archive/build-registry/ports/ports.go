package ports

import (
	"context"
	"time"

	"quorum/contexts/archive/build-registry/domain/entities"
)

// BuildFilter narrows ListBuilds. A nil Status returns every build.
type BuildFilter struct {
	Status *entities.BuildStatus
	Limit  int
}

// BuildRepository persists builds and the review events that accompany status
// transitions. CreateBuild appends the submitted event in the same transaction
// as the insert; Confirm and Deny pair their status flip with the matching
// event the same way.
type BuildRepository interface {
	CreateBuild(ctx context.Context, build entities.Build) (entities.Build, error)
	GetBuild(ctx context.Context, buildID int64) (entities.Build, error)
	SaveBuild(ctx context.Context, build entities.Build) error
	ListBuilds(ctx context.Context, filter BuildFilter) ([]entities.Build, error)
	Confirm(ctx context.Context, build entities.Build) (entities.Build, error)
	Deny(ctx context.Context, buildID int64) error
}

// RecordLocker wraps a critical section in the per-record lock guarding the
// build row. fn runs only while the lock is held; the lock is released before
// WithLock returns even when fn fails.
type RecordLocker interface {
	WithLock(ctx context.Context, recordID int64, timeout time.Duration, fn func(ctx context.Context) error) error
}

type Clock interface {
	Now() time.Time
}
