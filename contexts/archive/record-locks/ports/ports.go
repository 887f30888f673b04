package ports

import (
	"context"
	"time"
)

// Store is the persistence seam for lock flags embedded on owning records.
// TryLock must be a single atomic conditional update (is_locked false to true,
// stamping locked_at) so contention can never partially mutate state.
type Store interface {
	TryLock(ctx context.Context, recordID int64) (bool, error)
	Unlock(ctx context.Context, recordID int64) error
	ReleaseStale(ctx context.Context, olderThan time.Time) (int64, error)
}

type Clock interface {
	Now() time.Time
}

type Metrics interface {
	AcquireTimedOut()
	StaleCleared(count int64)
}
