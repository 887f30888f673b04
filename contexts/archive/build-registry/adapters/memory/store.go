package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"quorum/contexts/archive/build-registry/domain/entities"
	domainerrors "quorum/contexts/archive/build-registry/domain/errors"
	"quorum/contexts/archive/build-registry/ports"
	"quorum/internal/shared/events"
	"quorum/internal/shared/outbox"
)

// Store keeps builds in memory with the same transition and locking rules the
// postgres repository enforces. Review events land in the attached memory log.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	builds map[int64]entities.Build
	log    *outbox.MemoryLog
}

func NewStore(log *outbox.MemoryLog) *Store {
	if log == nil {
		log = outbox.NewMemoryLog()
	}
	return &Store{
		nextID: 1,
		builds: make(map[int64]entities.Build),
		log:    log,
	}
}

// EventLog exposes the backing log so tests can assert on emitted events.
func (s *Store) EventLog() *outbox.MemoryLog {
	return s.log
}

func (s *Store) CreateBuild(_ context.Context, build entities.Build) (entities.Build, error) {
	s.mu.Lock()
	build.ID = s.nextID
	s.nextID++
	build.Attributes = cloneAttributes(build.Attributes)
	s.builds[build.ID] = build
	s.mu.Unlock()

	s.log.Append(events.Envelope{
		AggregateType: entities.AggregateTypeBuild,
		AggregateID:   strconv.FormatInt(build.ID, 10),
		Type:          entities.EventTypeBuildSubmitted,
		Payload: map[string]any{
			"build_id":     build.ID,
			"name":         build.Name,
			"submitter_id": build.SubmitterID,
		},
		OccurredAt: build.CreatedAt,
	})
	return copyBuild(build), nil
}

func (s *Store) GetBuild(_ context.Context, buildID int64) (entities.Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	build, ok := s.builds[buildID]
	if !ok {
		return entities.Build{}, domainerrors.ErrBuildNotFound
	}
	return copyBuild(build), nil
}

func (s *Store) SaveBuild(_ context.Context, build entities.Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.builds[build.ID]
	if !ok {
		return domainerrors.ErrBuildNotFound
	}
	current.Name = build.Name
	current.Description = build.Description
	current.Attributes = cloneAttributes(build.Attributes)
	current.UpdatedAt = build.UpdatedAt
	s.builds[build.ID] = current
	return nil
}

func (s *Store) ListBuilds(_ context.Context, filter ports.BuildFilter) ([]entities.Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.builds))
	for id, build := range s.builds {
		if filter.Status != nil && build.Status != *filter.Status {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if filter.Limit > 0 && len(ids) > filter.Limit {
		ids = ids[:filter.Limit]
	}

	builds := make([]entities.Build, 0, len(ids))
	for _, id := range ids {
		builds = append(builds, copyBuild(s.builds[id]))
	}
	return builds, nil
}

func (s *Store) Confirm(_ context.Context, build entities.Build) (entities.Build, error) {
	s.mu.Lock()
	current, ok := s.builds[build.ID]
	if !ok {
		s.mu.Unlock()
		return entities.Build{}, domainerrors.ErrBuildNotFound
	}
	if current.Status == entities.BuildStatusConfirmed {
		s.mu.Unlock()
		return copyBuild(current), nil
	}
	if current.Status != entities.BuildStatusPending {
		s.mu.Unlock()
		return entities.Build{}, domainerrors.ErrBuildNotPending
	}
	current.Name = build.Name
	current.Description = build.Description
	current.Attributes = cloneAttributes(build.Attributes)
	current.Status = entities.BuildStatusConfirmed
	current.ConfirmedAt = build.ConfirmedAt
	current.UpdatedAt = build.UpdatedAt
	s.builds[build.ID] = current
	s.mu.Unlock()

	s.log.Append(events.Envelope{
		AggregateType: entities.AggregateTypeBuild,
		AggregateID:   strconv.FormatInt(build.ID, 10),
		Type:          entities.EventTypeBuildConfirmed,
		Payload: map[string]any{
			"build_id": build.ID,
			"name":     build.Name,
		},
		OccurredAt: build.UpdatedAt,
	})
	return copyBuild(current), nil
}

func (s *Store) Deny(_ context.Context, buildID int64) error {
	s.mu.Lock()
	current, ok := s.builds[buildID]
	if !ok {
		s.mu.Unlock()
		return domainerrors.ErrBuildNotFound
	}
	if current.Status == entities.BuildStatusDenied {
		s.mu.Unlock()
		return nil
	}
	if current.Status != entities.BuildStatusPending {
		s.mu.Unlock()
		return domainerrors.ErrBuildNotPending
	}
	now := time.Now().UTC()
	current.Status = entities.BuildStatusDenied
	current.UpdatedAt = now
	s.builds[buildID] = current
	s.mu.Unlock()

	s.log.Append(events.Envelope{
		AggregateType: entities.AggregateTypeBuild,
		AggregateID:   strconv.FormatInt(buildID, 10),
		Type:          entities.EventTypeBuildDenied,
		Payload: map[string]any{
			"build_id": buildID,
		},
		OccurredAt: now,
	})
	return nil
}

func (s *Store) TryLock(_ context.Context, recordID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	build, ok := s.builds[recordID]
	if !ok || build.IsLocked {
		return false, nil
	}
	now := time.Now().UTC()
	build.IsLocked = true
	build.LockedAt = &now
	s.builds[recordID] = build
	return true, nil
}

func (s *Store) Unlock(_ context.Context, recordID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	build, ok := s.builds[recordID]
	if !ok {
		return nil
	}
	build.IsLocked = false
	build.LockedAt = nil
	s.builds[recordID] = build
	return nil
}

func (s *Store) ReleaseStale(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cleared int64
	for id, build := range s.builds {
		if build.IsLocked && build.LockedAt != nil && build.LockedAt.Before(olderThan) {
			build.IsLocked = false
			build.LockedAt = nil
			s.builds[id] = build
			cleared++
		}
	}
	return cleared, nil
}

func copyBuild(build entities.Build) entities.Build {
	build.Attributes = cloneAttributes(build.Attributes)
	return build
}

func cloneAttributes(attributes map[string]any) map[string]any {
	if attributes == nil {
		return nil
	}
	cloned := make(map[string]any, len(attributes))
	for key, value := range attributes {
		cloned[key] = value
	}
	return cloned
}

var _ ports.BuildRepository = (*Store)(nil)
