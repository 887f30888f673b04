package memory

import (
	"context"
	"sync"
	"time"

	"quorum/contexts/archive/record-locks/ports"
)

type lockRow struct {
	locked   bool
	lockedAt time.Time
}

// Store is an in-memory lock table used by tests and in-memory wiring.
// Unknown records materialize unlocked on first touch.
type Store struct {
	mu   sync.Mutex
	rows map[int64]*lockRow
}

func NewStore() *Store {
	return &Store{rows: make(map[int64]*lockRow)}
}

func (s *Store) TryLock(_ context.Context, recordID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.row(recordID)
	if row.locked {
		return false, nil
	}
	row.locked = true
	row.lockedAt = time.Now().UTC()
	return true, nil
}

func (s *Store) Unlock(_ context.Context, recordID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.row(recordID)
	row.locked = false
	row.lockedAt = time.Time{}
	return nil
}

func (s *Store) ReleaseStale(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cleared int64
	for _, row := range s.rows {
		if row.locked && row.lockedAt.Before(olderThan) {
			row.locked = false
			row.lockedAt = time.Time{}
			cleared++
		}
	}
	return cleared, nil
}

// SetLocked seeds lock state directly, bypassing the conditional update.
func (s *Store) SetLocked(recordID int64, lockedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.row(recordID)
	row.locked = true
	row.lockedAt = lockedAt.UTC()
}

// IsLocked reports the stored flag for assertions.
func (s *Store) IsLocked(recordID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.row(recordID).locked
}

func (s *Store) row(recordID int64) *lockRow {
	row, ok := s.rows[recordID]
	if !ok {
		row = &lockRow{}
		s.rows[recordID] = row
	}
	return row
}

var _ ports.Store = (*Store)(nil)
