package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"quorum/contexts/archive/vote-sessions/domain/entities"
	domainerrors "quorum/contexts/archive/vote-sessions/domain/errors"
	"quorum/contexts/archive/vote-sessions/ports"
	"quorum/internal/shared/events"
	"quorum/internal/shared/outbox"
)

// Store keeps sessions and votes in memory with the same open-check and
// conditional-close rules the postgres repository enforces. Closure events
// land in the attached memory log.
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	sessions map[int64]entities.VoteSession
	votes    map[int64]map[int64]float64
	log      *outbox.MemoryLog
}

func NewStore(log *outbox.MemoryLog) *Store {
	if log == nil {
		log = outbox.NewMemoryLog()
	}
	return &Store{
		nextID:   1,
		sessions: make(map[int64]entities.VoteSession),
		votes:    make(map[int64]map[int64]float64),
		log:      log,
	}
}

// EventLog exposes the backing log so tests can assert on emitted events.
func (s *Store) EventLog() *outbox.MemoryLog {
	return s.log
}

func (s *Store) CreateSession(_ context.Context, session entities.VoteSession) (entities.VoteSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.ID = s.nextID
	s.nextID++
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	s.sessions[session.ID] = copySession(session)
	return copySession(session), nil
}

func (s *Store) GetSession(_ context.Context, sessionID int64) (entities.VoteSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return entities.VoteSession{}, domainerrors.ErrSessionNotFound
	}
	return copySession(session), nil
}

func (s *Store) SessionByMessage(_ context.Context, messageID int64) (entities.VoteSession, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		match entities.VoteSession
		found bool
	)
	for _, session := range s.sessions {
		for _, linked := range session.MessageIDs {
			if linked != messageID {
				continue
			}
			if !found || session.ID > match.ID {
				match = session
				found = true
			}
			break
		}
	}
	if !found {
		return entities.VoteSession{}, false, nil
	}
	return copySession(match), true, nil
}

func (s *Store) ListOpenSessions(_ context.Context) ([]entities.VoteSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.sessions))
	for id, session := range s.sessions {
		if session.Status == entities.StatusOpen {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	sessions := make([]entities.VoteSession, 0, len(ids))
	for _, id := range ids {
		sessions = append(sessions, copySession(s.sessions[id]))
	}
	return sessions, nil
}

func (s *Store) CurrentWeight(_ context.Context, sessionID int64, userID int64) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	weight, ok := s.votes[sessionID][userID]
	return weight, ok, nil
}

func (s *Store) SetVote(_ context.Context, sessionID int64, userID int64, weight float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domainerrors.ErrSessionNotFound
	}
	if session.Status != entities.StatusOpen {
		return domainerrors.ErrSessionClosed
	}
	if weight == 0 {
		delete(s.votes[sessionID], userID)
		return nil
	}
	if s.votes[sessionID] == nil {
		s.votes[sessionID] = make(map[int64]float64)
	}
	s.votes[sessionID][userID] = weight
	return nil
}

func (s *Store) ListVotes(_ context.Context, sessionID int64) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userIDs := make([]int64, 0, len(s.votes[sessionID]))
	for userID := range s.votes[sessionID] {
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	votes := make([]entities.Vote, 0, len(userIDs))
	for _, userID := range userIDs {
		votes = append(votes, entities.Vote{
			SessionID: sessionID,
			UserID:    userID,
			Weight:    s.votes[sessionID][userID],
		})
	}
	return votes, nil
}

func (s *Store) CloseSession(_ context.Context, sessionID int64, result entities.SessionResult, net float64, closedAt time.Time) (bool, error) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return false, domainerrors.ErrSessionNotFound
	}
	if session.Status != entities.StatusOpen {
		s.mu.Unlock()
		return false, nil
	}
	stamp := closedAt.UTC()
	session.Status = entities.StatusClosed
	session.Result = result
	session.ClosedAt = &stamp
	s.sessions[sessionID] = session
	kind := session.Kind
	s.mu.Unlock()

	s.log.Append(events.Envelope{
		AggregateType: entities.AggregateTypeVoteSession,
		AggregateID:   strconv.FormatInt(sessionID, 10),
		Type:          entities.EventTypeVoteSessionClosed,
		Payload: map[string]any{
			"session_id": sessionID,
			"kind":       string(kind),
			"result":     string(result),
			"net":        net,
		},
		OccurredAt: stamp,
	})
	return true, nil
}

func copySession(session entities.VoteSession) entities.VoteSession {
	if session.MessageIDs != nil {
		ids := make([]int64, len(session.MessageIDs))
		copy(ids, session.MessageIDs)
		session.MessageIDs = ids
	}
	if session.Build != nil {
		build := *session.Build
		if build.Changes != nil {
			changes := make([]entities.Change, len(build.Changes))
			copy(changes, build.Changes)
			build.Changes = changes
		}
		session.Build = &build
	}
	if session.Deletion != nil {
		deletion := *session.Deletion
		session.Deletion = &deletion
	}
	if session.ClosedAt != nil {
		closedAt := *session.ClosedAt
		session.ClosedAt = &closedAt
	}
	return session
}

var _ ports.SessionRepository = (*Store)(nil)
