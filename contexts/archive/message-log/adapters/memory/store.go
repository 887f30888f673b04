package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"quorum/contexts/archive/message-log/domain/entities"
	domainerrors "quorum/contexts/archive/message-log/domain/errors"
	"quorum/contexts/archive/message-log/ports"
	"quorum/internal/shared/events"
	"quorum/internal/shared/outbox"
)

type Store struct {
	mu       sync.RWMutex
	messages map[int64]entities.Message
	log      *outbox.MemoryLog
}

func NewStore(log *outbox.MemoryLog) *Store {
	if log == nil {
		log = outbox.NewMemoryLog()
	}
	return &Store{
		messages: make(map[int64]entities.Message),
		log:      log,
	}
}

// EventLog exposes the backing log so tests can assert on emitted events.
func (s *Store) EventLog() *outbox.MemoryLog {
	return s.log
}

func (s *Store) TrackMessage(_ context.Context, message entities.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.messages[message.ID]; exists {
		return nil
	}
	s.messages[message.ID] = message
	return nil
}

func (s *Store) GetMessage(_ context.Context, messageID int64) (entities.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	message, ok := s.messages[messageID]
	if !ok {
		return entities.Message{}, domainerrors.ErrMessageNotFound
	}
	return message, nil
}

func (s *Store) MarkForDeletion(_ context.Context, messageID int64, markedAt time.Time) (bool, error) {
	s.mu.Lock()
	message, ok := s.messages[messageID]
	if !ok {
		s.mu.Unlock()
		return false, domainerrors.ErrMessageNotFound
	}
	if message.MarkedForDeletion {
		s.mu.Unlock()
		return false, nil
	}
	stamp := markedAt.UTC()
	message.MarkedForDeletion = true
	message.MarkedAt = &stamp
	s.messages[messageID] = message
	s.mu.Unlock()

	s.log.Append(events.Envelope{
		AggregateType: entities.AggregateTypeMessage,
		AggregateID:   strconv.FormatInt(messageID, 10),
		Type:          entities.EventTypeMessageMarkedForDeletion,
		Payload: map[string]any{
			"message_id": messageID,
			"channel_id": message.ChannelID,
		},
		OccurredAt: stamp,
	})
	return true, nil
}

func (s *Store) UntrackMessage(_ context.Context, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[messageID]; !ok {
		return domainerrors.ErrMessageNotFound
	}
	delete(s.messages, messageID)
	return nil
}

func (s *Store) ListMarked(_ context.Context, limit int) ([]entities.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var marked []entities.Message
	for _, message := range s.messages {
		if message.MarkedForDeletion {
			marked = append(marked, message)
		}
	}
	sort.Slice(marked, func(i, j int) bool {
		return marked[i].MarkedAt.Before(*marked[j].MarkedAt)
	})
	if limit > 0 && len(marked) > limit {
		marked = marked[:limit]
	}
	return marked, nil
}

func (s *Store) ListBySession(_ context.Context, sessionID int64) ([]entities.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []entities.Message
	for _, message := range s.messages {
		if message.VoteSessionID != nil && *message.VoteSessionID == sessionID {
			matched = append(matched, message)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

var _ ports.MessageRepository = (*Store)(nil)
