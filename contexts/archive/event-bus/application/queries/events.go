package queries

import (
	"context"
	"strings"

	domainerrors "quorum/contexts/archive/event-bus/domain/errors"
	"quorum/contexts/archive/event-bus/ports"
	"quorum/internal/shared/events"
)

const defaultListLimit = 50

type GetEventQuery struct {
	EventID int64
}

type ListEventsQuery struct {
	Processed string
	Limit     int
}

type EventsUseCase struct {
	Store ports.EventStore
}

func (uc EventsUseCase) Get(ctx context.Context, query GetEventQuery) (events.Envelope, error) {
	if query.EventID <= 0 {
		return events.Envelope{}, domainerrors.ErrEventNotFound
	}
	return uc.Store.GetEvent(ctx, query.EventID)
}

func (uc EventsUseCase) List(ctx context.Context, query ListEventsQuery) ([]events.Envelope, error) {
	filter := ports.EventFilter{Limit: query.Limit}
	if filter.Limit <= 0 || filter.Limit > defaultListLimit {
		filter.Limit = defaultListLimit
	}
	switch strings.TrimSpace(query.Processed) {
	case "":
	case "true":
		processed := true
		filter.Processed = &processed
	case "false":
		processed := false
		filter.Processed = &processed
	default:
		return nil, domainerrors.ErrInvalidEventFilter
	}
	return uc.Store.ListEvents(ctx, filter)
}
