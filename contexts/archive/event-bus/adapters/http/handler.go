package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"quorum/contexts/archive/event-bus/application/queries"
	httptransport "quorum/contexts/archive/event-bus/transport/http"
	"quorum/internal/shared/events"
)

type Handler struct {
	Events queries.EventsUseCase
	Logger *slog.Logger
}

// GetEventHandler godoc
// @Summary Get a domain event
// @Description Returns one persisted event row by id.
// @Tags event-bus
// @Accept json
// @Produce json
// @Param event_id path int true "Event id"
// @Success 200 {object} httptransport.EventResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /events/{event_id} [get]
func (h Handler) GetEventHandler(ctx context.Context, eventID int64) (httptransport.EventResponse, error) {
	envelope, err := h.Events.Get(ctx, queries.GetEventQuery{EventID: eventID})
	if err != nil {
		return httptransport.EventResponse{}, err
	}
	return httptransport.EventResponse{Item: mapEvent(envelope)}, nil
}

// ListEventsHandler godoc
// @Summary List domain events
// @Description Returns persisted events newest first, optionally filtered by processed state.
// @Tags event-bus
// @Accept json
// @Produce json
// @Param processed query string false "Processed filter: true,false"
// @Param limit query int false "Page size (max 50)"
// @Success 200 {object} httptransport.ListEventsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /events [get]
func (h Handler) ListEventsHandler(ctx context.Context, processed string, limit int) (httptransport.ListEventsResponse, error) {
	items, err := h.Events.List(ctx, queries.ListEventsQuery{Processed: processed, Limit: limit})
	if err != nil {
		return httptransport.ListEventsResponse{}, err
	}
	dtos := make([]httptransport.EventDTO, 0, len(items))
	for _, envelope := range items {
		dtos = append(dtos, mapEvent(envelope))
	}
	return httptransport.ListEventsResponse{Items: dtos}, nil
}

func mapEvent(envelope events.Envelope) httptransport.EventDTO {
	dto := httptransport.EventDTO{
		EventID:       envelope.ID,
		AggregateType: envelope.AggregateType,
		AggregateID:   envelope.AggregateID,
		Type:          envelope.Type,
		Payload:       envelope.Payload,
		CorrelationID: envelope.CorrelationID,
		OccurredAt:    envelope.OccurredAt.UTC().Format(time.RFC3339),
		Processed:     envelope.Processed,
	}
	if envelope.ProcessedAt != nil {
		dto.ProcessedAt = envelope.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
