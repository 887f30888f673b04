package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type EventDTO struct {
	EventID       int64          `json:"event_id"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	Type          string         `json:"type"`
	Payload       map[string]any `json:"payload,omitempty"`
	CorrelationID string         `json:"correlation_id"`
	OccurredAt    string         `json:"occurred_at"`
	Processed     bool           `json:"processed"`
	ProcessedAt   string         `json:"processed_at,omitempty"`
}

type EventResponse struct {
	Item EventDTO `json:"item"`
}

type ListEventsResponse struct {
	Items []EventDTO `json:"items"`
}
