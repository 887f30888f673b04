package outbox

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quorum/internal/shared/events"
)

// Record is one row of the append-only events table. The table doubles as the
// transactional outbox: state-changing repositories insert a row inside their
// own transaction, and the bus later marks it processed.
type Record struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	AggregateType string     `gorm:"column:aggregate_type"`
	AggregateID   string     `gorm:"column:aggregate_id"`
	Type          string     `gorm:"column:type"`
	Payload       []byte     `gorm:"column:payload"`
	CorrelationID string     `gorm:"column:correlation_id"`
	OccurredAt    time.Time  `gorm:"column:occurred_at"`
	Processed     bool       `gorm:"column:processed;index"`
	ProcessedAt   *time.Time `gorm:"column:processed_at"`
}

func (Record) TableName() string {
	return "events"
}

// ToEnvelope decodes the persisted payload back into the shared event shape.
func (m Record) ToEnvelope() (events.Envelope, error) {
	payload := map[string]any{}
	if len(m.Payload) > 0 {
		if err := json.Unmarshal(m.Payload, &payload); err != nil {
			return events.Envelope{}, fmt.Errorf("decode payload of event %d: %w", m.ID, err)
		}
	}
	envelope := events.Envelope{
		ID:            m.ID,
		AggregateType: m.AggregateType,
		AggregateID:   m.AggregateID,
		Type:          m.Type,
		Payload:       payload,
		CorrelationID: m.CorrelationID,
		OccurredAt:    m.OccurredAt.UTC(),
		Processed:     m.Processed,
	}
	if m.ProcessedAt != nil {
		processedAt := m.ProcessedAt.UTC()
		envelope.ProcessedAt = &processedAt
	}
	return envelope, nil
}

// Appender inserts event rows inside the caller's transaction and queues the
// change notification that rides the commit. The notification body is the
// decimal id of the new row.
type Appender struct {
	Channel string
}

// AppendTx must run on an open transaction handle so the event commits or
// rolls back together with the state change it describes.
func (a Appender) AppendTx(tx *gorm.DB, envelope events.Envelope) (int64, error) {
	payload, err := json.Marshal(envelope.Payload)
	if err != nil {
		return 0, fmt.Errorf("encode %s payload: %w", envelope.Type, err)
	}
	row := Record{
		AggregateType: envelope.AggregateType,
		AggregateID:   envelope.AggregateID,
		Type:          envelope.Type,
		Payload:       payload,
		CorrelationID: envelope.CorrelationID,
		OccurredAt:    envelope.OccurredAt.UTC(),
	}
	if row.CorrelationID == "" {
		row.CorrelationID = uuid.NewString()
	}
	if row.OccurredAt.IsZero() {
		row.OccurredAt = time.Now().UTC()
	}
	if err := tx.Create(&row).Error; err != nil {
		return 0, fmt.Errorf("append %s event: %w", envelope.Type, err)
	}
	if a.Channel != "" {
		notify := tx.Exec("SELECT pg_notify(?, ?)", a.Channel, strconv.FormatInt(row.ID, 10))
		if notify.Error != nil {
			return 0, fmt.Errorf("notify channel %s: %w", a.Channel, notify.Error)
		}
	}
	return row.ID, nil
}
