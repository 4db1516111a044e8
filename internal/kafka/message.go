package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"airline_ops/internal/models"
)

// EventEnvelope — формат сообщения в топике событий: тег варианта + payload.
// Consumer-ам достаточно event_type и flight_id, payload разбирают
// заинтересованные.
type EventEnvelope struct {
	EventType  string          `json:"event_type"`
	FlightID   string          `json:"flight_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func NewEnvelope(event models.FlightEvent, occurredAt time.Time) (*EventEnvelope, error) {
	if event == nil {
		return nil, fmt.Errorf("event is nil")
	}

	b, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}

	return &EventEnvelope{
		EventType:  event.EventType(),
		FlightID:   event.FlightRef().String(),
		OccurredAt: occurredAt,
		Payload:    b,
	}, nil
}
