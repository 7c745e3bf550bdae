package messaging

import (
	"context"
	"encoding/json"
	"time"
)

// TimelineChannel carries timeline.appended events to downstream consumers
// such as dashboard refreshers.
const TimelineChannel = "hospital.timeline"

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Message is the envelope published for every outbox event.
type Message struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurredAt"`
}
