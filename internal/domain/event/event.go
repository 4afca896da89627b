package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event emitted after an event-worthy
// aggregate transition. SourceID identifies the aggregate whose
// transition produced the event; TargetID identifies the aggregate a
// propagation handler is expected to act on. Handlers must re-load the
// target and re-check its status before acting; payload data may be
// stale by the time a handler runs.
type Event struct {
	ID            string         `json:"id"`
	Type          Type           `json:"type"`
	SourceID      int64          `json:"source_id"`
	TargetID      int64          `json:"target_id"`
	Payload       map[string]any `json:"payload"`
	Timestamp     time.Time      `json:"timestamp"`
	CorrelationID string         `json:"correlation_id"`
}

// New creates a new domain event with auto-generated ID and timestamp
func New(eventType Type, sourceID, targetID int64, payload map[string]any) *Event {
	id := uuid.NewString()
	return &Event{
		ID:            id,
		Type:          eventType,
		SourceID:      sourceID,
		TargetID:      targetID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: id,
	}
}

// NewCorrelated creates an event linked to an existing correlation chain
func NewCorrelated(eventType Type, sourceID, targetID int64, payload map[string]any, correlationID string) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		SourceID:      sourceID,
		TargetID:      targetID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: correlationID,
	}
}

// PayloadString retrieves a string value from the payload
func (e *Event) PayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// PayloadInt retrieves an int64 value from the payload
func (e *Event) PayloadInt(key string) int64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}

// PayloadBool retrieves a bool value from the payload
func (e *Event) PayloadBool(key string) bool {
	if val, ok := e.Payload[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}
