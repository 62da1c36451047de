package realtime

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Event types carried over the bridge
const (
	EventPostCreated         = "post.created"
	EventNotificationCreated = "notification.created"
)

// Event is the envelope published on Redis and delivered to websocket
// clients. EventID content-addresses the event so duplicate deliveries can
// be dropped before they reach a client twice.
type Event struct {
	EventID string          `json:"event_id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEvent wraps a payload in an envelope with a fresh event id
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		EventID: uuid.New().String(),
		Type:    eventType,
		Payload: data,
	}, nil
}

// Encode serializes the envelope for the wire
func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent parses an envelope off the wire
func DecodeEvent(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
