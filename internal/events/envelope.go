package events

import (
	"encoding/json"
	"time"

	"chatsync/internal/dispatch"
)

// Envelope is the wire frame every update travels in. EventType selects
// the payload shape; the payload itself is one of the dispatch update
// structs.
type Envelope struct {
	EventType  dispatch.Kind   `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope wraps an update for publishing.
func NewEnvelope(u dispatch.Update) (*Envelope, error) {
	payload, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		EventType:  u.Kind(),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}, nil
}
