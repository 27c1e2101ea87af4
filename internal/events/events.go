package events

import (
	"encoding/json"
	"time"
)

// Version is bumped when the payload of an existing type changes shape.
const Version = 1

const (
	TypePing             = "ping"
	TypeLeadCreated      = "lead_created"
	TypeLeadUpdated      = "lead_updated"
	TypeDiscoverFinished = "discover_finished"
)

// Event is one SSE message. Data holds the lead or discovery result as
// returned by the JSON API.
type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// New stamps an event of typ. A payload that fails to marshal is dropped
// and the event goes out without data.
func New(reqID, typ string, data any) Event {
	e := Event{
		Type:      typ,
		Version:   Version,
		At:        time.Now().UTC(),
		RequestID: reqID,
	}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			e.Data = b
		}
	}
	return e
}

// Encode renders e as the single-line JSON written after "data: ".
func (e Event) Encode() string {
	b, _ := json.Marshal(e)
	return string(b)
}
