package amqp

import (
	"encoding/json"
	"time"

	"bookings/internal/dashboard"
)

// EventMessage is the published form of one mutation outcome.
type EventMessage struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	Subject   string    `json:"subject,omitempty"`
	OK        bool      `json:"ok"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEventMessage(e dashboard.Event) *EventMessage {
	ts := e.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &EventMessage{
		ID:        e.ID,
		Operation: e.Operation,
		Subject:   e.Subject,
		OK:        e.OK,
		Message:   e.Message,
		Timestamp: ts,
	}
}

// RoutingKey is "mutation.<operation>.ok" or "mutation.<operation>.failed",
// so consumers can bind to failures only.
func (m *EventMessage) RoutingKey() string {
	outcome := "ok"
	if !m.OK {
		outcome = "failed"
	}
	return "mutation." + m.Operation + "." + outcome
}

func (m *EventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EventMessageFromJSON(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
