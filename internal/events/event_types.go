package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketIssued EventType = "ticket_issued"
	EventTicketCalled EventType = "ticket_called"
	EventQueueReset   EventType = "queue_reset"
)

// Event represents a queue event emitted by the service facade.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketIssuedPayload carries what the print sink needs.
type TicketIssuedPayload struct {
	TicketNumber int64     `json:"ticket_number"`
	IssuedAt     time.Time `json:"issued_at"`
}

// TicketCalledPayload carries what display boards need.
type TicketCalledPayload struct {
	TicketNumber    int64     `json:"ticket_number"`
	CalledAt        time.Time `json:"called_at"`
	WaitTimeSeconds float64   `json:"wait_time_seconds"`
}

// QueueResetPayload reports how many tickets were flushed.
type QueueResetPayload struct {
	TicketsReset int64 `json:"tickets_reset"`
}
