package domain

import "time"

// Ticket is a single queue entry. TicketNumber is the customer-facing
// sequential number; ID is the store-assigned insertion-order tiebreak.
type Ticket struct {
	ID           int64
	TicketNumber int64
	IssuedAt     time.Time
	Attended     bool
}

// QueueStatus is a point-in-time snapshot of queue depth.
type QueueStatus struct {
	WaitingTickets int64
	TotalIssued    int64
	HighestTicket  int64
}
