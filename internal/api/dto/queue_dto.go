package dto

import "time"

// TicketResponse is returned by ticket issuance.
type TicketResponse struct {
	TicketNumber int64     `json:"ticket_number"`
	Timestamp    time.Time `json:"timestamp"`
	Attended     bool      `json:"attended"`
}

// QueueStatusResponse reports queue depth.
type QueueStatusResponse struct {
	WaitingTickets int64 `json:"waiting_tickets"`
	TotalIssued    int64 `json:"total_issued"`
	HighestTicket  int64 `json:"highest_ticket"`
}

// CalledTicketResponse is returned when staff calls the next ticket.
type CalledTicketResponse struct {
	CalledTicket    int64     `json:"called_ticket"`
	CalledTime      time.Time `json:"called_time"`
	WaitTimeSeconds float64   `json:"wait_time_seconds"`
}

// CurrentlyCalledResponse reports the most recently attended ticket; both
// fields are null when nothing has been called yet.
type CurrentlyCalledResponse struct {
	CurrentlyCalled *int64     `json:"currently_called"`
	CalledAt        *time.Time `json:"called_at"`
}

// HistoryEntry is one attended ticket in the history listing.
type HistoryEntry struct {
	TicketNumber int64     `json:"ticket_number"`
	CalledAt     time.Time `json:"called_at"`
}

// ResetResponse acknowledges a queue reset.
type ResetResponse struct {
	Success bool `json:"success"`
}

// StaffLoginRequest carries operator credentials.
type StaffLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// StaffLoginResponse carries the issued token.
type StaffLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
