package domain

import "time"

// TicketStatus enumerates queue states for conversations. Each status value
// doubles as a broadcast room name for clients watching that queue.
type TicketStatus string

const (
	TicketStatusOpen    TicketStatus = "open"
	TicketStatusPending TicketStatus = "pending"
	TicketStatusClosed  TicketStatus = "closed"
)

// ValidTicketStatus reports whether s is a known queue state.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusPending, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is a conversation with a contact moving through operator queues.
type Ticket struct {
	ID          string
	ContactID   string
	OperatorID  *string
	Status      TicketStatus
	LastMessage string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
