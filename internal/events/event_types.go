package events

import (
	"time"

	"github.com/spec-kit/contact-gateway/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventContactCreated      EventType = "contact_created"
	EventContactUpdated      EventType = "contact_updated"
	EventContactDeleted      EventType = "contact_deleted"
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted by services after a committed
// mutation. Events carry the canonical persisted state, never a draft.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ContactPayload carries the canonical post-commit contact.
type ContactPayload struct {
	Contact *domain.Contact `json:"contact"`
}

// ContactDeletedPayload carries only the removed identifier.
type ContactDeletedPayload struct {
	ContactID string `json:"contactId"`
}

// TicketPayload carries the canonical post-commit ticket.
type TicketPayload struct {
	Ticket *domain.Ticket `json:"ticket"`
}

// TicketStatusChangedPayload records a queue transition.
type TicketStatusChangedPayload struct {
	Ticket    *domain.Ticket      `json:"ticket"`
	OldStatus domain.TicketStatus `json:"oldStatus"`
}
