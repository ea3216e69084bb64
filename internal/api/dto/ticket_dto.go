package dto

import (
	"time"

	"github.com/spec-kit/contact-gateway/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ContactID   string `json:"contactId"`
	LastMessage string `json:"lastMessage"`
}

// UpdateTicketStatusRequest payload.
type UpdateTicketStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// TicketResponse is the canonical persisted ticket.
type TicketResponse struct {
	ID          string              `json:"id"`
	ContactID   string              `json:"contactId"`
	OperatorID  *string             `json:"operatorId"`
	Status      domain.TicketStatus `json:"status"`
	LastMessage string              `json:"lastMessage"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// FromTicket maps the domain entity to its response shape.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		ContactID:   ticket.ContactID,
		OperatorID:  ticket.OperatorID,
		Status:      ticket.Status,
		LastMessage: ticket.LastMessage,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}
