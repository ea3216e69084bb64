package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/contact-gateway/internal/domain"
	"github.com/spec-kit/contact-gateway/internal/events"
	"github.com/spec-kit/contact-gateway/internal/repository"
	apperrors "github.com/spec-kit/contact-gateway/pkg/util"
)

// TicketService coordinates conversation queue changes and emits the events
// that feed the per-ticket and per-status rooms.
type TicketService struct {
	tickets    repository.TicketRepository
	contacts   repository.ContactRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, contacts repository.ContactRepository, dispatcher events.Dispatcher, logger *zap.Logger) *TicketService {
	return &TicketService{
		tickets:    tickets,
		contacts:   contacts,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Create opens a ticket for an existing contact in the pending queue.
func (s *TicketService) Create(ctx context.Context, contactID, lastMessage string) (*domain.Ticket, error) {
	if contactID == "" {
		return nil, apperrors.NewValidationError("contact_id is required", nil)
	}
	if _, err := s.contacts.GetByID(ctx, contactID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("contact", map[string]any{"contact_id": contactID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		ContactID:   contactID,
		Status:      domain.TicketStatusPending,
		LastMessage: lastMessage,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	s.publish(ctx, events.EventTicketCreated, events.TicketPayload{Ticket: ticket})
	return ticket, nil
}

// UpdateStatus moves a ticket between queues and broadcasts the transition.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus, operatorID *string) (*domain.Ticket, error) {
	if !domain.ValidTicketStatus(status) {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": status})
	}

	existing, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket, err := s.tickets.UpdateStatus(ctx, ticketID, status, operatorID)
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	s.publish(ctx, events.EventTicketStatusChanged, events.TicketStatusChangedPayload{
		Ticket:    ticket,
		OldStatus: existing.Status,
	})
	return ticket, nil
}

// ListByStatus lists the tickets currently in a queue.
func (s *TicketService) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	if !domain.ValidTicketStatus(status) {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": status})
	}
	tickets, err := s.tickets.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed after commit",
			zap.String("event_type", string(eventType)),
			zap.Error(err))
	}
}
