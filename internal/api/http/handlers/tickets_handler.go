package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contact-gateway/internal/api/dto"
	"github.com/spec-kit/contact-gateway/internal/auth"
	"github.com/spec-kit/contact-gateway/internal/domain"
	"github.com/spec-kit/contact-gateway/internal/service"
	apperrors "github.com/spec-kit/contact-gateway/pkg/util"
)

// TicketsHandler manages conversation queue endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Create(c.Context(), req.ContactID, req.LastMessage)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTicket(ticket))
}

// UpdateStatus PUT /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateTicketStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	var operatorID *string
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.Operator != nil {
		operatorID = &principal.Operator.ID
	}

	ticket, err := h.service.UpdateStatus(c.Context(), c.Params("id"), req.Status, operatorID)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// ListByStatus GET /tickets.
func (h *TicketsHandler) ListByStatus(c *fiber.Ctx) error {
	status := domain.TicketStatus(c.Query("status", string(domain.TicketStatusPending)))
	tickets, err := h.service.ListByStatus(c.Context(), status)
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicket(&tickets[i]))
	}
	return c.JSON(fiber.Map{"tickets": items})
}
