package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contact-gateway/internal/api/dto"
	"github.com/spec-kit/contact-gateway/internal/repository"
	"github.com/spec-kit/contact-gateway/internal/service"
	apperrors "github.com/spec-kit/contact-gateway/pkg/util"
)

const contactsPageSize = 20

// ContactsHandler manages contact directory endpoints.
type ContactsHandler struct {
	service *service.ContactService
}

// NewContactsHandler constructs handler.
func NewContactsHandler(contactService *service.ContactService) *ContactsHandler {
	return &ContactsHandler{service: contactService}
}

// List GET /contacts.
func (h *ContactsHandler) List(c *fiber.Ctx) error {
	pageNumber, err := strconv.Atoi(c.Query("pageNumber", "1"))
	if err != nil || pageNumber < 1 {
		pageNumber = 1
	}

	filter := repository.ContactFilter{
		SearchParam: c.Query("searchParam"),
		Limit:       contactsPageSize,
		Offset:      (pageNumber - 1) * contactsPageSize,
	}
	contacts, count, err := h.service.List(c.Context(), filter)
	if err != nil {
		return err
	}

	items := make([]dto.ContactResponse, 0, len(contacts))
	for i := range contacts {
		items = append(items, dto.FromContact(&contacts[i]))
	}
	return c.JSON(dto.ContactListResponse{
		Contacts: items,
		Count:    count,
		HasMore:  filter.Offset+len(items) < count,
	})
}

// Show GET /contacts/:id.
func (h *ContactsHandler) Show(c *fiber.Ctx) error {
	contact, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromContact(contact))
}

// Create POST /contacts.
func (h *ContactsHandler) Create(c *fiber.Ctx) error {
	var req dto.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contact, err := h.service.Create(c.Context(), contactInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromContact(contact))
}

// Update PUT /contacts/:id.
func (h *ContactsHandler) Update(c *fiber.Ctx) error {
	var req dto.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	contact, err := h.service.Update(c.Context(), c.Params("id"), contactInput(req))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromContact(contact))
}

// Delete DELETE /contacts/:id.
func (h *ContactsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "contact deleted"})
}

// DeleteAll DELETE /contacts.
func (h *ContactsHandler) DeleteAll(c *fiber.Ctx) error {
	if err := h.service.DeleteAll(c.Context()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func contactInput(req dto.ContactRequest) service.ContactInput {
	return service.ContactInput{
		Name:        req.Name,
		Number:      req.Number,
		Email:       req.Email,
		Address:     req.Address,
		MessengerID: req.MessengerID,
		InstagramID: req.InstagramID,
		TelegramID:  req.TelegramID,
		ExtraInfo:   req.ExtraInfo,
	}
}
