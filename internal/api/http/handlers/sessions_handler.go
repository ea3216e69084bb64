package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contact-gateway/internal/api/dto"
	"github.com/spec-kit/contact-gateway/internal/service"
	apperrors "github.com/spec-kit/contact-gateway/pkg/util"
)

// SessionsHandler manages operator authentication endpoints.
type SessionsHandler struct {
	service *service.AuthService
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(authService *service.AuthService) *SessionsHandler {
	return &SessionsHandler{service: authService}
}

// Register POST /auth/register.
func (h *SessionsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	operator, token, exp, err := h.service.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SessionResponse{
		OperatorID: operator.ID,
		Name:       operator.Name,
		Token:      token,
		ExpiresAt:  exp,
	})
}

// Login POST /auth/login.
func (h *SessionsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	operator, token, exp, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.SessionResponse{
		OperatorID: operator.ID,
		Name:       operator.Name,
		Token:      token,
		ExpiresAt:  exp,
	})
}
