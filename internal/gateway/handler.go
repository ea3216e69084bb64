package gateway

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/contact-gateway/internal/auth"
	"github.com/spec-kit/contact-gateway/internal/config"
)

// Inbound join requests mirror the operator UI's socket API.
const (
	msgJoinChatBox      = "joinChatBox"
	msgJoinNotification = "joinNotification"
	msgJoinTickets      = "joinTickets"
)

type inboundMessage struct {
	Event    string `json:"event"`
	TicketID string `json:"ticketId"`
	Status   string `json:"status"`
}

// Handler upgrades HTTP requests into gateway connections.
type Handler struct {
	gateway *Gateway
	tokens  *auth.TokenManager
	cfg     config.GatewayConfig
	logger  *zap.Logger
}

// NewHandler constructs the WebSocket transport handler.
func NewHandler(gw *Gateway, tokens *auth.TokenManager, cfg config.GatewayConfig, logger *zap.Logger) *Handler {
	return &Handler{gateway: gw, tokens: tokens, cfg: cfg, logger: logger}
}

// UpgradeRequired gates the route to WebSocket upgrade requests.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handle returns the fiber handler serving the connection lifecycle. The
// token rides on the connection request; verification happens exactly once,
// immediately after accept, and failure closes the connection before it can
// join anything.
func (h *Handler) Handle() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		claims, err := h.tokens.ParseToken(conn.Query("token"))
		if err != nil {
			h.logger.Error("rejecting connection: token verification failed", zap.Error(err))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token"))
			_ = conn.Close()
			return
		}

		client := NewClient(uuid.New().String(), claims.OperatorID, conn, h.cfg, h.logger)
		if err := h.gateway.Register(client); err != nil {
			h.logger.Error("rejecting connection: gateway unavailable", zap.Error(err))
			_ = conn.Close()
			return
		}
		h.logger.Info("client connected",
			zap.String("connection_id", client.ID),
			zap.String("operator_id", client.OperatorID))

		go client.WritePump()
		client.ReadPump(h.gateway, h.handleMessage)
	})
}

func (h *Handler) handleMessage(client *Client, message []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		h.logger.Debug("discarding malformed message",
			zap.String("connection_id", client.ID),
			zap.Error(err))
		return
	}

	switch msg.Event {
	case msgJoinChatBox:
		h.gateway.Join(client, ChatBoxRoom(msg.TicketID))
	case msgJoinNotification:
		h.gateway.Join(client, NotificationRoom)
	case msgJoinTickets:
		h.gateway.Join(client, TicketsRoom(msg.Status))
	default:
		h.logger.Debug("ignoring unknown message",
			zap.String("connection_id", client.ID),
			zap.String("event", msg.Event))
	}
}
