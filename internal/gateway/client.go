package gateway

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/contact-gateway/internal/config"
)

// Client is one authenticated duplex channel to a connected operator UI.
type Client struct {
	ID         string
	OperatorID string

	conn   *websocket.Conn
	send   chan []byte
	cfg    config.GatewayConfig
	logger *zap.Logger
}

// NewClient wraps an accepted connection. The send channel bounds how far a
// slow consumer may fall behind before it is evicted.
func NewClient(id, operatorID string, conn *websocket.Conn, cfg config.GatewayConfig, logger *zap.Logger) *Client {
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		ID:         id,
		OperatorID: operatorID,
		conn:       conn,
		send:       make(chan []byte, buffer),
		cfg:        cfg,
		logger:     logger,
	}
}

// ReadPump consumes inbound frames until the transport closes, handing each
// message to handler. It must run on its own goroutine per connection.
func (c *Client) ReadPump(gw *Gateway, handler func(*Client, []byte)) {
	defer func() {
		gw.Disconnect(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait()))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("connection read failed",
					zap.String("connection_id", c.ID),
					zap.Error(err))
			}
			return
		}
		handler(c, message)
	}
}

// WritePump drains the send channel onto the wire and keeps the connection
// alive with pings. It exits when the send channel is closed by Disconnect.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingInterval())
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait()))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait()))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue offers data to the client without blocking. It reports false when
// the buffer is full, which marks the client as stalled.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}
