package gateway

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spec-kit/contact-gateway/internal/observability"
)

// ErrGatewayClosed is returned by Publish once the gateway has been shut
// down. It signals a programming error distinct from the empty-room no-op.
var ErrGatewayClosed = errors.New("gateway is not running")

// ErrNotInitialized is returned by Default before SetDefault has run.
var ErrNotInitialized = errors.New("gateway not initialized")

// Gateway owns the set of live connections and their room memberships, and
// fans published events out to exactly the subscribers of the target room.
type Gateway struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
	closed  bool

	logger  *zap.Logger
	metrics *observability.Metrics
}

// New constructs a running gateway.
func New(logger *zap.Logger, metrics *observability.Metrics) *Gateway {
	return &Gateway{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		logger:  logger,
		metrics: metrics,
	}
}

// Register adds an authenticated connection to the registry. Connections
// that fail authentication must never reach this point.
func (g *Gateway) Register(c *Client) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrGatewayClosed
	}
	g.clients[c.ID] = c
	g.metrics.RecordConnection(1)
	g.logger.Debug("connection registered",
		zap.String("connection_id", c.ID),
		zap.String("operator_id", c.OperatorID))
	return nil
}

// Join subscribes the connection to a room. It is idempotent and implicitly
// creates the room on first join. Unregistered connections are ignored.
func (g *Gateway) Join(c *Client, room string) {
	if room == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.clients[c.ID]; !ok {
		return
	}
	members, ok := g.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		g.rooms[room] = members
	}
	members[c.ID] = c
	g.logger.Info("connection joined room",
		zap.String("connection_id", c.ID),
		zap.String("room", room))
}

// Leave removes the connection from a single room, dropping the room's
// subscriber entry when it empties.
func (g *Gateway) Leave(c *Client, room string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeFromRoom(c.ID, room)
}

// Disconnect removes the connection from every room and discards its
// registry entry. It is idempotent; double-disconnect is a no-op.
func (g *Gateway) Disconnect(c *Client) {
	g.mu.Lock()
	if _, ok := g.clients[c.ID]; !ok {
		g.mu.Unlock()
		return
	}
	for room := range g.rooms {
		g.removeFromRoom(c.ID, room)
	}
	delete(g.clients, c.ID)
	close(c.send)
	g.metrics.RecordConnection(-1)
	g.mu.Unlock()

	g.logger.Info("connection disconnected", zap.String("connection_id", c.ID))
}

// Publish delivers event to every current subscriber of room. An empty room
// is a no-op. Subscribers that cannot accept the event within their bounded
// send buffer are evicted instead of stalling the publish for the rest.
func (g *Gateway) Publish(room string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var stalled []*Client
	var delivered int64

	g.mu.RLock()
	if g.closed {
		g.mu.RUnlock()
		return ErrGatewayClosed
	}
	for _, client := range g.rooms[room] {
		if client.enqueue(data) {
			delivered++
		} else {
			stalled = append(stalled, client)
		}
	}
	g.mu.RUnlock()

	g.metrics.RecordDelivery(delivered)

	for _, client := range stalled {
		g.metrics.RecordStalledEviction()
		g.logger.Warn("evicting stalled subscriber",
			zap.String("connection_id", client.ID),
			zap.String("room", room))
		go g.Disconnect(client)
	}
	return nil
}

// RoomSize returns the current subscriber count of a room.
func (g *Gateway) RoomSize(room string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms[room])
}

// ClientCount returns how many connections are registered.
func (g *Gateway) ClientCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}

// Close disconnects every client and rejects further publishes.
func (g *Gateway) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	clients := make([]*Client, 0, len(g.clients))
	for _, c := range g.clients {
		clients = append(clients, c)
	}
	g.rooms = make(map[string]map[string]*Client)
	g.clients = make(map[string]*Client)
	for _, c := range clients {
		close(c.send)
		g.metrics.RecordConnection(-1)
	}
	g.mu.Unlock()

	g.logger.Info("gateway closed", zap.Int("disconnected", len(clients)))
}

// caller must hold g.mu.
func (g *Gateway) removeFromRoom(clientID, room string) {
	members, ok := g.rooms[room]
	if !ok {
		return
	}
	delete(members, clientID)
	if len(members) == 0 {
		delete(g.rooms, room)
	}
}

// defaultGateway backs the composition-root accessor. Business code receives
// an explicit *Gateway; only process wiring should reach for Default.
var defaultGateway atomic.Pointer[Gateway]

// SetDefault installs the process-wide gateway handle.
func SetDefault(g *Gateway) {
	defaultGateway.Store(g)
}

// Default returns the process-wide gateway, or ErrNotInitialized when wiring
// has not run yet.
func Default() (*Gateway, error) {
	g := defaultGateway.Load()
	if g == nil {
		return nil, ErrNotInitialized
	}
	return g, nil
}
