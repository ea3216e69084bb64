package gateway

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/contact-gateway/internal/config"
	"github.com/spec-kit/contact-gateway/internal/observability"
)

func newTestGateway() *Gateway {
	return New(zap.NewNop(), observability.NewMetrics())
}

func newTestClient(id string, buffer int) *Client {
	cfg := config.GatewayConfig{SendBuffer: buffer}
	return NewClient(id, "op-"+id, nil, cfg, zap.NewNop())
}

func register(t *testing.T, gw *Gateway, id string) *Client {
	t.Helper()
	client := newTestClient(id, 8)
	require.NoError(t, gw.Register(client))
	return client
}

func receiveEvent(t *testing.T, client *Client) Event {
	t.Helper()
	select {
	case data, ok := <-client.send:
		require.True(t, ok, "send channel closed")
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("no event delivered in time")
		return Event{}
	}
}

func requireNoEvent(t *testing.T, client *Client) {
	t.Helper()
	select {
	case data, ok := <-client.send:
		if ok {
			t.Fatalf("unexpected event delivered: %s", data)
		}
	default:
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	gw := newTestGateway()
	client := register(t, gw, "c1")

	gw.Join(client, "room-a")
	gw.Join(client, "room-a")
	gw.Join(client, "room-a")

	require.Equal(t, 1, gw.RoomSize("room-a"))

	require.NoError(t, gw.Publish("room-a", Event{Topic: "contact", Action: ActionCreate}))
	receiveEvent(t, client)
	requireNoEvent(t, client)
}

func TestJoinRequiresRegistration(t *testing.T) {
	gw := newTestGateway()
	stranger := newTestClient("ghost", 8)

	gw.Join(stranger, "room-a")

	require.Equal(t, 0, gw.RoomSize("room-a"))
}

func TestPublishReachesOnlySubscribers(t *testing.T) {
	gw := newTestGateway()
	inRoom := register(t, gw, "c1")
	alsoInRoom := register(t, gw, "c2")
	outside := register(t, gw, "c3")

	gw.Join(inRoom, NotificationRoom)
	gw.Join(alsoInRoom, NotificationRoom)
	gw.Join(outside, TicketsRoom("open"))

	require.NoError(t, gw.Publish(NotificationRoom, Event{Topic: "contact", Action: ActionCreate}))

	for _, client := range []*Client{inRoom, alsoInRoom} {
		event := receiveEvent(t, client)
		require.Equal(t, "contact", event.Topic)
		require.Equal(t, ActionCreate, event.Action)
	}
	requireNoEvent(t, outside)
}

func TestPublishToEmptyRoomIsNoOp(t *testing.T) {
	gw := newTestGateway()

	require.NoError(t, gw.Publish("nobody-here", Event{Topic: "contact", Action: ActionDelete}))
}

func TestPublishAfterCloseFails(t *testing.T) {
	gw := newTestGateway()
	gw.Close()

	err := gw.Publish(NotificationRoom, Event{Topic: "contact", Action: ActionCreate})
	require.ErrorIs(t, err, ErrGatewayClosed)
}

func TestDisconnectRemovesAllMemberships(t *testing.T) {
	gw := newTestGateway()
	client := register(t, gw, "c1")
	other := register(t, gw, "c2")

	rooms := []string{NotificationRoom, ChatBoxRoom("ticket-1"), TicketsRoom("open")}
	for _, room := range rooms {
		gw.Join(client, room)
		gw.Join(other, room)
	}

	gw.Disconnect(client)

	for _, room := range rooms {
		require.Equal(t, 1, gw.RoomSize(room))
		require.NoError(t, gw.Publish(room, Event{Topic: "ticket", Action: ActionUpdate}))
		receiveEvent(t, other)
	}
	require.Equal(t, 1, gw.ClientCount())
}

func TestDisconnectIsIdempotent(t *testing.T) {
	gw := newTestGateway()
	client := register(t, gw, "c1")
	gw.Join(client, NotificationRoom)

	gw.Disconnect(client)
	gw.Disconnect(client)

	require.Equal(t, 0, gw.ClientCount())
	require.Equal(t, 0, gw.RoomSize(NotificationRoom))
}

func TestStalledSubscriberIsEvicted(t *testing.T) {
	gw := newTestGateway()
	stalled := newTestClient("slow", 1)
	require.NoError(t, gw.Register(stalled))
	healthy := register(t, gw, "fast")

	gw.Join(stalled, NotificationRoom)
	gw.Join(healthy, NotificationRoom)

	// First publish fills the stalled client's buffer; the second cannot be
	// enqueued and must evict it without blocking delivery to the rest.
	require.NoError(t, gw.Publish(NotificationRoom, Event{Topic: "contact", Action: ActionCreate}))
	require.NoError(t, gw.Publish(NotificationRoom, Event{Topic: "contact", Action: ActionUpdate}))

	receiveEvent(t, healthy)
	receiveEvent(t, healthy)

	require.Eventually(t, func() bool {
		return gw.ClientCount() == 1 && gw.RoomSize(NotificationRoom) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPublishOrderingPerRoom(t *testing.T) {
	gw := newTestGateway()
	client := register(t, gw, "c1")
	gw.Join(client, NotificationRoom)

	const total = 5
	for i := 0; i < total; i++ {
		require.NoError(t, gw.Publish(NotificationRoom, Event{
			Topic:   "contact",
			Action:  ActionUpdate,
			Payload: fmt.Sprintf("seq-%d", i),
		}))
	}

	for i := 0; i < total; i++ {
		event := receiveEvent(t, client)
		require.Equal(t, fmt.Sprintf("seq-%d", i), event.Payload)
	}
}

func TestDefaultAccessor(t *testing.T) {
	defaultGateway.Store(nil)

	_, err := Default()
	require.ErrorIs(t, err, ErrNotInitialized)

	gw := newTestGateway()
	SetDefault(gw)
	got, err := Default()
	require.NoError(t, err)
	require.Same(t, gw, got)
}
