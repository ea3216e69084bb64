package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/contact-gateway/internal/events"
	"github.com/spec-kit/contact-gateway/internal/gateway"
)

// Publisher is the gateway surface the broadcaster needs.
type Publisher interface {
	Publish(room string, event gateway.Event) error
}

// BroadcastService forwards committed domain events to the realtime gateway,
// mapping each event type onto the rooms whose subscribers care about it.
type BroadcastService struct {
	dispatcher events.Dispatcher
	gateway    Publisher
	logger     *zap.Logger
}

// NewBroadcastService creates the service.
func NewBroadcastService(dispatcher events.Dispatcher, gw Publisher, logger *zap.Logger) *BroadcastService {
	return &BroadcastService{
		dispatcher: dispatcher,
		gateway:    gw,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (b *BroadcastService) RegisterHandlers() {
	if b.dispatcher == nil {
		return
	}
	b.dispatcher.Subscribe(events.EventContactCreated, b.handleContactCreated)
	b.dispatcher.Subscribe(events.EventContactUpdated, b.handleContactUpdated)
	b.dispatcher.Subscribe(events.EventContactDeleted, b.handleContactDeleted)
	b.dispatcher.Subscribe(events.EventTicketCreated, b.handleTicketCreated)
	b.dispatcher.Subscribe(events.EventTicketStatusChanged, b.handleTicketStatusChanged)
}

func (b *BroadcastService) handleContactCreated(_ context.Context, event events.Event) error {
	b.send(gateway.NotificationRoom, gateway.Event{
		Topic:   "contact",
		Action:  gateway.ActionCreate,
		Payload: event.Payload,
	})
	return nil
}

func (b *BroadcastService) handleContactUpdated(_ context.Context, event events.Event) error {
	b.send(gateway.NotificationRoom, gateway.Event{
		Topic:   "contact",
		Action:  gateway.ActionUpdate,
		Payload: event.Payload,
	})
	return nil
}

func (b *BroadcastService) handleContactDeleted(_ context.Context, event events.Event) error {
	b.send(gateway.NotificationRoom, gateway.Event{
		Topic:   "contact",
		Action:  gateway.ActionDelete,
		Payload: event.Payload,
	})
	return nil
}

func (b *BroadcastService) handleTicketCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketPayload)
	if !ok {
		return nil
	}
	out := gateway.Event{Topic: "ticket", Action: gateway.ActionCreate, Payload: payload}
	b.send(gateway.TicketsRoom(string(payload.Ticket.Status)), out)
	b.send(gateway.NotificationRoom, out)
	return nil
}

func (b *BroadcastService) handleTicketStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}

	// Watchers of the old queue see the ticket leave it.
	b.send(gateway.TicketsRoom(string(payload.OldStatus)), gateway.Event{
		Topic:   "ticket",
		Action:  gateway.ActionDelete,
		Payload: map[string]string{"ticketId": payload.Ticket.ID},
	})

	updated := gateway.Event{
		Topic:   "ticket",
		Action:  gateway.ActionUpdate,
		Payload: events.TicketPayload{Ticket: payload.Ticket},
	}
	b.send(gateway.TicketsRoom(string(payload.Ticket.Status)), updated)
	b.send(gateway.ChatBoxRoom(payload.Ticket.ID), updated)
	b.send(gateway.NotificationRoom, updated)
	return nil
}

func (b *BroadcastService) send(room string, event gateway.Event) {
	if err := b.gateway.Publish(room, event); err != nil {
		b.logger.Warn("gateway publish failed",
			zap.String("room", room),
			zap.String("topic", event.Topic),
			zap.Error(err))
	}
}
