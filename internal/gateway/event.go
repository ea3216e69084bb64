package gateway

// Action enumerates the mutation kinds carried by broadcast events.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event is an immutable broadcast payload. It exists only transiently during
// fan-out; nothing is persisted or replayed for absent subscribers.
type Event struct {
	Topic   string `json:"topic"`
	Action  Action `json:"action"`
	Payload any    `json:"payload"`
}
