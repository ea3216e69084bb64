package gateway

// NotificationRoom is the fixed room for general directory notifications.
const NotificationRoom = "notification"

// ChatBoxRoom names the per-conversation room for a ticket.
func ChatBoxRoom(ticketID string) string {
	return ticketID
}

// TicketsRoom names the room for a ticket queue/status value.
func TicketsRoom(status string) string {
	return status
}
