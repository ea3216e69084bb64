package worker

import (
	"github.com/spec-kit/contact-gateway/internal/service"
)

// StartBroadcastWorker registers gateway fan-out handlers on the event bus.
func StartBroadcastWorker(broadcastService *service.BroadcastService) {
	if broadcastService == nil {
		return
	}
	broadcastService.RegisterHandlers()
}
