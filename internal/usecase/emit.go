package usecase

import (
	"log/slog"

	"github.com/pairview/pairview/internal/application/constant"
	"github.com/pairview/pairview/internal/domain/events"
	"github.com/pairview/pairview/internal/infra/adapters/memory"
)

// emit marshals payload and writes it to one connection. Writes are
// fire-and-forget; marshal failures are logged and the event is dropped.
func emit(sockets memory.SocketRepository, connID, eventType string, payload any) {
	msg, err := events.NewMessage(eventType, payload)
	if err != nil {
		slog.Error(
			"marshal outbound event",
			slog.String(constant.Event, eventType),
			slog.Any(constant.Error, err),
		)
		return
	}

	sockets.Write(connID, msg)
}
