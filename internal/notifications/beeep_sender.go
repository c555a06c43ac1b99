package notifications

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// BeeepSender shows desktop notifications via the OS notification
// service.
type BeeepSender struct {
	icon   string
	logger *slog.Logger
}

func NewBeeepSender(icon string, logger *slog.Logger) *BeeepSender {
	if logger == nil {
		logger = slog.Default().With("component", "notifications")
	}

	return &BeeepSender{icon: icon, logger: logger}
}

func (s *BeeepSender) Send(payload Payload) {
	if err := beeep.Notify(payload.Title, payload.Content, s.icon); err != nil {
		s.logger.Warn("send desktop notification", "title", payload.Title, "error", err)
	}
}
