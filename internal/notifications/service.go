package notifications

import (
	"context"
	"log/slog"
	"sync"

	"netwatch/internal/bus"
	"netwatch/internal/config"
	"netwatch/internal/connectivity"
)

const (
	titleConnectionLost     = "Connection lost"
	titleConnectionRestored = "Connection restored"
	titleNetworkChanged     = "Network changed"
)

// Service listens to connectivity changes on the bus and raises
// user-facing notifications for them.
type Service struct {
	bus           bus.MessageBus
	currentConfig func() config.NotificationConfig
	isForeground  func() bool
	sender        Sender
	logger        *slog.Logger

	mu       sync.Mutex
	last     connectivity.State
	lastSeen bool
}

func NewService(
	messageBus bus.MessageBus,
	currentConfig func() config.NotificationConfig,
	isForeground func() bool,
	sender Sender,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default().With("component", "notifications")
	}

	return &Service{
		bus:           messageBus,
		currentConfig: currentConfig,
		isForeground:  isForeground,
		sender:        sender,
		logger:        logger,
	}
}

func (s *Service) Start(ctx context.Context) {
	if s == nil || s.bus == nil || s.sender == nil {
		return
	}

	sub := s.bus.Subscribe(connectivity.TopicState)
	go func() {
		defer s.bus.Unsubscribe(sub, connectivity.TopicState)

		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-sub:
				if !ok {
					return
				}
				state, ok := raw.(connectivity.State)
				if !ok {
					continue
				}
				s.handleState(state)
			}
		}
	}()
}

func (s *Service) handleState(state connectivity.State) {
	s.mu.Lock()
	previous := s.last
	hadPrevious := s.lastSeen
	s.last = state
	s.lastSeen = true
	s.mu.Unlock()

	cfg := s.currentConfig()
	if !cfg.Enabled {
		return
	}
	if s.isForeground != nil && s.isForeground() && !cfg.NotifyWhenFocused {
		return
	}
	// The very first observation is the baseline, not a change worth
	// announcing.
	if !hadPrevious {
		return
	}

	payload := formatPayload(previous, state)
	s.logger.Debug("notify connectivity change", "title", payload.Title, "state", state.String())
	s.sender.Send(payload)
}

func formatPayload(previous, current connectivity.State) Payload {
	switch {
	case current.Offline():
		return Payload{Title: titleConnectionLost, Content: "No network connectivity"}
	case previous.Offline():
		return Payload{Title: titleConnectionRestored, Content: "Connected via " + current.String()}
	default:
		return Payload{Title: titleNetworkChanged, Content: "Connected via " + current.String()}
	}
}
