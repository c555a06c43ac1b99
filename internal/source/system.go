package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	psnet "github.com/shirou/gopsutil/v3/net"

	"netwatch/internal/connectivity"
)

const DefaultPollInterval = 5 * time.Second

// SystemSource reports the host's active network interfaces as raw
// connectivity tokens. The push feed is driven by a poll ticker and
// may repeat the same report; de-duplication is the tracker's job.
// Pull scans on demand.
type SystemSource struct {
	logger   *slog.Logger
	interval time.Duration

	events   chan []string
	stop     chan struct{}
	stopOnce sync.Once
}

func NewSystemSource(logger *slog.Logger, interval time.Duration) *SystemSource {
	if logger == nil {
		logger = slog.Default().With("component", "source")
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &SystemSource{
		logger:   logger,
		interval: interval,
		events:   make(chan []string, 1),
		stop:     make(chan struct{}),
	}
}

// Start launches the poll loop feeding Events.
func (s *SystemSource) Start(ctx context.Context) {
	go s.pollLoop(ctx)
}

func (s *SystemSource) Pull(ctx context.Context) ([]string, error) {
	return s.scan(ctx)
}

func (s *SystemSource) Events() <-chan []string {
	return s.events
}

func (s *SystemSource) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})

	return nil
}

func (s *SystemSource) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			raw, err := s.scan(ctx)
			if err != nil {
				s.logger.Warn("scan network interfaces", "error", err)
				continue
			}
			select {
			case s.events <- raw:
			case <-s.stop:
				return
			default:
				// Consumer busy; the next tick carries fresher data.
			}
		}
	}
}

func (s *SystemSource) scan(ctx context.Context) ([]string, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list network interfaces: %w", err)
	}

	return classifyInterfaces(ifaces), nil
}

// classifyInterfaces turns an interface listing into raw tokens, one
// per distinct kind, in discovery order. Interfaces that are down,
// loopback or addressless are ignored. An empty result is replaced by
// the explicit none token, per the source contract.
func classifyInterfaces(ifaces []psnet.InterfaceStat) []string {
	tokens := make([]string, 0, 2)
	seen := make(map[string]bool, 4)
	for _, iface := range ifaces {
		if !hasFlag(iface.Flags, "up") || hasFlag(iface.Flags, "loopback") {
			continue
		}
		if len(iface.Addrs) == 0 {
			continue
		}
		token := classifyName(iface.Name)
		if !seen[token] {
			seen[token] = true
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		tokens = append(tokens, connectivity.RawNone)
	}

	return tokens
}

// classifyName maps an interface name to a raw token using common
// platform naming conventions. Best effort: names that match nothing
// are reported as other.
func classifyName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case hasAnyPrefix(lower, "wlan", "wlp", "wlx", "wifi", "ath", "wl"):
		return connectivity.RawWifi
	case hasAnyPrefix(lower, "wwan", "wwp", "rmnet", "usb"):
		return connectivity.RawMobile
	case hasAnyPrefix(lower, "bnep", "bt-pan"):
		return connectivity.RawBluetooth
	case hasAnyPrefix(lower, "tun", "tap", "utun", "wg", "ppp", "ipsec", "tailscale", "zt"):
		return connectivity.RawVPN
	case hasAnyPrefix(lower, "eth", "eno", "ens", "enp", "enx", "em", "lan"):
		return connectivity.RawEthernet
	default:
		return connectivity.RawOther
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}

	return false
}

func hasFlag(flags []string, want string) bool {
	for _, flag := range flags {
		if strings.EqualFold(flag, want) {
			return true
		}
	}

	return false
}
