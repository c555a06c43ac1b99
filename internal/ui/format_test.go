package ui

import (
	"testing"
	"time"

	netapp "netwatch/internal/app"
	"netwatch/internal/connectivity"
	"netwatch/internal/history"
)

func TestFormatState(t *testing.T) {
	tests := []struct {
		name  string
		kinds []connectivity.Kind
		want  string
	}{
		{name: "unknown", kinds: []connectivity.Kind{connectivity.KindUnknown}, want: "Checking connection..."},
		{name: "offline", kinds: []connectivity.Kind{connectivity.KindNone}, want: "Offline"},
		{name: "single", kinds: []connectivity.Kind{connectivity.KindWifi}, want: "Connected via wifi"},
		{name: "multi", kinds: []connectivity.Kind{connectivity.KindWifi, connectivity.KindVPN}, want: "Connected via wifi, vpn"},
	}

	for _, tc := range tests {
		state := connectivity.NewState(tc.kinds)
		if got := formatState(state); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestFormatTransition(t *testing.T) {
	tr := history.Transition{
		State:      "wifi, vpn",
		OccurredAt: time.Date(2026, 8, 30, 9, 15, 0, 0, time.UTC),
	}

	got := formatTransition(tr)
	want := tr.OccurredAt.Local().Format("2006-01-02 15:04:05") + "  wifi, vpn"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPrependLineCapsHistory(t *testing.T) {
	var lines []string
	for i := 0; i < 30; i++ {
		lines = prependLine(lines, "line")
	}

	if len(lines) != netapp.RecentTransitionsLoad {
		t.Fatalf("expected capped history of %d lines, got %d", netapp.RecentTransitionsLoad, len(lines))
	}
}

func TestPrependLinePutsNewestFirst(t *testing.T) {
	lines := prependLine([]string{"old"}, "new")

	if len(lines) != 2 || lines[0] != "new" || lines[1] != "old" {
		t.Fatalf("expected newest first, got %v", lines)
	}
}
