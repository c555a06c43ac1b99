package ui

import (
	"time"

	"netwatch/internal/connectivity"
	"netwatch/internal/history"
)

// timeNow is a seam for tests.
var timeNow = time.Now

func formatState(state connectivity.State) string {
	switch {
	case state.Has(connectivity.KindUnknown):
		return "Checking connection..."
	case state.Offline():
		return "Offline"
	default:
		return "Connected via " + state.String()
	}
}

func formatTransition(tr history.Transition) string {
	return tr.OccurredAt.Local().Format("2006-01-02 15:04:05") + "  " + tr.State
}
