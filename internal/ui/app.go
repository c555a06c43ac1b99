package ui

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	netapp "netwatch/internal/app"
	"netwatch/internal/bus"
	"netwatch/internal/connectivity"
	"netwatch/internal/history"
)

// Dependencies carries everything Run needs from the app runtime.
type Dependencies struct {
	Bus        bus.MessageBus
	Tracker    *connectivity.Tracker
	History    *history.TransitionRepo
	Foreground *atomic.Bool
	OnQuit     func()
}

func Run(dep Dependencies) error {
	fyApp := app.NewWithID(netapp.Name)
	icon := theme.ComputerIcon()
	fyApp.SetIcon(icon)

	window := fyApp.NewWindow(netapp.Name + " " + netapp.BuildVersion())
	window.Resize(fyne.NewSize(420, 360))

	statusLabel := widget.NewLabel(formatState(dep.Tracker.Current()))
	statusLabel.TextStyle = fyne.TextStyle{Bold: true}
	recentLabel := widget.NewLabel(initialRecentText(dep.History))

	bindLifecycle(fyApp, dep)

	if dep.Bus != nil {
		sub := dep.Bus.Subscribe(connectivity.TopicState)
		go func() {
			recent := initialRecentLines(dep.History)
			for raw := range sub {
				state, ok := raw.(connectivity.State)
				if !ok {
					continue
				}
				recent = prependLine(recent, formatTransition(history.Transition{
					State:      state.String(),
					OccurredAt: timeNow(),
				}))
				statusText := formatState(state)
				recentText := strings.Join(recent, "\n")
				fyne.Do(func() {
					statusLabel.SetText(statusText)
					recentLabel.SetText(recentText)
				})
			}
		}()
	}

	content := container.NewVBox(
		statusLabel,
		widget.NewSeparator(),
		widget.NewLabel("Recent changes"),
		recentLabel,
	)
	window.SetContent(container.NewVScroll(content))

	var shutdownOnce sync.Once
	quit := func() {
		shutdownOnce.Do(func() {
			if dep.OnQuit != nil {
				dep.OnQuit()
			}
			fyApp.Quit()
		})
	}

	window.SetCloseIntercept(func() {
		window.Hide()
	})

	if desk, ok := fyApp.(desktop.App); ok {
		desk.SetSystemTrayIcon(icon)
		desk.SetSystemTrayMenu(fyne.NewMenu(netapp.Name,
			fyne.NewMenuItem("Show", func() {
				window.Show()
				window.RequestFocus()
			}),
			fyne.NewMenuItem("Quit", func() {
				quit()
			}),
		))
	}

	window.ShowAndRun()

	return nil
}

// bindLifecycle connects window foreground transitions to the
// tracker: returning to the foreground triggers a resume poll, since
// connectivity can change while the app sits in the background.
func bindLifecycle(fyApp fyne.App, dep Dependencies) {
	fyApp.Lifecycle().SetOnEnteredForeground(func() {
		if dep.Foreground != nil {
			dep.Foreground.Store(true)
		}
		go func() {
			if err := dep.Tracker.OnResume(context.Background()); err != nil {
				slog.Warn("resume connectivity poll", "error", err)
			}
		}()
	})
	fyApp.Lifecycle().SetOnExitedForeground(func() {
		if dep.Foreground != nil {
			dep.Foreground.Store(false)
		}
	})
}

func initialRecentLines(repo *history.TransitionRepo) []string {
	if repo == nil {
		return nil
	}
	transitions, err := repo.ListRecent(context.Background(), netapp.RecentTransitionsLoad)
	if err != nil {
		slog.Warn("load recent transitions", "error", err)

		return nil
	}
	lines := make([]string, 0, len(transitions))
	for _, tr := range transitions {
		lines = append(lines, formatTransition(tr))
	}

	return lines
}

func initialRecentText(repo *history.TransitionRepo) string {
	lines := initialRecentLines(repo)
	if len(lines) == 0 {
		return "No changes recorded yet"
	}

	return strings.Join(lines, "\n")
}

func prependLine(lines []string, line string) []string {
	out := make([]string, 0, len(lines)+1)
	out = append(out, line)
	out = append(out, lines...)
	if len(out) > netapp.RecentTransitionsLoad {
		out = out[:netapp.RecentTransitionsLoad]
	}

	return out
}
