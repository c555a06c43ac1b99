package history

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"netwatch/internal/bus"
	"netwatch/internal/connectivity"
)

func newTestRecorder(t *testing.T, retention time.Duration) (*Recorder, bus.MessageBus, *TransitionRepo) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	messageBus := bus.New(logger)
	t.Cleanup(messageBus.Close)

	repo := NewTransitionRepo(openTestDB(t))
	queue := NewWriterQueue(logger, 16)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	queue.Start(ctx)

	rec := NewRecorder(messageBus, queue, repo, retention, logger)
	rec.Start(ctx)

	return rec, messageBus, repo
}

func waitForTransitionCount(t *testing.T, repo *TransitionRepo, want int) []Transition {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := repo.ListRecent(context.Background(), want+1)
		if err != nil {
			t.Fatalf("list transitions: %v", err)
		}
		if len(got) >= want {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d recorded transitions", want)

	return nil
}

func TestRecorderAppendsPublishedStates(t *testing.T) {
	_, messageBus, repo := newTestRecorder(t, 0)

	messageBus.Publish(connectivity.TopicState, connectivity.NewState([]connectivity.Kind{connectivity.KindNone}))
	messageBus.Publish(connectivity.TopicState, connectivity.NewState([]connectivity.Kind{connectivity.KindWifi, connectivity.KindVPN}))

	got := waitForTransitionCount(t, repo, 2)
	if got[0].State != "wifi, vpn" {
		t.Fatalf("expected newest state %q, got %q", "wifi, vpn", got[0].State)
	}
	if !got[1].Offline {
		t.Fatalf("expected none state to be recorded offline")
	}
}

func TestRecorderIgnoresForeignPayloads(t *testing.T) {
	_, messageBus, repo := newTestRecorder(t, 0)

	messageBus.Publish(connectivity.TopicState, "not a state")
	messageBus.Publish(connectivity.TopicState, connectivity.NewState([]connectivity.Kind{connectivity.KindWifi}))

	got := waitForTransitionCount(t, repo, 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(got))
	}
	if got[0].State != "wifi" {
		t.Fatalf("expected wifi transition, got %q", got[0].State)
	}
}

func TestRecorderPrunesOnStart(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewTransitionRepo(openTestDB(t))

	old := Transition{State: "wifi", OccurredAt: time.Now().Add(-48 * time.Hour)}
	if err := repo.Append(context.Background(), old); err != nil {
		t.Fatalf("seed old transition: %v", err)
	}

	messageBus := bus.New(logger)
	t.Cleanup(messageBus.Close)
	queue := NewWriterQueue(logger, 16)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	queue.Start(ctx)

	rec := NewRecorder(messageBus, queue, repo, 24*time.Hour, logger)
	rec.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := repo.ListRecent(context.Background(), 10)
		if err != nil {
			t.Fatalf("list transitions: %v", err)
		}
		if len(got) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected stale transition to be pruned")
}
