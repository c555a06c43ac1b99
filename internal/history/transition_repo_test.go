package history

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func TestTransitionAppendAndListRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewTransitionRepo(openTestDB(t))

	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	entries := []Transition{
		{State: "none", Offline: true, OccurredAt: base},
		{State: "wifi", OccurredAt: base.Add(time.Minute)},
		{State: "wifi, vpn", OccurredAt: base.Add(2 * time.Minute)},
	}
	for _, tr := range entries {
		if err := repo.Append(ctx, tr); err != nil {
			t.Fatalf("append %q: %v", tr.State, err)
		}
	}

	got, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(got))
	}
	if got[0].State != "wifi, vpn" || got[1].State != "wifi" {
		t.Fatalf("expected newest first, got %q then %q", got[0].State, got[1].State)
	}
	if got[0].Offline {
		t.Fatalf("expected online transition, got offline")
	}
	if !got[1].OccurredAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("expected timestamp roundtrip, got %s", got[1].OccurredAt)
	}
}

func TestTransitionListRecentUsesDefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewTransitionRepo(openTestDB(t))

	if err := repo.Append(ctx, Transition{State: "wifi", OccurredAt: time.Now()}); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(got))
	}
}

func TestTransitionPruneOlderThan(t *testing.T) {
	ctx := context.Background()
	repo := NewTransitionRepo(openTestDB(t))

	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		tr := Transition{State: "wifi", OccurredAt: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.Append(ctx, tr); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	deleted, err := repo.PruneOlderThan(ctx, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 pruned rows, got %d", deleted)
	}

	got, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 remaining transitions, got %d", len(got))
	}
}
