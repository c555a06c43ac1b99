package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Transition is one recorded connectivity change.
type Transition struct {
	ID         int64
	State      string
	Offline    bool
	OccurredAt time.Time
}

type TransitionRepo struct {
	db *sql.DB
}

func NewTransitionRepo(db *sql.DB) *TransitionRepo {
	return &TransitionRepo{db: db}
}

func (r *TransitionRepo) Append(ctx context.Context, tr Transition) error {
	offline := int64(0)
	if tr.Offline {
		offline = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transitions(state, offline, occurred_at)
		VALUES (?, ?, ?)
	`, tr.State, offline, timeToUnixMillis(tr.OccurredAt))
	if err != nil {
		return fmt.Errorf("append transition: %w", err)
	}

	return nil
}

// ListRecent returns up to limit transitions, newest first.
func (r *TransitionRepo) ListRecent(ctx context.Context, limit int) ([]Transition, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, state, offline, occurred_at
		FROM transitions
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var (
			tr         Transition
			offline    int64
			occurredMs int64
		)
		if err := rows.Scan(&tr.ID, &tr.State, &offline, &occurredMs); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		tr.Offline = offline != 0
		tr.OccurredAt = unixMillisToTime(occurredMs)
		out = append(out, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}

	return out, nil
}

// PruneOlderThan deletes transitions recorded before cutoff and
// returns how many rows went away.
func (r *TransitionRepo) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM transitions WHERE occurred_at < ?
	`, timeToUnixMillis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune transitions: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count pruned transitions: %w", err)
	}

	return deleted, nil
}

func timeToUnixMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func unixMillisToTime(v int64) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(v)
}
