package history

import (
	"context"
	"log/slog"
	"time"

	"netwatch/internal/bus"
	"netwatch/internal/connectivity"
)

// Recorder listens to connectivity changes on the bus and appends
// them to the transition log through the writer queue. On Start it
// prunes entries older than the retention window.
type Recorder struct {
	bus       bus.MessageBus
	queue     *WriterQueue
	repo      *TransitionRepo
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewRecorder(messageBus bus.MessageBus, queue *WriterQueue, repo *TransitionRepo, retention time.Duration, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default().With("component", "history")
	}

	return &Recorder{
		bus:       messageBus,
		queue:     queue,
		repo:      repo,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

func (r *Recorder) Start(ctx context.Context) {
	if r == nil || r.bus == nil || r.repo == nil {
		return
	}

	if r.retention > 0 {
		cutoff := r.now().Add(-r.retention)
		r.queue.Enqueue("prune transitions", func(ctx context.Context) error {
			deleted, err := r.repo.PruneOlderThan(ctx, cutoff)
			if err != nil {
				return err
			}
			if deleted > 0 {
				r.logger.Info("pruned old transitions", "deleted", deleted)
			}

			return nil
		})
	}

	sub := r.bus.Subscribe(connectivity.TopicState)
	go func() {
		defer r.bus.Unsubscribe(sub, connectivity.TopicState)

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
				r.record(state)
			}
		}
	}()
}

func (r *Recorder) record(state connectivity.State) {
	tr := Transition{
		State:      state.String(),
		Offline:    state.Offline(),
		OccurredAt: r.now(),
	}
	r.queue.Enqueue("append transition", func(ctx context.Context) error {
		return r.repo.Append(ctx, tr)
	})
}
