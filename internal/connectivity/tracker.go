package connectivity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"netwatch/internal/bus"
)

// TopicState is the bus topic distinct connectivity states are
// published on.
const TopicState = "connectivity.state"

// ErrDisposed is returned by OnResume after Dispose has run.
var ErrDisposed = errors.New("connectivity tracker disposed")

// Source feeds the tracker raw connectivity identifiers. Events is
// the push feed; Pull is the on-demand scan used on Start and
// OnResume. A well-behaved source never reports an empty identifier
// set: it emits the explicit RawNone token instead. Every token it
// emits must appear in the raw mapping table.
type Source interface {
	Pull(ctx context.Context) ([]string, error)
	Events() <-chan []string
	Close() error
}

// Tracker owns the current connectivity State, discards duplicate
// reports and fans real changes out over the bus. Push events and
// resume polls are handled by a single goroutine, so the two trigger
// paths never interleave mid-update and no subscriber observes a
// partially applied state.
type Tracker struct {
	source Source
	bus    bus.MessageBus
	ownBus bool
	logger *slog.Logger

	mu       sync.RWMutex
	current  State
	started  bool
	disposed bool

	resume  chan resumeRequest
	barrier chan chan struct{}
	stop    chan struct{}
	stopped chan struct{}

	disposeOnce sync.Once
}

type resumeRequest struct {
	ctx   context.Context
	reply chan error
}

// NewTracker wires a tracker to its raw source. When messageBus is
// nil the tracker creates and owns a private bus, which is shut down
// on Dispose; an injected bus stays open and is the caller's to
// close.
func NewTracker(source Source, messageBus bus.MessageBus, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default().With("component", "connectivity")
	}
	ownBus := false
	if messageBus == nil {
		messageBus = bus.New(logger)
		ownBus = true
	}

	return &Tracker{
		source:  source,
		bus:     messageBus,
		ownBus:  ownBus,
		logger:  logger,
		current: Unknown(),
		resume:  make(chan resumeRequest),
		barrier: make(chan chan struct{}),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start performs the initial poll through the normal change-detection
// path and launches the processing loop. A pull failure is returned
// to the caller and the tracker stays at Unknown; Start may then be
// called again. Start must not be called after a successful Start.
func (t *Tracker) Start(ctx context.Context) error {
	raw, err := t.source.Pull(ctx)
	if err != nil {
		return fmt.Errorf("initial connectivity poll: %w", err)
	}
	t.apply(raw)

	t.mu.Lock()
	t.started = true
	t.mu.Unlock()

	go t.run(ctx)

	return nil
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.stopped)

	events := t.source.Events()
	for {
		select {
		case <-t.stop:
			return
		case <-ctx.Done():
			return
		case raw, ok := <-events:
			if !ok {
				return
			}
			t.apply(raw)
		case req := <-t.resume:
			req.reply <- t.poll(req.ctx)
		case ack := <-t.barrier:
			close(ack)
		}
	}
}

// Current returns the latest observed state. It never blocks and
// returns Unknown before the first observation completes. After
// Dispose it keeps returning the last known state.
func (t *Tracker) Current() State {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.current
}

// Subscribe registers a consumer for every distinct state published
// after the call. There is no replay of Current; a late subscriber
// sees only states published strictly after it subscribed. Subscribe
// must not be called after Dispose and panics if it is.
func (t *Tracker) Subscribe() bus.Subscription {
	t.mu.RLock()
	disposed := t.disposed
	t.mu.RUnlock()
	if disposed {
		panic("connectivity: Subscribe called after Dispose")
	}

	return t.bus.Subscribe(TopicState)
}

// Unsubscribe releases a subscription obtained from Subscribe. It is
// a no-op after Dispose, which already closed subscriber channels.
func (t *Tracker) Unsubscribe(sub bus.Subscription) {
	t.mu.RLock()
	disposed := t.disposed
	t.mu.RUnlock()
	if disposed {
		return
	}
	t.bus.Unsubscribe(sub, TopicState)
}

// OnResume forces a fresh poll through the same change-detection path
// as push events. The lifecycle owner calls it when the application
// returns to the foreground: connectivity can change while the
// process is backgrounded without the push feed delivering anything.
// The poll is serialized with the push feed, and a pull failure
// propagates to the caller.
func (t *Tracker) OnResume(ctx context.Context) error {
	req := resumeRequest{ctx: ctx, reply: make(chan error, 1)}
	select {
	case t.resume <- req:
	case <-t.stopped:
		return ErrDisposed
	case <-ctx.Done():
		return ctx.Err()
	}

	// The loop accepted the request, so a reply is guaranteed.
	return <-req.reply
}

// Sync blocks until every raw event delivered to the tracker before
// the call has been fully processed (published or discarded). It is
// the synchronization point test harnesses use between pushing an
// event and asserting on subscribers.
func (t *Tracker) Sync() {
	ack := make(chan struct{})
	select {
	case t.barrier <- ack:
		<-ack
	case <-t.stopped:
	}
}

// Dispose stops the processing loop, releases the upstream source
// subscription and, when the tracker owns its bus, shuts the bus down
// so subscriber channels close. No publish happens after Dispose
// returns; further upstream pushes have no observable effect. Dispose
// is idempotent.
func (t *Tracker) Dispose() {
	t.disposeOnce.Do(func() {
		t.mu.RLock()
		started := t.started
		t.mu.RUnlock()

		close(t.stop)
		if started {
			<-t.stopped
		} else {
			close(t.stopped)
		}

		if err := t.source.Close(); err != nil {
			t.logger.Warn("close connectivity source", "error", err)
		}

		t.mu.Lock()
		t.disposed = true
		t.mu.Unlock()

		if t.ownBus {
			t.bus.Close()
		}
	})
}

func (t *Tracker) poll(ctx context.Context) error {
	raw, err := t.source.Pull(ctx)
	if err != nil {
		return fmt.Errorf("connectivity poll: %w", err)
	}
	t.apply(raw)

	return nil
}

// apply runs one raw report through normalization and change
// detection. States equal to the held one are discarded, so a
// subscriber never sees two consecutive set-equal states.
func (t *Tracker) apply(raw []string) {
	kinds := make([]Kind, 0, len(raw))
	for _, token := range raw {
		kinds = append(kinds, KindFromRaw(token))
	}
	if len(kinds) == 0 {
		// Sources emit an explicit none token, so an empty report is
		// off-contract; it is normalized to the offline state.
		kinds = append(kinds, KindNone)
	}
	next := NewState(kinds)

	t.mu.Lock()
	if next.Equal(t.current) {
		t.mu.Unlock()
		t.logger.Debug("connectivity unchanged", "state", next.String())

		return
	}
	previous := t.current
	t.current = next
	t.mu.Unlock()

	t.logger.Info("connectivity changed", "from", previous.String(), "to", next.String())
	t.bus.Publish(TopicState, next)
}
