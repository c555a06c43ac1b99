package connectivity

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeSource is the injectable raw source used by tracker tests. Push
// delivery is synchronous (unbuffered channel), so push followed by
// Tracker.Sync is a reliable "event fully processed" barrier.
type fakeSource struct {
	mu        sync.Mutex
	pullState []string
	pullErr   error
	pulls     int

	events    chan []string
	done      chan struct{}
	closeOnce sync.Once
}

func newFakeSource(initial ...string) *fakeSource {
	return &fakeSource{
		pullState: initial,
		events:    make(chan []string),
		done:      make(chan struct{}),
	}
}

// setPullState replaces the canonical state returned by Pull.
func (f *fakeSource) setPullState(raw ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pullState = raw
}

// failPulls makes every subsequent Pull return err. Pass nil to heal.
func (f *fakeSource) failPulls(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pullErr = err
}

func (f *fakeSource) pullCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pulls
}

func (f *fakeSource) Pull(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulls++
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	out := make([]string, len(f.pullState))
	copy(out, f.pullState)

	return out, nil
}

func (f *fakeSource) Events() <-chan []string {
	return f.events
}

// push hands one raw report to the tracker and returns once the
// tracker loop has accepted it. After Close pushes are swallowed, the
// way a real platform feed goes silent once unsubscribed.
func (f *fakeSource) push(t *testing.T, raw ...string) {
	t.Helper()
	select {
	case f.events <- raw:
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("tracker did not accept pushed event %v", raw)
	}
}

func (f *fakeSource) Close() error {
	f.closeOnce.Do(func() {
		close(f.done)
	})

	return nil
}
