// Package sessions tracks live voice sessions so shutdown can drain or
// cancel them.
package sessions

import (
	"context"
	"sync"
)

// Tracker registers running sessions by ID.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]func()
	wg       sync.WaitGroup
}

func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[string]func())}
}

// Register adds a session and its cancel func. The returned unregister is
// idempotent.
func (t *Tracker) Register(id string, cancel func()) (unregister func()) {
	t.mu.Lock()
	t.sessions[id] = cancel
	t.wg.Add(1)
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.sessions, id)
			t.mu.Unlock()
			t.wg.Done()
		})
	}
}

// Count reports how many sessions are live.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// CancelAll forces every live session to shut down.
func (t *Tracker) CancelAll() {
	t.mu.Lock()
	cancels := make([]func(), 0, len(t.sessions))
	for _, cancel := range t.sessions {
		cancels = append(cancels, cancel)
	}
	t.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Wait blocks until every session unregisters or ctx expires. Reports
// whether the drain completed.
func (t *Tracker) Wait(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
