package canceltoken

import (
	"sync"
	"sync/atomic"
)

// state is the shared cancellation state behind every handle derived from
// one Token. The flag is a separate atomic so reads never take the registry
// lock; registration and the cancel drain serialize on mu.
type state struct {
	cancelled atomic.Bool

	mu      sync.Mutex
	waiters []*waiter
}

func (s *state) isCancelled() bool {
	return s.cancelled.Load()
}

// cancel flips the flag and wakes every registered waiter. The registry is
// drained under the lock, but the callbacks run only after it is released,
// so a callback that itself touches the registry cannot deadlock.
func (s *state) cancel() {
	s.cancelled.Store(true)

	s.mu.Lock()
	drained := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	for _, w := range drained {
		if resume := w.take(); resume != nil {
			resume()
		}
		// An empty cell means the future was never polled; its first poll
		// rechecks the flag on its own, so nobody needs waking.
	}
}

func (s *state) addWaiter(w *waiter) {
	s.mu.Lock()
	s.waiters = append(s.waiters, w)
	s.mu.Unlock()
}

// tryRemoveWaiter removes w from the registry by identity. A false result
// is not an error: it means a concurrent cancel already drained the entry.
func (s *state) tryRemoveWaiter(w *waiter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, candidate := range s.waiters {
		if candidate != w {
			continue
		}
		// Registry order carries no meaning, so swap-remove.
		last := len(s.waiters) - 1
		s.waiters[i] = s.waiters[last]
		s.waiters[last] = nil
		s.waiters = s.waiters[:last]
		return true
	}
	return false
}

// waiterCount reports the current registry size. Used by tests to verify
// that futures do not leak entries.
func (s *state) waiterCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.waiters)
}

// Token is a read-write cancellation handle.
//
// Copying a Token aliases the shared state rather than duplicating it:
// cancelling any copy is visible through every other copy and through every
// Observer derived from one.
type Token struct {
	state *state
}

// New returns a fresh, uncancelled Token with an empty waiter registry.
func New() Token {
	return Token{state: &state{}}
}

// Cancel marks the token and every linked handle as cancelled and wakes all
// registered wait futures. Cancellation is one-way and idempotent; calls
// after the first change nothing observable.
func (t Token) Cancel() {
	t.state.cancel()
}

// IsCancelled reports whether the token has been cancelled.
func (t Token) IsCancelled() bool {
	return t.state.isCancelled()
}

// Observer returns a read-only handle over the same shared state.
func (t Token) Observer() Observer {
	return Observer{state: t.state}
}

// WaitFuture returns a future that completes when the token is cancelled.
func (t Token) WaitFuture() *WaitFuture {
	return newWaitFuture(t.Observer())
}

// Observer is a read-only cancellation handle. It exposes observation but
// not cancellation; copies alias the same shared state, so deriving further
// observers is plain assignment.
type Observer struct {
	state *state
}

// IsCancelled reports whether the linked token has been cancelled.
func (o Observer) IsCancelled() bool {
	return o.state.isCancelled()
}

// WaitFuture returns a future that completes when the linked token is
// cancelled.
func (o Observer) WaitFuture() *WaitFuture {
	return newWaitFuture(o)
}
