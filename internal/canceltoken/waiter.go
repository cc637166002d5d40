package canceltoken

import "sync"

// waiter holds at most one pending resumption callback for a single
// suspended WaitFuture. set and take serialize on the cell mutex, so a
// callback is never lost or invoked twice through this path.
type waiter struct {
	mu     sync.Mutex
	resume func()
}

// set stores or replaces the pending callback. A previously stored callback
// is discarded without being invoked: the executor supplies a fresh one on
// every poll and only the latest resumption context matters.
func (w *waiter) set(resume func()) {
	w.mu.Lock()
	w.resume = resume
	w.mu.Unlock()
}

// take retrieves and clears the pending callback. A nil result means the
// cell is empty, typically because the owning future has never been polled.
func (w *waiter) take() func() {
	w.mu.Lock()
	resume := w.resume
	w.resume = nil
	w.mu.Unlock()
	return resume
}
