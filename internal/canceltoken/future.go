package canceltoken

// WaitFuture is a suspend/resume computation that completes exactly once,
// when the bound token is cancelled.
//
// It is driven by a resumption-capable executor: every Poll must pass the
// callback the executor wants invoked when the future should be re-polled,
// and the executor must re-poll after that callback fires. WaitFuture
// satisfies the asyncexec.Future interface.
//
// A WaitFuture is not safe for concurrent polling; it belongs to a single
// logical task. Cancellation may still arrive from any goroutine.
type WaitFuture struct {
	observer  Observer
	triggered bool
	finished  bool
	cell      *waiter
}

func newWaitFuture(observer Observer) *WaitFuture {
	cell := &waiter{}
	// Registering before the first flag check is safe even when the token
	// is already cancelled: the first poll rechecks the flag regardless of
	// whether the cell is ever woken.
	observer.state.addWaiter(cell)

	return &WaitFuture{
		observer: observer,
		cell:     cell,
	}
}

// Poll advances the wait and reports whether it has completed.
//
// The stored callback is refreshed on every call, including polls after
// completion: the executor may have replaced the resumption context since
// the previous suspension. The shared flag is read at most until the first
// positive observation, which is cached locally; once completed, further
// polls just re-report completion.
func (f *WaitFuture) Poll(resume func()) bool {
	f.cell.set(resume)

	if !f.triggered {
		f.triggered = f.observer.IsCancelled()
	}

	if f.triggered && !f.finished {
		f.finished = true
		// Usually a no-op because the cancel drain already removed the
		// cell; it matters when the token was cancelled before this future
		// was created.
		f.observer.state.tryRemoveWaiter(f.cell)
	}

	return f.finished
}

// Finished reports whether a previous Poll already completed the wait. It
// never touches the shared state, so callers combining many futures can
// skip re-polling settled ones.
func (f *WaitFuture) Finished() bool {
	return f.finished
}

// Close deregisters the future from the shared state. A future abandoned
// before completion must be closed or its registry entry leaks; closing a
// completed or already-drained future is a no-op.
func (f *WaitFuture) Close() {
	// A missing entry means a concurrent cancel drained it first.
	f.observer.state.tryRemoveWaiter(f.cell)
}

// WaitTimeoutFuture is a deadline-bound variant of WaitFuture.
//
// TODO: unimplemented. The intended semantics are unresolved: whether an
// expired deadline cancels the underlying token or only completes this
// future.
type WaitTimeoutFuture struct{}
