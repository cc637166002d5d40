package canceltoken

import "testing"

func TestStateReportsCancellation(t *testing.T) {
	s := &state{}
	if s.isCancelled() {
		t.Fatalf("fresh state must not be cancelled")
	}

	s.cancel()
	if !s.isCancelled() {
		t.Fatalf("state must report cancellation after cancel")
	}
}

func TestTokenReportsCancellation(t *testing.T) {
	tok := New()
	if tok.IsCancelled() {
		t.Fatalf("fresh token must not be cancelled")
	}

	tok.Cancel()
	if !tok.IsCancelled() {
		t.Fatalf("token must report cancellation after Cancel")
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	tok := New()

	tok.Cancel()
	tok.Cancel()
	tok.Cancel()

	if !tok.IsCancelled() {
		t.Fatalf("token must stay cancelled after repeated Cancel calls")
	}
	if got := tok.state.waiterCount(); got != 0 {
		t.Fatalf("registry must stay empty, got %d entries", got)
	}
}

func TestObserverSeesCancellation(t *testing.T) {
	tok := New()
	obs := tok.Observer()

	if obs.IsCancelled() {
		t.Fatalf("observer of a fresh token must not be cancelled")
	}

	tok.Cancel()

	if !obs.IsCancelled() {
		t.Fatalf("observer must see cancellation of the linked token")
	}
}

func TestCopiedHandlesShareState(t *testing.T) {
	a := New()
	b := a
	c := a.Observer()
	d := c

	a.Cancel()

	if !a.IsCancelled() || !b.IsCancelled() {
		t.Fatalf("token copies must share the cancellation flag")
	}
	if !c.IsCancelled() || !d.IsCancelled() {
		t.Fatalf("observers and their copies must share the cancellation flag")
	}
}

func TestIndependentTokensDoNotInterfere(t *testing.T) {
	t1 := New()
	t2 := New()

	t1.Cancel()

	if !t1.IsCancelled() {
		t.Fatalf("t1 must be cancelled")
	}
	if t2.IsCancelled() {
		t.Fatalf("cancelling t1 must not affect t2")
	}
}

func TestTryRemoveWaiterReportsMissingEntry(t *testing.T) {
	s := &state{}
	w := &waiter{}

	if s.tryRemoveWaiter(w) {
		t.Fatalf("removal from an empty registry must report not found")
	}

	s.addWaiter(w)
	if !s.tryRemoveWaiter(w) {
		t.Fatalf("removal of a registered waiter must succeed")
	}
	if s.tryRemoveWaiter(w) {
		t.Fatalf("second removal must report not found")
	}
}

func TestWaiterReplaceDiscardsWithoutInvoking(t *testing.T) {
	w := &waiter{}

	oldCalls := 0
	w.set(func() { oldCalls++ })
	w.set(func() {})

	if oldCalls != 0 {
		t.Fatalf("replacing a callback must not invoke the old one")
	}

	if w.take() == nil {
		t.Fatalf("take must return the latest callback")
	}
	if w.take() != nil {
		t.Fatalf("cell must be empty after take")
	}
}
