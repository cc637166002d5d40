package asyncexec

import (
	"testing"
	"time"

	"scrobvault/internal/canceltoken"
)

// pollFunc adapts a function to the Future interface.
type pollFunc func(resume func()) bool

func (f pollFunc) Poll(resume func()) bool { return f(resume) }

func TestImmediateFutureCompletes(t *testing.T) {
	exec := New()

	polls := 0
	id := exec.Spawn(pollFunc(func(resume func()) bool {
		polls++
		return true
	}))

	if live := exec.RunUntilStalled(); live != 0 {
		t.Fatalf("expected no live tasks, got %d", live)
	}
	if polls != 1 {
		t.Fatalf("expected exactly one poll, got %d", polls)
	}
	if !exec.Completed(id) {
		t.Fatalf("task must be completed")
	}
}

func TestPendingFutureStaysLiveUntilWoken(t *testing.T) {
	exec := New()

	ready := false
	var wake func()
	id := exec.Spawn(pollFunc(func(resume func()) bool {
		wake = resume
		return ready
	}))

	if live := exec.RunUntilStalled(); live != 1 {
		t.Fatalf("expected one live task, got %d", live)
	}
	if exec.Completed(id) {
		t.Fatalf("task must still be pending")
	}

	// Without a wake the executor must not re-poll the task.
	if live := exec.RunUntilStalled(); live != 1 {
		t.Fatalf("stalled executor must not re-poll, got %d live", live)
	}

	ready = true
	wake()

	if live := exec.RunUntilStalled(); live != 0 {
		t.Fatalf("woken task must complete, got %d live", live)
	}
}

func TestTasksPollInSpawnOrder(t *testing.T) {
	exec := New()

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		exec.Spawn(pollFunc(func(resume func()) bool {
			order = append(order, i)
			return true
		}))
	}
	exec.RunUntilStalled()

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("expected FIFO poll order, got %v", order)
	}
}

func TestWakeOnCompletedTaskIsNoOp(t *testing.T) {
	exec := New()
	id := exec.Spawn(pollFunc(func(resume func()) bool { return true }))
	exec.RunUntilStalled()

	exec.Wake(id)
	if live := exec.RunUntilStalled(); live != 0 {
		t.Fatalf("waking a completed task must not revive it, got %d live", live)
	}
}

func TestRunBlocksUntilCancellationWake(t *testing.T) {
	exec := New()
	tok := canceltoken.New()
	id := exec.Spawn(tok.WaitFuture())

	go func() {
		// Give Run a chance to park before the cancel arrives.
		time.Sleep(10 * time.Millisecond)
		tok.Cancel()
	}()

	finished := make(chan struct{})
	go func() {
		exec.Run()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not finish after token cancellation")
	}
	if !exec.Completed(id) {
		t.Fatalf("wait future task must be completed")
	}
}

func TestManyWaitFuturesOneCancel(t *testing.T) {
	exec := New()
	tok := canceltoken.New()

	ids := make([]TaskID, 5)
	for i := range ids {
		ids[i] = exec.Spawn(tok.WaitFuture())
	}

	if live := exec.RunUntilStalled(); live != len(ids) {
		t.Fatalf("expected %d pending tasks, got %d", len(ids), live)
	}

	tok.Cancel()

	if live := exec.RunUntilStalled(); live != 0 {
		t.Fatalf("all wait futures must complete after cancel, got %d live", live)
	}
	for i, id := range ids {
		if !exec.Completed(id) {
			t.Fatalf("task %d must be completed", i)
		}
	}
}
