// Package asyncexec runs poll-based futures on a single goroutine with a
// deterministic FIFO scheduler.
//
// The executor owns no background goroutines: tasks are polled on whichever
// goroutine calls Run or RunUntilStalled. Wakes, in contrast, may arrive
// from any goroutine, because the resume callbacks handed to futures are
// safe to invoke concurrently. This is the executor side of the contract
// expected by canceltoken.WaitFuture.
package asyncexec

import "sync"

// Future is a computation advanced by repeated polling.
type Future interface {
	// Poll advances the computation and reports whether it has completed.
	// When Poll returns false, the future must have stored resume and the
	// executor re-polls only after resume is invoked (or the task is woken
	// explicitly). resume is safe to invoke from any goroutine.
	Poll(resume func()) bool
}

// TaskID identifies a spawned task.
type TaskID uint64

type task struct {
	id  TaskID
	fut Future
}

// Executor schedules and polls futures. The zero value is not usable; use
// New.
type Executor struct {
	mu       sync.Mutex
	nextID   TaskID
	ready    []TaskID
	readySet map[TaskID]struct{}
	tasks    map[TaskID]*task
	wakeCh   chan struct{}
}

// New constructs an empty executor.
func New() *Executor {
	return &Executor{
		nextID:   1,
		readySet: make(map[TaskID]struct{}),
		tasks:    make(map[TaskID]*task),
		wakeCh:   make(chan struct{}, 1),
	}
}

// Spawn registers fut and enqueues it for its first poll.
func (e *Executor) Spawn(fut Future) TaskID {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.tasks[id] = &task{id: id, fut: fut}
	e.enqueueLocked(id)
	e.mu.Unlock()

	e.notify()
	return id
}

// Wake schedules a task for another poll. Waking an unknown or completed
// task is a no-op. Safe to call from any goroutine.
func (e *Executor) Wake(id TaskID) {
	e.mu.Lock()
	if _, ok := e.tasks[id]; !ok {
		e.mu.Unlock()
		return
	}
	e.enqueueLocked(id)
	e.mu.Unlock()

	e.notify()
}

// Completed reports whether the task has finished. Unknown IDs count as
// completed, since finished tasks are dropped from the executor.
func (e *Executor) Completed(id TaskID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.tasks[id]
	return !ok
}

// Live returns the number of tasks that have not completed yet.
func (e *Executor) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

// RunUntilStalled polls ready tasks (FIFO, including tasks they wake
// synchronously) until none are ready, then reports the number of still
// live tasks.
func (e *Executor) RunUntilStalled() int {
	for {
		tk := e.popReady()
		if tk == nil {
			return e.Live()
		}
		e.pollTask(tk)
	}
}

// Run polls until every spawned task has completed, parking the calling
// goroutine whenever no task is ready.
func (e *Executor) Run() {
	for {
		if e.RunUntilStalled() == 0 {
			return
		}
		<-e.wakeCh
	}
}

func (e *Executor) pollTask(tk *task) {
	id := tk.id
	done := tk.fut.Poll(func() { e.Wake(id) })
	if !done {
		return
	}

	e.mu.Lock()
	delete(e.tasks, id)
	// The final poll may have re-stored the task via its own resume; drop
	// any stale ready entry as well.
	if _, ok := e.readySet[id]; ok {
		delete(e.readySet, id)
		for i, ready := range e.ready {
			if ready == id {
				e.ready = append(e.ready[:i], e.ready[i+1:]...)
				break
			}
		}
	}
	e.mu.Unlock()
}

func (e *Executor) popReady() *task {
	e.mu.Lock()
	defer e.mu.Unlock()

	for len(e.ready) > 0 {
		id := e.ready[0]
		e.ready = e.ready[1:]
		delete(e.readySet, id)

		if tk, ok := e.tasks[id]; ok {
			return tk
		}
	}
	return nil
}

func (e *Executor) enqueueLocked(id TaskID) {
	if _, ok := e.readySet[id]; ok {
		return
	}
	e.ready = append(e.ready, id)
	e.readySet[id] = struct{}{}
}

func (e *Executor) notify() {
	select {
	case e.wakeCh <- struct{}{}:
	default:
	}
}
