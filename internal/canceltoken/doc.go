// Package canceltoken implements a one-way, broadcastable cancellation
// signal shared across goroutines.
//
// A Token is the read-write handle: any copy of it can cancel the shared
// flag, and every copy and every derived Observer sees the cancellation
// immediately. An Observer is the capability-restricted counterpart that
// can only observe.
//
// Waiting is poll-based rather than channel-based. A WaitFuture registers a
// resumption cell with the shared state and is driven by an external
// executor (see package asyncexec): each Poll stores a fresh resume
// callback, and Cancel drains the registry and invokes the stored callbacks
// exactly once each. The primitive spawns no goroutines and owns no run
// loop.
//
// Cancellation is permanent; there is no reset. The flag carries no
// payload, only the cancelled/not-cancelled bit.
package canceltoken
