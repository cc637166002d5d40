package trace

import "time"

// Tracer is the main interface for emitting log events.
type Tracer interface {
	// Emit records an event. Must be goroutine-safe.
	Emit(ev Event)

	// Flush ensures all buffered events are written.
	Flush() error

	// Close flushes and releases resources.
	Close() error

	// Level returns the most verbose level any sink will emit.
	Level() Level

	// Enabled returns true if logging is active (Level > LevelOff).
	Enabled() bool
}

// Errorf emits a formatted error event through t.
func Errorf(t Tracer, name, detail string) {
	emit(t, LevelError, name, detail)
}

// Infof emits a formatted info event through t.
func Infof(t Tracer, name, detail string) {
	emit(t, LevelInfo, name, detail)
}

// Debugf emits a formatted debug event through t.
func Debugf(t Tracer, name, detail string) {
	emit(t, LevelDebug, name, detail)
}

func emit(t Tracer, level Level, name, detail string) {
	if t == nil || !t.Enabled() {
		return
	}
	t.Emit(Event{
		Time:   time.Now(),
		Level:  level,
		Name:   name,
		Detail: detail,
	})
}
