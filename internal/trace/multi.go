package trace

// MultiTracer fans out log events to multiple tracers. Each sink applies
// its own level filter; a sequence number is assigned once so sinks agree
// on event identity.
type MultiTracer struct {
	tracers []Tracer
}

// NewMultiTracer creates a new MultiTracer that emits to all provided
// tracers.
func NewMultiTracer(tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers}
}

// Emit sends the event to all underlying tracers.
func (t *MultiTracer) Emit(ev Event) {
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	for _, tr := range t.tracers {
		tr.Emit(ev)
	}
}

// Flush flushes all underlying tracers.
func (t *MultiTracer) Flush() error {
	var firstErr error
	for _, tr := range t.tracers {
		if err := tr.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes all underlying tracers.
func (t *MultiTracer) Close() error {
	var firstErr error
	for _, tr := range t.tracers {
		if err := tr.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Level returns the most verbose level among the sinks.
func (t *MultiTracer) Level() Level {
	max := LevelOff
	for _, tr := range t.tracers {
		if l := tr.Level(); l > max {
			max = l
		}
	}
	return max
}

// Enabled returns true if any sink emits.
func (t *MultiTracer) Enabled() bool {
	return t.Level() > LevelOff
}
