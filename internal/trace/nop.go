package trace

// nopTracer is a no-op implementation for zero overhead when logging is
// disabled.
type nopTracer struct{}

// Nop is the shared no-op tracer.
var Nop Tracer = nopTracer{}

func (nopTracer) Emit(Event)    {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }
