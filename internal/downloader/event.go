package downloader

// Stage describes a high-level phase of an archive run.
type Stage string

const (
	// StageScan is the existing-archive discovery stage.
	StageScan Stage = "scan"
	// StageFetch is the scrobble download stage.
	StageFetch Stage = "fetch"
	// StageWrite is the archive serialization stage.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the span is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the span is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the span is done.
	StatusDone Status = "done"
	// StatusError indicates the span failed.
	StatusError Status = "error"
	// StatusCancelled indicates the run stopped before the span completed.
	StatusCancelled Status = "cancelled"
)

// Event reports progress for a span (or for the whole run when Span is
// empty).
type Event struct {
	Span   string
	Stage  Stage
	Status Status

	// Page/Pages describe fetch progress within the span. Zero when
	// unknown.
	Page  int
	Pages int

	// Tracks is the number of scrobbles collected for the span so far.
	Tracks int

	Err error
}

// Sink consumes progress events.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

// OnEvent sends the event if a channel is configured.
func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch != nil {
		s.Ch <- evt
	}
}

// NopSink discards all events.
type NopSink struct{}

// OnEvent does nothing.
func (NopSink) OnEvent(Event) {}
