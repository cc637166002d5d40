package trace

import (
	"sync/atomic"
	"time"
)

// Event represents a single log event.
type Event struct {
	Time   time.Time         // wall-clock timestamp
	Seq    uint64            // global sequence number (monotonic)
	Level  Level             // event severity
	Name   string            // e.g. "download", "lastfm.request", "archive.scan"
	Detail string            // optional detail message
	Extra  map[string]string // extensible key-value pairs
}

var seqCounter atomic.Uint64

// NextSeq returns the next global sequence number.
func NextSeq() uint64 {
	return seqCounter.Add(1)
}
