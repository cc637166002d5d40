package archive

import (
	"sort"
	"time"
)

// Span is a half-open time range: From inclusive, To exclusive.
type Span struct {
	From time.Time
	To   time.Time
}

// Duration returns the length of the span.
func (s Span) Duration() time.Duration {
	return s.To.Sub(s.From)
}

// MissingSpans returns the time ranges between the unix epoch and until
// (exclusive) that no archive covers. Archive coverage is inclusive on both
// ends, matching Metadata. The result is sorted and non-overlapping; a nil
// result means full coverage.
func MissingSpans(archives []Metadata, until time.Time) []Span {
	untilSec := until.Unix()
	if untilSec <= 0 {
		return nil
	}

	type interval struct {
		from, to int64 // half-open, unix seconds
	}

	covered := make([]interval, 0, len(archives))
	for _, m := range archives {
		from, to := m.From.Unix(), m.To.Unix()
		if to < from {
			continue
		}
		// [From, To] inclusive becomes [From, To+1) half-open.
		covered = append(covered, interval{from: from, to: to + 1})
	}
	sort.Slice(covered, func(i, j int) bool {
		return covered[i].from < covered[j].from
	})

	var missing []Span
	cursor := int64(0)
	for _, iv := range covered {
		if cursor >= untilSec {
			break
		}
		if iv.from > cursor {
			end := min(iv.from, untilSec)
			missing = append(missing, Span{
				From: time.Unix(cursor, 0).UTC(),
				To:   time.Unix(end, 0).UTC(),
			})
		}
		if iv.to > cursor {
			cursor = iv.to
		}
	}
	if cursor < untilSec {
		missing = append(missing, Span{
			From: time.Unix(cursor, 0).UTC(),
			To:   time.Unix(untilSec, 0).UTC(),
		})
	}
	return missing
}
