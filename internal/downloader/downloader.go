package downloader

import (
	"context"
	"fmt"
	"time"

	"scrobvault/internal/archive"
	"scrobvault/internal/canceltoken"
	"scrobvault/internal/lastfm"
	"scrobvault/internal/observ"
	"scrobvault/internal/trace"
)

// Downloader runs the scan-fetch-write pipeline for one user.
type Downloader struct {
	Client    *lastfm.Client
	Locations archive.Locations
	Cache     *archive.MetadataCache

	// Progress receives run events. Nil means no reporting.
	Progress Sink

	// Timer, when set, records per-phase durations.
	Timer *observ.Timer

	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// SpanResult describes one completed span of a run.
type SpanResult struct {
	Span   archive.Span
	Path   string
	Tracks int
}

// Result summarizes an archive run.
type Result struct {
	// Existing is how many archives the user already had.
	Existing int

	// Missing is every span the run set out to fill.
	Missing []archive.Span

	// Archived holds the spans that were fetched and written.
	Archived []SpanResult

	// Cancelled reports that the run stopped early. Archives in Archived
	// are complete and stay on disk; the remaining spans were not written.
	Cancelled bool
}

func (d *Downloader) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Downloader) emit(evt Event) {
	if d.Progress != nil {
		d.Progress.OnEvent(evt)
	}
}

// Run archives everything missing for username, stopping cleanly when stop
// is cancelled. The returned Result is valid even on error or cancellation
// and describes what was actually written.
func (d *Downloader) Run(ctx context.Context, username string, stop canceltoken.Observer) (*Result, error) {
	tracer := trace.FromContext(ctx)
	until := d.now().Truncate(time.Second)
	res := &Result{}

	d.emit(Event{Stage: StageScan, Status: StatusWorking})
	entries, err := d.scan(ctx, username)
	if err != nil {
		d.emit(Event{Stage: StageScan, Status: StatusError, Err: err})
		return res, err
	}
	res.Existing = len(entries)

	metas := make([]archive.Metadata, len(entries))
	for i, e := range entries {
		metas[i] = e.Meta
	}
	res.Missing = archive.MissingSpans(metas, until)
	d.emit(Event{Stage: StageScan, Status: StatusDone})
	trace.Infof(tracer, "downloader.plan",
		fmt.Sprintf("user=%s archives=%d gaps=%d", username, res.Existing, len(res.Missing)))

	for _, span := range res.Missing {
		d.emit(Event{Span: SpanLabel(span), Stage: StageFetch, Status: StatusQueued})
	}

	for _, span := range res.Missing {
		if stop.IsCancelled() {
			d.markRemaining(res)
			res.Cancelled = true
			return res, nil
		}

		sr, cancelled, err := d.archiveSpan(ctx, username, span, stop)
		if err != nil {
			d.emit(Event{Span: SpanLabel(span), Stage: StageFetch, Status: StatusError, Err: err})
			return res, fmt.Errorf("failed to archive span %s: %w", SpanLabel(span), err)
		}
		if cancelled {
			d.markRemaining(res)
			res.Cancelled = true
			return res, nil
		}
		res.Archived = append(res.Archived, sr)
	}
	return res, nil
}

// markRemaining flags every span that has no archive yet as cancelled.
func (d *Downloader) markRemaining(res *Result) {
	done := make(map[string]bool, len(res.Archived))
	for _, sr := range res.Archived {
		done[SpanLabel(sr.Span)] = true
	}
	for _, span := range res.Missing {
		if !done[SpanLabel(span)] {
			d.emit(Event{Span: SpanLabel(span), Stage: StageFetch, Status: StatusCancelled})
		}
	}
}

func (d *Downloader) scan(ctx context.Context, username string) ([]archive.Entry, error) {
	var entries []archive.Entry
	err := d.measure("scan", func() (string, error) {
		var err error
		entries, err = archive.NewScanner(d.Locations.UserDir(username), d.Cache).Scan(ctx)
		return fmt.Sprintf("%d archives", len(entries)), err
	})
	return entries, err
}

// archiveSpan fetches every page of one span and writes the archive file.
// The bool result reports cancellation between pages; the partial span is
// discarded in that case.
func (d *Downloader) archiveSpan(ctx context.Context, username string, span archive.Span, stop canceltoken.Observer) (SpanResult, bool, error) {
	label := SpanLabel(span)
	tracer := trace.FromContext(ctx)

	var tracks []lastfm.ScrobbledTrack
	cancelled := false
	err := d.measure("fetch "+label, func() (string, error) {
		page, pages := 1, 1
		for page <= pages {
			if stop.IsCancelled() {
				cancelled = true
				return "cancelled", nil
			}
			d.emit(Event{Span: label, Stage: StageFetch, Status: StatusWorking, Page: page, Pages: pages, Tracks: len(tracks)})

			resp, err := d.Client.RecentTracks(ctx, username, lastfm.RecentTracksOptions{
				Page:     page,
				Extended: true,
				From:     &span.From,
				To:       &span.To,
			})
			if err != nil {
				return "", err
			}
			pages = resp.Pages
			tracks = append(tracks, resp.Tracks...)
			page++
		}
		return fmt.Sprintf("%d tracks", len(tracks)), nil
	})
	if err != nil || cancelled {
		return SpanResult{}, cancelled, err
	}

	a := &archive.Archive{
		Metadata: archive.Metadata{
			ArchivedAt: lastfm.Unix(d.now().Unix()),
			Username:   username,
			From:       lastfm.Unix(span.From.Unix()),
			// Metadata coverage is inclusive on both ends; the span end is
			// exclusive.
			To: lastfm.Unix(span.To.Unix() - 1),
		},
		Tracks: tracks,
	}

	d.emit(Event{Span: label, Stage: StageWrite, Status: StatusWorking, Tracks: len(tracks)})
	dir, err := d.Locations.EnsureUserDir(username)
	if err != nil {
		return SpanResult{}, false, err
	}
	path, err := a.WriteFile(dir)
	if err != nil {
		return SpanResult{}, false, err
	}
	trace.Infof(tracer, "downloader.archived",
		fmt.Sprintf("span=%s tracks=%d path=%s", label, len(tracks), path))
	d.emit(Event{Span: label, Stage: StageWrite, Status: StatusDone, Tracks: len(tracks)})

	return SpanResult{Span: span, Path: path, Tracks: len(tracks)}, false, nil
}

func (d *Downloader) measure(name string, fn func() (string, error)) error {
	if d.Timer == nil {
		_, err := fn()
		return err
	}
	return d.Timer.Measure(name, fn)
}

// SpanLabel renders a span as a stable human-readable range.
func SpanLabel(s archive.Span) string {
	const layout = "2006-01-02 15:04:05"
	return s.From.UTC().Format(layout) + " .. " + s.To.UTC().Format(layout)
}
