package downloader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"scrobvault/internal/archive"
	"scrobvault/internal/canceltoken"
	"scrobvault/internal/lastfm"
)

const trackJSON = `{
	"artist": {"mbid": "", "name": "Boards of Canada", "url": "https://www.last.fm/music/Boards+of+Canada", "image": []},
	"streamable": "0",
	"image": [],
	"mbid": "",
	"album": {"mbid": "", "#text": ""},
	"name": "Roygbiv",
	"url": "https://www.last.fm/music/Boards+of+Canada/_/Roygbiv",
	"date": {"uts": "500", "#text": "04 Jun 2024, 12:00"},
	"loved": "1"
}`

func pageJSON(page, pages int) string {
	return fmt.Sprintf(`{
		"recenttracks": {
			"track": [%s],
			"@attr": {"user": "someone", "totalPages": "%d", "page": "%d", "perPage": "200", "total": "%d"}
		}
	}`, trackJSON, pages, page, pages)
}

type recordSink struct {
	mu     sync.Mutex
	events []Event

	// onEvent, when set, runs for every event under the lock.
	onEvent func(Event)
}

func (s *recordSink) OnEvent(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	if s.onEvent != nil {
		s.onEvent(evt)
	}
}

func (s *recordSink) statuses(stage Stage) []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Status
	for _, evt := range s.events {
		if evt.Stage == stage {
			out = append(out, evt.Status)
		}
	}
	return out
}

func newTestDownloader(t *testing.T, handler http.Handler, sink Sink) (*Downloader, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := lastfm.NewClient("test-key", lastfm.WithBaseURL(server.URL), lastfm.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	root := t.TempDir()
	return &Downloader{
		Client:    client,
		Locations: archive.NewLocations(root),
		Progress:  sink,
		Now:       func() time.Time { return time.Unix(1000, 0).UTC() },
	}, root
}

func TestRunArchivesFullGap(t *testing.T) {
	sink := &recordSink{}
	d, root := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("user"); got != "someone" {
			t.Errorf("unexpected user %q", got)
		}
		fmt.Fprint(w, pageJSON(1, 1)) //nolint:errcheck
	}), sink)

	token := canceltoken.New()
	res, err := d.Run(context.Background(), "someone", token.Observer())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Cancelled {
		t.Fatalf("run should not be cancelled")
	}
	if res.Existing != 0 || len(res.Missing) != 1 || len(res.Archived) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Archived[0].Tracks != 1 {
		t.Fatalf("expected 1 track, got %d", res.Archived[0].Tracks)
	}

	// Coverage metadata is inclusive, so the archive ends one second
	// before the clock.
	wantPath := filepath.Join(root, "user_someone", "scrobble-archive_user-someone_from-0_to-999.json")
	if res.Archived[0].Path != wantPath {
		t.Fatalf("archive path = %s, want %s", res.Archived[0].Path, wantPath)
	}
	loaded, err := archive.Load(wantPath)
	if err != nil {
		t.Fatalf("failed to load written archive: %v", err)
	}
	if len(loaded.Tracks) != 1 || loaded.Tracks[0].Name != "Roygbiv" || !loaded.Tracks[0].Loved {
		t.Fatalf("unexpected archive contents: %+v", loaded.Tracks)
	}

	if got := sink.statuses(StageWrite); len(got) != 2 || got[1] != StatusDone {
		t.Fatalf("unexpected write events: %v", got)
	}
}

func TestRunPagesThroughSpan(t *testing.T) {
	var pagesServed []string
	d, _ := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pagesServed = append(pagesServed, page)
		if page == "1" {
			fmt.Fprint(w, pageJSON(1, 3)) //nolint:errcheck
			return
		}
		fmt.Fprint(w, pageJSON(2, 3)) //nolint:errcheck
	}), nil)

	token := canceltoken.New()
	res, err := d.Run(context.Background(), "someone", token.Observer())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(pagesServed) != 3 {
		t.Fatalf("expected 3 page requests, got %v", pagesServed)
	}
	if res.Archived[0].Tracks != 3 {
		t.Fatalf("expected 3 accumulated tracks, got %d", res.Archived[0].Tracks)
	}
}

func TestRunStopsBetweenPages(t *testing.T) {
	token := canceltoken.New()
	sink := &recordSink{}
	sink.onEvent = func(evt Event) {
		// Cancel as soon as the first page starts; the check before the
		// second page must observe it.
		if evt.Stage == StageFetch && evt.Status == StatusWorking && evt.Page == 1 {
			token.Cancel()
		}
	}

	requests := 0
	d, root := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, pageJSON(1, 5)) //nolint:errcheck
	}), sink)

	res, err := d.Run(context.Background(), "someone", token.Observer())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Cancelled {
		t.Fatalf("expected a cancelled run")
	}
	if requests != 1 {
		t.Fatalf("expected 1 request before stopping, got %d", requests)
	}
	if len(res.Archived) != 0 {
		t.Fatalf("partial span must not be written: %+v", res.Archived)
	}

	// The abandoned span directory holds no archive.
	entries, err := archive.NewScanner(filepath.Join(root, "user_someone"), nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no archives on disk, got %+v", entries)
	}

	statuses := sink.statuses(StageFetch)
	if statuses[len(statuses)-1] != StatusCancelled {
		t.Fatalf("expected a trailing cancelled event, got %v", statuses)
	}
}

func TestRunNothingMissing(t *testing.T) {
	d, root := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when coverage is complete")
	}), nil)

	full := &archive.Archive{
		Metadata: archive.Metadata{
			ArchivedAt: lastfm.Unix(999),
			Username:   "someone",
			From:       lastfm.Unix(0),
			To:         lastfm.Unix(999),
		},
	}
	if _, err := full.WriteFile(filepath.Join(root, "user_someone")); err != nil {
		t.Fatalf("failed to seed archive: %v", err)
	}

	token := canceltoken.New()
	res, err := d.Run(context.Background(), "someone", token.Observer())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Existing != 1 || len(res.Missing) != 0 || len(res.Archived) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	d, _ := newTestDownloader(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected after cancellation")
	}), nil)

	token := canceltoken.New()
	token.Cancel()
	res, err := d.Run(context.Background(), "someone", token.Observer())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Cancelled || len(res.Archived) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSpanLabel(t *testing.T) {
	span := archive.Span{From: time.Unix(0, 0).UTC(), To: time.Unix(86400, 0).UTC()}
	want := "1970-01-01 00:00:00 .. 1970-01-02 00:00:00"
	if got := SpanLabel(span); got != want {
		t.Fatalf("SpanLabel = %q, want %q", got, want)
	}
}
