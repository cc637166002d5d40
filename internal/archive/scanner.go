package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"scrobvault/internal/trace"
)

// Entry is one scanned archive file.
type Entry struct {
	Path       string
	Meta       Metadata
	TrackCount int
}

// Scanner loads the archive metadata of every archive file in a user
// directory. Files are decoded in parallel; a metadata cache, when
// provided, lets unchanged files skip JSON decoding entirely.
type Scanner struct {
	dir   string
	cache *MetadataCache
}

// NewScanner returns a scanner over dir. cache may be nil.
func NewScanner(dir string, cache *MetadataCache) *Scanner {
	return &Scanner{dir: dir, cache: cache}
}

// Scan returns the entries for every .json archive in the directory,
// sorted by coverage start. A missing directory scans as empty: the user
// simply has no archives yet.
func (s *Scanner) Scan(ctx context.Context) ([]Entry, error) {
	files, err := listArchiveFiles(s.dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	entries := make([]Entry, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, err := s.loadEntry(ctx, path)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Meta.From.Before(entries[j].Meta.From.Time)
	})

	trace.Debugf(trace.FromContext(ctx), "archive.scan",
		fmt.Sprintf("dir=%s archives=%d", s.dir, len(entries)))
	return entries, nil
}

func (s *Scanner) loadEntry(ctx context.Context, path string) (Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to stat archive file %s: %w", path, err)
	}

	if meta, count, ok := s.cache.Get(path, info); ok {
		return Entry{Path: path, Meta: meta, TrackCount: count}, nil
	}

	a, err := Load(path)
	if err != nil {
		return Entry{}, err
	}

	if err := s.cache.Put(path, info, a.Metadata, len(a.Tracks)); err != nil {
		// The cache is an optimization; failing to fill it is not fatal.
		trace.Debugf(trace.FromContext(ctx), "archive.cache",
			fmt.Sprintf("failed to cache %s: %v", path, err))
	}
	return Entry{Path: path, Meta: a.Metadata, TrackCount: len(a.Tracks)}, nil
}

// listArchiveFiles returns the sorted .json files directly inside dir.
func listArchiveFiles(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read archive directory %s: %w", dir, err)
	}

	var files []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(de.Name()), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, de.Name()))
	}
	sort.Strings(files)
	return files, nil
}
