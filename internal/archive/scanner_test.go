package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeArchiveFiles(t *testing.T, dir string) {
	t.Helper()
	for _, a := range []*Archive{
		{Metadata: meta2("someone", 400, 599)},
		{Metadata: meta2("someone", 0, 199)},
	} {
		if _, err := a.WriteFile(dir); err != nil {
			t.Fatalf("failed to write archive: %v", err)
		}
	}
	// Non-archive files are skipped.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write extra file: %v", err)
	}
}

func meta2(user string, from, to int64) Metadata {
	m := meta(from, to)
	m.Username = user
	return m
}

func TestScanSortsByCoverageStart(t *testing.T) {
	dir := t.TempDir()
	writeArchiveFiles(t, dir)

	entries, err := NewScanner(dir, nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Meta.From.Unix() != 0 || entries[1].Meta.From.Unix() != 400 {
		t.Fatalf("entries not sorted by From: %+v", entries)
	}
}

func TestScanMissingDirIsEmpty(t *testing.T) {
	entries, err := NewScanner(filepath.Join(t.TempDir(), "missing"), nil).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan of missing dir must not fail: %v", err)
	}
	if entries != nil {
		t.Fatalf("expected no entries, got %+v", entries)
	}
}

func TestScanRejectsCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	if _, err := NewScanner(dir, nil).Scan(context.Background()); err == nil {
		t.Fatalf("expected error for corrupt archive")
	}
}

func TestScanUsesMetadataCache(t *testing.T) {
	dir := t.TempDir()
	writeArchiveFiles(t, dir)

	cache, err := OpenMetadataCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	scanner := NewScanner(dir, cache)

	first, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("first Scan failed: %v", err)
	}

	// Second scan must be served from the cache and agree with the first.
	second, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("second Scan failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("scan results differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Meta != second[i].Meta || first[i].TrackCount != second[i].TrackCount {
			t.Fatalf("entry %d differs between scans: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestMetadataCacheInvalidatesOnChange(t *testing.T) {
	dir := t.TempDir()
	a := &Archive{Metadata: meta2("someone", 0, 99)}
	path, err := a.WriteFile(dir)
	if err != nil {
		t.Fatalf("failed to write archive: %v", err)
	}

	cache, err := OpenMetadataCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if err := cache.Put(path, info, a.Metadata, 0); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, _, ok := cache.Get(path, info); !ok {
		t.Fatalf("expected cache hit for unchanged file")
	}

	// Rewriting the file changes its identity and must miss.
	a.Tracks = nil
	a.To = meta(0, 100).To
	if _, err := a.WriteFile(dir); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}
	newInfo, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if newInfo.Size() != info.Size() || !newInfo.ModTime().Equal(info.ModTime()) {
		if _, _, ok := cache.Get(path, newInfo); ok {
			t.Fatalf("expected cache miss for changed file")
		}
	}
}
