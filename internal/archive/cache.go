package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"scrobvault/internal/lastfm"
)

// Current schema version - increment when cachePayload format changes.
const cacheSchemaVersion uint16 = 1

// MetadataCache stores decoded archive metadata on disk so rescans skip
// re-decoding the (potentially large) track lists of unchanged files.
// Thread-safe for concurrent access.
type MetadataCache struct {
	mu  sync.RWMutex
	dir string
}

// cachePayload is the msgpack-encoded cache entry for one archive file.
type cachePayload struct {
	// Schema version for safe invalidation when the format changes.
	Schema uint16

	// Source file identity; a mismatch invalidates the entry.
	Path        string
	Size        int64
	ModTimeUnix int64

	// Cached metadata.
	ArchivedAt int64
	Username   string
	From       int64
	To         int64
	TrackCount uint32
}

// OpenMetadataCache initializes a metadata cache at the standard location,
// $XDG_CACHE_HOME/<app>/archives (or ~/.cache/<app>/archives).
func OpenMetadataCache(app string) (*MetadataCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app, "archives")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &MetadataCache{dir: dir}, nil
}

// OpenMetadataCacheAt initializes a metadata cache in an explicit
// directory. Used by tests.
func OpenMetadataCacheAt(dir string) (*MetadataCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &MetadataCache{dir: dir}, nil
}

func (c *MetadataCache) pathFor(archivePath string) string {
	sum := sha256.Sum256([]byte(archivePath))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".mp")
}

// Put caches the metadata of the archive file at path, described by info.
func (c *MetadataCache) Put(path string, info fs.FileInfo, meta Metadata, trackCount int) error {
	if c == nil {
		return nil
	}

	count, err := safecast.Conv[uint32](trackCount)
	if err != nil {
		return err
	}
	payload := cachePayload{
		Schema:      cacheSchemaVersion,
		Path:        path,
		Size:        info.Size(),
		ModTimeUnix: info.ModTime().UnixNano(),
		ArchivedAt:  meta.ArchivedAt.Unix(),
		Username:    meta.Username,
		From:        meta.From.Unix(),
		To:          meta.To.Unix(),
		TrackCount:  count,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.pathFor(path)
	tmp, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	enc := msgpack.NewEncoder(tmp)
	if err := enc.Encode(&payload); err != nil {
		tmp.Close() //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// Atomic replace.
	return os.Rename(tmp.Name(), target)
}

// Get returns the cached metadata for path if the entry exists and still
// matches the file identity in info. A false result is not an error; it
// means the caller must decode the file itself.
func (c *MetadataCache) Get(path string, info fs.FileInfo) (Metadata, int, bool) {
	if c == nil {
		return Metadata{}, 0, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(path))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			// A corrupt or unreadable entry just means a cache miss.
			_ = err
		}
		return Metadata{}, 0, false
	}
	defer f.Close() //nolint:errcheck

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return Metadata{}, 0, false
	}

	if payload.Schema != cacheSchemaVersion ||
		payload.Path != path ||
		payload.Size != info.Size() ||
		payload.ModTimeUnix != info.ModTime().UnixNano() {
		return Metadata{}, 0, false
	}

	meta := Metadata{
		ArchivedAt: lastfm.Unix(payload.ArchivedAt),
		Username:   payload.Username,
		From:       lastfm.Unix(payload.From),
		To:         lastfm.Unix(payload.To),
	}
	return meta, int(payload.TrackCount), true
}
