package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"scrobvault/internal/lastfm"
)

// Metadata describes one archive file without its track list.
type Metadata struct {
	// ArchivedAt is when the snapshot was taken.
	ArchivedAt lastfm.UnixTime `json:"archived_at"`

	// Username is the last.fm user the scrobbles belong to.
	Username string `json:"username"`

	// From is the time of the oldest included scrobble (inclusive).
	From lastfm.UnixTime `json:"from"`

	// To is the time of the most recent included scrobble (inclusive).
	To lastfm.UnixTime `json:"to"`
}

// Archive is a scrobble snapshot.
//
// Invariant: Tracks holds every scrobble between From and To.
type Archive struct {
	Metadata

	Tracks []lastfm.ScrobbledTrack `json:"scrobbled_tracks"`
}

// FileName returns the canonical file name for this archive,
// scrobble-archive_user-<user>_from-<unix>_to-<unix>.json.
func (a *Archive) FileName() string {
	return fmt.Sprintf(
		"scrobble-archive_user-%s_from-%d_to-%d.json",
		asciiFold(a.Username), a.From.Unix(), a.To.Unix(),
	)
}

// WriteFile serializes the archive into dir under its canonical name,
// using a temp file plus rename so a crash cannot leave a truncated
// archive behind. It returns the final path.
func (a *Archive) WriteFile(dir string) (string, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("failed to serialize archive: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}

	final := filepath.Join(dir, a.FileName())
	tmp, err := os.CreateTemp(dir, "tmp-archive-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return "", fmt.Errorf("failed to write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("failed to move archive into place: %w", err)
	}
	return final, nil
}

// Load reads and decodes a full archive file.
func Load(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive file %s: %w", path, err)
	}

	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode archive file %s: %w", path, err)
	}
	return &a, nil
}

// Locations maps usernames to their archive directories under a root.
type Locations struct {
	root string
}

// NewLocations returns a Locations manager rooted at root.
func NewLocations(root string) Locations {
	return Locations{root: root}
}

// Root returns the archive root directory.
func (l Locations) Root() string {
	return l.root
}

// UserDir returns the archive directory for username, without creating it.
func (l Locations) UserDir(username string) string {
	return filepath.Join(l.root, "user_"+asciiFold(username))
}

// EnsureUserDir returns the archive directory for username, creating it if
// needed.
func (l Locations) EnsureUserDir(username string) (string, error) {
	dir := l.UserDir(username)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create user archive directory %s: %w", dir, err)
	}
	return dir, nil
}
