package lastfm

import (
	"fmt"
	"strconv"
	"time"
)

// UnixTime is a time.Time that serializes as integer unix seconds, the
// timestamp format used by both the last.fm API and the archive files.
type UnixTime struct {
	time.Time
}

// Unix wraps a unix-second timestamp as a UnixTime in UTC.
func Unix(sec int64) UnixTime {
	return UnixTime{Time: time.Unix(sec, 0).UTC()}
}

// MarshalJSON encodes the time as integer unix seconds.
func (t UnixTime) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, t.Time.Unix(), 10), nil
}

// UnmarshalJSON decodes integer unix seconds.
func (t *UnixTime) UnmarshalJSON(data []byte) error {
	sec, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid unix timestamp %q: %w", data, err)
	}
	t.Time = time.Unix(sec, 0).UTC()
	return nil
}

// ImageSize is one of the fixed sizes the API serves artwork in. The
// numeric order matches the size order, so sizes compare with <.
type ImageSize uint8

const (
	ImageSmall ImageSize = iota
	ImageMedium
	ImageLarge
	ImageExtraLarge
)

// String returns the wire representation of the size.
func (s ImageSize) String() string {
	switch s {
	case ImageSmall:
		return "small"
	case ImageMedium:
		return "medium"
	case ImageLarge:
		return "large"
	case ImageExtraLarge:
		return "extralarge"
	default:
		return "unknown"
	}
}

// ParseImageSize converts a wire string to an ImageSize.
func ParseImageSize(s string) (ImageSize, error) {
	switch s {
	case "small":
		return ImageSmall, nil
	case "medium":
		return ImageMedium, nil
	case "large":
		return ImageLarge, nil
	case "extralarge":
		return ImageExtraLarge, nil
	default:
		return ImageSmall, fmt.Errorf("unrecognized image size: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s ImageSize) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ImageSize) UnmarshalText(text []byte) error {
	size, err := ParseImageSize(string(text))
	if err != nil {
		return err
	}
	*s = size
	return nil
}

// Image is one artwork rendition.
type Image struct {
	Size ImageSize `json:"size"`
	URL  string    `json:"url"`
}

// MBEntityType is the kind of entity a MusicBrainz ID refers to. Only the
// kinds that appear in the scrobble history API are listed.
type MBEntityType uint8

const (
	MBArtist MBEntityType = iota
	MBAlbum
	MBTrack
)

// String returns the wire representation of the entity type.
func (t MBEntityType) String() string {
	switch t {
	case MBArtist:
		return "artist"
	case MBAlbum:
		return "album"
	case MBTrack:
		return "track"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t MBEntityType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *MBEntityType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "artist":
		*t = MBArtist
	case "album":
		*t = MBAlbum
	case "track":
		*t = MBTrack
	default:
		return fmt.Errorf("unrecognized MusicBrainz entity type: %q", text)
	}
	return nil
}

// MusicBrainzID is an entity-typed MusicBrainz identifier.
//
// Only the shape is checked (a MusicBrainz identifier is a 36-character
// UUID string); nothing is looked up against the database.
type MusicBrainzID struct {
	Entity MBEntityType `json:"entity_type"`
	ID     string       `json:"mbid"`
}

const mbidLength = 36

// NewMusicBrainzID validates id and wraps it with its entity type.
func NewMusicBrainzID(entity MBEntityType, id string) (*MusicBrainzID, error) {
	if len(id) != mbidLength {
		return nil, fmt.Errorf("invalid MusicBrainz ID: %q", id)
	}
	return &MusicBrainzID{Entity: entity, ID: id}, nil
}

// optionalMBID maps an empty wire string to nil and validates anything
// else.
func optionalMBID(entity MBEntityType, id string) (*MusicBrainzID, error) {
	if id == "" {
		return nil, nil
	}
	return NewMusicBrainzID(entity, id)
}

// Artist is the validated artist information of a scrobble. Images are
// present only when the API request asked for extended data.
type Artist struct {
	Name   string         `json:"name"`
	MBID   *MusicBrainzID `json:"mbid,omitempty"`
	Images []Image        `json:"images,omitempty"`
}

// Album is the validated album information of a scrobble.
type Album struct {
	Name string         `json:"name"`
	MBID *MusicBrainzID `json:"mbid,omitempty"`
}

// ScrobbledTrack is one validated scrobble.
type ScrobbledTrack struct {
	Name        string         `json:"track_name"`
	MBID        *MusicBrainzID `json:"track_mbid,omitempty"`
	URL         string         `json:"track_last_fm_url"`
	Images      []Image        `json:"track_images,omitempty"`
	Streamable  bool           `json:"is_track_streamable"`
	Loved       bool           `json:"is_track_loved"`
	Artist      Artist         `json:"artist"`
	Album       *Album         `json:"album,omitempty"`
	ScrobbledAt UnixTime       `json:"scrobbled_at"`
}

// RecentTracksPage is one page of a user's scrobble history.
type RecentTracksPage struct {
	Username string
	Page     int
	Pages    int
	PerPage  int
	Total    int
	Tracks   []ScrobbledTrack
}
