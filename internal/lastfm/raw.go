package lastfm

import "encoding/json"

// Raw response structures mirror the wire shape of user.getrecenttracks.
// Field descriptions are based on observed API data; numbers are
// string-encoded throughout.

type rawRecentTracksResponse struct {
	RecentTracks rawRecentTracksField `json:"recenttracks"`
}

type rawRecentTracksField struct {
	Track []rawTrack  `json:"track"`
	Attr  rawPageAttr `json:"@attr"`
}

type rawPageAttr struct {
	User       string `json:"user"`
	TotalPages string `json:"totalPages"`
	Page       string `json:"page"`
	PerPage    string `json:"perPage"`
	Total      string `json:"total"`
}

// rawTrack invariants observed in practice:
//   - artist and date are always present
//   - streamable and loved contain "0" or "1"
//   - mbid may be an empty string
//   - name and url are never empty
type rawTrack struct {
	Artist     rawArtist  `json:"artist"`
	Streamable string     `json:"streamable"`
	Image      []rawImage `json:"image"`
	MBID       string     `json:"mbid"`
	Album      rawAlbum   `json:"album"`
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	Date       rawDate    `json:"date"`
	Loved      string     `json:"loved"`
	Attr       *rawTrackAttr `json:"@attr"`
}

// rawTrackAttr marks the currently playing track, which the API prepends
// to the first page when the requested range extends to the present. Such
// a track has no date.
type rawTrackAttr struct {
	NowPlaying string `json:"nowplaying"`
}

// rawArtist folds the two wire variants into one struct. With extended=1
// the object carries name/url/image; without it only mbid/#text. The
// mapping layer treats a non-empty Name as the extended variant.
type rawArtist struct {
	MBID  string     `json:"mbid"`
	Name  string     `json:"name"`
	URL   string     `json:"url"`
	Image []rawImage `json:"image"`
	Text  string     `json:"#text"`
}

// rawAlbum: either both fields are empty (no album information, common for
// YouTube-style scrobbles), or #text is set with mbid optionally set.
type rawAlbum struct {
	MBID string `json:"mbid"`
	Text string `json:"#text"`
}

// rawImage: size is one of small|medium|large|extralarge; #text may be
// empty or a lastfm.freetls.fastly.net URL.
type rawImage struct {
	Size string `json:"size"`
	Text string `json:"#text"`
}

type rawDate struct {
	// UTS is the unix epoch in seconds, as a string.
	UTS  string `json:"uts"`
	Text string `json:"#text"`
}

func decodeRaw(data []byte) (*rawRecentTracksResponse, error) {
	var raw rawRecentTracksResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}
