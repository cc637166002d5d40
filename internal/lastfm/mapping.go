package lastfm

import (
	"net/url"
	"strconv"
	"strings"
)

// mapPage converts a raw response into a validated RecentTracksPage.
func mapPage(raw *rawRecentTracksResponse) (*RecentTracksPage, error) {
	attr := raw.RecentTracks.Attr

	page, err := parseAttrInt("page", attr.Page)
	if err != nil {
		return nil, err
	}
	pages, err := parseAttrInt("totalPages", attr.TotalPages)
	if err != nil {
		return nil, err
	}
	perPage, err := parseAttrInt("perPage", attr.PerPage)
	if err != nil {
		return nil, err
	}
	total, err := parseAttrInt("total", attr.Total)
	if err != nil {
		return nil, err
	}

	tracks := make([]ScrobbledTrack, 0, len(raw.RecentTracks.Track))
	for i, rawTrack := range raw.RecentTracks.Track {
		// A now-playing entry is not a scrobble yet and has no date.
		if rawTrack.Attr != nil && rawTrack.Attr.NowPlaying == "true" {
			continue
		}
		track, err := mapTrack(rawTrack)
		if err != nil {
			return nil, structureErrorf("track %d: %v", i, err)
		}
		tracks = append(tracks, track)
	}

	return &RecentTracksPage{
		Username: attr.User,
		Page:     page,
		Pages:    pages,
		PerPage:  perPage,
		Total:    total,
		Tracks:   tracks,
	}, nil
}

func parseAttrInt(field, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, structureErrorf("failed to parse @attr field %s: %v", field, err)
	}
	return n, nil
}

func mapTrack(raw rawTrack) (ScrobbledTrack, error) {
	artist, err := mapArtist(raw.Artist)
	if err != nil {
		return ScrobbledTrack{}, err
	}

	album, err := mapAlbum(raw.Album)
	if err != nil {
		return ScrobbledTrack{}, err
	}

	if raw.Name == "" {
		return ScrobbledTrack{}, structureErrorf("track name is an empty string")
	}

	mbid, err := optionalMBID(MBTrack, raw.MBID)
	if err != nil {
		return ScrobbledTrack{}, err
	}

	if err := validateURL(raw.URL, "www.last.fm"); err != nil {
		return ScrobbledTrack{}, structureErrorf("track url: %v", err)
	}

	images, err := mapImages(raw.Image)
	if err != nil {
		return ScrobbledTrack{}, err
	}

	streamable, err := parseBoolFlag("streamable", raw.Streamable)
	if err != nil {
		return ScrobbledTrack{}, err
	}
	// loved is only present with extended data; absent decodes as "".
	loved := false
	if raw.Loved != "" {
		if loved, err = parseBoolFlag("loved", raw.Loved); err != nil {
			return ScrobbledTrack{}, err
		}
	}

	uts, err := strconv.ParseInt(raw.Date.UTS, 10, 64)
	if err != nil {
		return ScrobbledTrack{}, structureErrorf("failed to parse date.uts: %v", err)
	}

	return ScrobbledTrack{
		Name:        raw.Name,
		MBID:        mbid,
		URL:         raw.URL,
		Images:      images,
		Streamable:  streamable,
		Loved:       loved,
		Artist:      artist,
		Album:       album,
		ScrobbledAt: Unix(uts),
	}, nil
}

func mapArtist(raw rawArtist) (Artist, error) {
	// A non-empty name marks the extended variant; the plain variant only
	// carries mbid and #text.
	if raw.Name != "" {
		mbid, err := optionalMBID(MBArtist, raw.MBID)
		if err != nil {
			return Artist{}, structureErrorf("artist.mbid: %v", err)
		}
		images, err := mapImages(raw.Image)
		if err != nil {
			return Artist{}, err
		}
		return Artist{Name: raw.Name, MBID: mbid, Images: images}, nil
	}

	if raw.Text == "" {
		return Artist{}, structureErrorf("artist has neither name nor #text")
	}
	mbid, err := optionalMBID(MBArtist, raw.MBID)
	if err != nil {
		return Artist{}, structureErrorf("artist.mbid: %v", err)
	}
	return Artist{Name: raw.Text, MBID: mbid}, nil
}

func mapAlbum(raw rawAlbum) (*Album, error) {
	switch {
	case raw.Text == "" && raw.MBID == "":
		// No album information at all.
		return nil, nil
	case raw.Text != "":
		mbid, err := optionalMBID(MBAlbum, raw.MBID)
		if err != nil {
			return nil, structureErrorf("album.mbid: %v", err)
		}
		return &Album{Name: raw.Text, MBID: mbid}, nil
	default:
		return nil, structureErrorf("album.mbid is set but album.#text is empty")
	}
}

func mapImages(raws []rawImage) ([]Image, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	images := make([]Image, 0, len(raws))
	for _, raw := range raws {
		// Empty image URLs are common and simply mean "no artwork at this
		// size".
		if raw.Text == "" {
			continue
		}
		size, err := ParseImageSize(raw.Size)
		if err != nil {
			return nil, structureErrorf("image: %v", err)
		}
		if err := validateURL(raw.Text, "lastfm.freetls.fastly.net"); err != nil {
			return nil, structureErrorf("image url: %v", err)
		}
		images = append(images, Image{Size: size, URL: raw.Text})
	}
	return images, nil
}

func parseBoolFlag(field, value string) (bool, error) {
	switch value {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, structureErrorf("invalid %s field value: %q", field, value)
	}
}

// validateURL checks that raw parses as an http(s) URL on the expected
// host.
func validateURL(raw, hostPrefix string) error {
	if raw == "" {
		return structureErrorf("empty URL")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return structureErrorf("not an http(s) URL: %s", raw)
	}
	if !strings.HasPrefix(u.Host, hostPrefix) {
		return structureErrorf("unexpected host (want %s): %s", hostPrefix, raw)
	}
	return nil
}
