package lastfm

import (
	"encoding/json"
	"testing"
)

func TestMapAlbumBranches(t *testing.T) {
	const goodMBID = "0e9f4575-34f5-4862-bbd6-d44a5f8a7274"

	cases := []struct {
		name    string
		raw     rawAlbum
		want    *Album
		wantErr bool
	}{
		{
			name: "no album information",
			raw:  rawAlbum{},
			want: nil,
		},
		{
			name: "title only",
			raw:  rawAlbum{Text: "Geogaddi"},
			want: &Album{Name: "Geogaddi"},
		},
		{
			name: "title and mbid",
			raw:  rawAlbum{Text: "Geogaddi", MBID: goodMBID},
			want: &Album{Name: "Geogaddi", MBID: &MusicBrainzID{Entity: MBAlbum, ID: goodMBID}},
		},
		{
			name:    "mbid without title",
			raw:     rawAlbum{MBID: goodMBID},
			wantErr: true,
		},
		{
			name:    "malformed mbid",
			raw:     rawAlbum{Text: "Geogaddi", MBID: "not-a-uuid"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := mapAlbum(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tc.want == nil:
				if got != nil {
					t.Fatalf("expected no album, got %+v", got)
				}
			case got == nil:
				t.Fatalf("expected album %+v, got nil", tc.want)
			case got.Name != tc.want.Name:
				t.Fatalf("album name = %q, want %q", got.Name, tc.want.Name)
			case (got.MBID == nil) != (tc.want.MBID == nil):
				t.Fatalf("album mbid presence mismatch: %+v", got)
			}
		})
	}
}

func TestMapArtistRejectsEmpty(t *testing.T) {
	if _, err := mapArtist(rawArtist{}); err == nil {
		t.Fatalf("artist without name or #text must be rejected")
	}
}

func TestValidateURLRejectsWrongHostAndScheme(t *testing.T) {
	if err := validateURL("https://www.last.fm/music/x", "www.last.fm"); err != nil {
		t.Fatalf("valid URL rejected: %v", err)
	}
	if err := validateURL("ftp://www.last.fm/music/x", "www.last.fm"); err == nil {
		t.Fatalf("non-http scheme must be rejected")
	}
	if err := validateURL("https://evil.example/music/x", "www.last.fm"); err == nil {
		t.Fatalf("wrong host must be rejected")
	}
	if err := validateURL("", "www.last.fm"); err == nil {
		t.Fatalf("empty URL must be rejected")
	}
}

func TestUnixTimeJSON(t *testing.T) {
	data, err := json.Marshal(Unix(1717243200))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "1717243200" {
		t.Fatalf("unexpected encoding: %s", data)
	}

	var decoded UnixTime
	if err := json.Unmarshal([]byte("1717243200"), &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Unix() != 1717243200 {
		t.Fatalf("unexpected decoded value: %d", decoded.Unix())
	}

	if err := json.Unmarshal([]byte(`"not a number"`), &decoded); err == nil {
		t.Fatalf("non-numeric timestamp must be rejected")
	}
}

func TestMusicBrainzIDJSON(t *testing.T) {
	id, err := NewMusicBrainzID(MBArtist, "69158f97-4c07-4c4e-baf8-4e4ab1ed666e")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"entity_type":"artist","mbid":"69158f97-4c07-4c4e-baf8-4e4ab1ed666e"}` {
		t.Fatalf("unexpected encoding: %s", data)
	}

	var decoded MusicBrainzID
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Entity != MBArtist || decoded.ID != id.ID {
		t.Fatalf("roundtrip mismatch: %+v", decoded)
	}
}

func TestMapPageSkipsNowPlaying(t *testing.T) {
	const body = `{
		"recenttracks": {
			"track": [
				{
					"artist": {"mbid": "", "#text": "Autechre"},
					"streamable": "0",
					"image": [],
					"mbid": "",
					"album": {"mbid": "", "#text": ""},
					"name": "Bike",
					"url": "https://www.last.fm/music/Autechre/_/Bike",
					"@attr": {"nowplaying": "true"}
				},
				{
					"artist": {"mbid": "", "#text": "Autechre"},
					"streamable": "0",
					"image": [],
					"mbid": "",
					"album": {"mbid": "", "#text": ""},
					"name": "Eutow",
					"url": "https://www.last.fm/music/Autechre/_/Eutow",
					"date": {"uts": "1717300000", "#text": "02 Jun 2024, 06:26"}
				}
			],
			"@attr": {"user": "someone", "totalPages": "1", "page": "1", "perPage": "200", "total": "2"}
		}
	}`

	raw, err := decodeRaw([]byte(body))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	page, err := mapPage(raw)
	if err != nil {
		t.Fatalf("mapPage failed: %v", err)
	}
	if len(page.Tracks) != 1 || page.Tracks[0].Name != "Eutow" {
		t.Fatalf("now-playing entry must be skipped, got %+v", page.Tracks)
	}
}
