// Package lastfm implements a client for the last.fm scrobble history API
// (user.getrecenttracks).
//
// The wire format is awkward: numbers arrive as strings, field names like
// "@attr" and "#text" abound, and the artist object has two shapes
// depending on the extended flag. The raw types in this package mirror that
// shape exactly; the exported domain types (ScrobbledTrack and friends) are
// the validated, strongly typed mapping of it. Responses that decode as
// JSON but violate the documented invariants surface as *StructureError
// rather than being silently accepted.
package lastfm
