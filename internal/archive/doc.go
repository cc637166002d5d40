// Package archive manages local scrobble archive files.
//
// An archive file is a JSON snapshot of every scrobble between two points
// in time, stored per user under the configured root directory. The package
// covers the file format itself, the directory layout, scanning a user's
// existing archives (with an msgpack metadata cache so unchanged files are
// not re-decoded), and computing which time ranges still lack coverage.
package archive
