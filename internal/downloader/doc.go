// Package downloader orchestrates an archive run: scan the existing
// archives of a user, compute the time spans with no coverage, then fetch
// each span from last.fm and write it out as one archive file.
//
// A run observes a cancellation token between pages. Cancelling stops the
// run cleanly: archives already written stay on disk, the span being
// fetched is discarded.
package downloader
