// Package download streams candidate links to disk. Fetches are idempotent
// across process runs: an existing destination short-circuits without any
// network traffic, so an interrupted batch resumes without re-transferring
// completed tiles. The client never retries on its own: a failed link may be
// tied to a session-scoped token, and only the retry supervisor can mint a
// fresh session.
package download
