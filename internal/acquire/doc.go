// Package acquire drives the per-tile acquisition pipeline and the batch
// runner around it. Each attempt owns a fresh scratch directory and a fresh
// browser session, both released before the next attempt starts. Failures
// retry after a fixed cooldown up to a configured bound; a failed conversion
// is terminal for the tile without being fatal to the batch.
package acquire
