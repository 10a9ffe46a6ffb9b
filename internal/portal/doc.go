// Package portal drives the survey-data portal's multi-step selection
// workflow: switch to shapefile upload, submit the footprint bundle, open
// the tile selector, pick a product, then walk the year options until the
// results list yields links matching the requested tile. The driver only
// discovers links; downloading them is the orchestrator's job, because the
// automation session and the HTTP transfer fail independently.
package portal
