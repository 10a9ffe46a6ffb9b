// Package bundle serializes a request footprint into the zipped shapefile
// the portal's upload control expects: geometry (.shp), shape index (.shx),
// attribute table (.dbf), and projection definition (.prj), archived
// together. Bundles live in attempt-scoped scratch directories owned by the
// caller.
package bundle
