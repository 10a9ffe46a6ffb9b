// Package tilegrid resolves tile names to request footprints against a
// fixed-CRS tile index. It expands footprints to edge-sharing neighbor
// tiles (the portal's tile discovery clips at footprint boundaries) and
// bounds footprint complexity with a doubling-tolerance simplification.
package tilegrid
