package tilegrid

import "github.com/paulmach/orb"

// largeAreaThreshold is the footprint area (square metres) above which the
// portal rejects a single upload and the request must be split.
const largeAreaThreshold = 561333677

// Plan selects the upload strategy for a general area-of-interest footprint.
// Oversized or multi-part footprints are split into per-part sub-footprints,
// each uploaded separately; everything else goes up as a single request.
// The tile-key pipeline never consults Plan: a neighbor-expanded tile union
// is deliberately one request, and only the general entry point takes the
// split path.
func Plan(geom orb.Geometry) []orb.Geometry {
	switch g := geom.(type) {
	case orb.MultiPolygon:
		if len(g) > 1 {
			parts := make([]orb.Geometry, 0, len(g))
			for _, part := range g {
				parts = append(parts, part)
			}
			return parts
		}
		if len(g) == 1 && Area(g[0]) <= largeAreaThreshold {
			return []orb.Geometry{g[0]}
		}
		return []orb.Geometry{geom}
	case orb.Polygon:
		if Area(g) > largeAreaThreshold && len(g) > 0 {
			// A single oversized polygon cannot be split along part
			// boundaries; it still goes up whole and relies on
			// simplification. Kept separate so callers can warn.
			return []orb.Geometry{g}
		}
		return []orb.Geometry{g}
	default:
		return []orb.Geometry{geom}
	}
}

// NeedsSplit reports whether Plan would break the footprint into multiple
// requests.
func NeedsSplit(geom orb.Geometry) bool {
	return len(Plan(geom)) > 1
}
