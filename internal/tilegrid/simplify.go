package tilegrid

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// ErrSimplifyExhausted reports that the tolerance cap was reached without
// bringing the footprint under the vertex limit.
var ErrSimplifyExhausted = errors.New("simplification tolerance cap reached")

const (
	// baseTolerance is the first Douglas-Peucker tolerance tried, in index
	// units (metres for EPSG:27700).
	baseTolerance = 10
	// maxTolerance caps the doubling search.
	maxTolerance = 1000
)

// CountVertices sums exterior-ring coordinate counts across all parts of a
// footprint. Interior rings are not counted; the portal's vertex budget is
// driven by outline complexity.
func CountVertices(geom orb.Geometry) int {
	switch g := geom.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return 0
		}
		return len(g[0])
	case orb.MultiPolygon:
		total := 0
		for _, part := range g {
			if len(part) > 0 {
				total += len(part[0])
			}
		}
		return total
	default:
		return 0
	}
}

// SimplifyWithin returns geom unchanged when its vertex count is already
// within limit. Otherwise it runs a bounded doubling search: simplify at the
// base tolerance, re-count, double the tolerance on each failed pass, and
// fail with ErrSimplifyExhausted once the cap is passed. Always doubling
// (never bisecting) keeps the pass count logarithmic and deterministic.
func SimplifyWithin(geom orb.Geometry, limit int) (orb.Geometry, error) {
	if CountVertices(geom) <= limit {
		return geom, nil
	}
	for tolerance := float64(baseTolerance); tolerance <= maxTolerance; tolerance *= 2 {
		simplified := simplify.DouglasPeucker(tolerance).Simplify(orb.Clone(geom))
		if CountVertices(simplified) <= limit {
			return simplified, nil
		}
	}
	return nil, fmt.Errorf("%w: %d vertices still above limit %d at tolerance %d",
		ErrSimplifyExhausted, CountVertices(geom), limit, maxTolerance)
}
