package tilegrid

import "github.com/paulmach/orb"

// coordEpsilon absorbs coordinate noise in grid indexes digitized at
// millimetre precision or worse.
const coordEpsilon = 1e-6

// Touches reports whether two grid-cell polygons share a boundary edge of
// positive length. Cells meeting only at a corner, or merely having
// overlapping bounding boxes, do not touch.
func Touches(a, b orb.Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}
	ringA := a[0]
	ringB := b[0]
	for i := 0; i+1 < len(ringA); i++ {
		for j := 0; j+1 < len(ringB); j++ {
			if segmentsShareEdge(ringA[i], ringA[i+1], ringB[j], ringB[j+1]) {
				return true
			}
		}
	}
	return false
}

// segmentsShareEdge reports whether segments p1-p2 and q1-q2 are collinear
// and overlap over a positive length.
func segmentsShareEdge(p1, p2, q1, q2 orb.Point) bool {
	if !collinear(p1, p2, q1) || !collinear(p1, p2, q2) {
		return false
	}

	// Project onto the segment's dominant axis and measure interval overlap.
	dx := abs(p2[0] - p1[0])
	dy := abs(p2[1] - p1[1])
	axis := 0
	if dy > dx {
		axis = 1
	}

	pLo, pHi := minMax(p1[axis], p2[axis])
	qLo, qHi := minMax(q1[axis], q2[axis])

	lo := pLo
	if qLo > lo {
		lo = qLo
	}
	hi := pHi
	if qHi < hi {
		hi = qHi
	}
	return hi-lo > coordEpsilon
}

func collinear(a, b, c orb.Point) bool {
	cross := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
	return abs(cross) <= coordEpsilon*(abs(b[0]-a[0])+abs(b[1]-a[1])+1)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func minMax(a, b float64) (float64, float64) {
	if a <= b {
		return a, b
	}
	return b, a
}
