package tilegrid

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// ErrTileNotFound reports a tile name absent from the index.
var ErrTileNotFound = errors.New("tile not found in grid index")

// SRID is the planar coordinate reference system every index geometry is
// expected in (British National Grid).
const SRID = 27700

// Index maps upper-cased tile names to their grid-cell polygons. Loaded once
// per batch, read-only afterwards.
type Index struct {
	names []string
	tiles map[string]orb.Polygon
}

// Load reads a GeoJSON FeatureCollection and indexes each feature's polygon
// under the value of nameProperty. Features without the property or without
// polygonal geometry are rejected.
func Load(path, nameProperty string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grid index: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse grid index: %w", err)
	}

	index := &Index{tiles: make(map[string]orb.Polygon, len(fc.Features))}
	for i, feature := range fc.Features {
		name := strings.TrimSpace(feature.Properties.MustString(nameProperty, ""))
		if name == "" {
			return nil, fmt.Errorf("grid feature %d: missing property %q", i, nameProperty)
		}
		polygon, err := asPolygon(feature.Geometry)
		if err != nil {
			return nil, fmt.Errorf("grid feature %q: %w", name, err)
		}
		key := strings.ToUpper(name)
		if _, dup := index.tiles[key]; dup {
			return nil, fmt.Errorf("grid feature %q: duplicate tile name", name)
		}
		index.tiles[key] = polygon
		index.names = append(index.names, key)
	}
	if len(index.tiles) == 0 {
		return nil, errors.New("grid index is empty")
	}
	sort.Strings(index.names)
	return index, nil
}

func asPolygon(geom orb.Geometry) (orb.Polygon, error) {
	switch g := geom.(type) {
	case orb.Polygon:
		return g, nil
	case orb.MultiPolygon:
		if len(g) == 1 {
			return g[0], nil
		}
		return nil, fmt.Errorf("multi-part cell with %d parts", len(g))
	default:
		return nil, fmt.Errorf("unsupported geometry %T", geom)
	}
}

// Len returns the number of indexed tiles.
func (x *Index) Len() int { return len(x.tiles) }

// Names returns all tile names in sorted order.
func (x *Index) Names() []string {
	return append([]string(nil), x.names...)
}

// Footprint returns the single-tile polygon for name. Lookup is
// case-insensitive.
func (x *Index) Footprint(name string) (orb.Polygon, error) {
	polygon, ok := x.tiles[normalize(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTileNotFound, name)
	}
	return polygon, nil
}

// Neighbors returns the names of every tile whose boundary shares an edge
// with the named tile, in sorted order.
func (x *Index) Neighbors(name string) ([]string, error) {
	target, err := x.Footprint(name)
	if err != nil {
		return nil, err
	}
	key := normalize(name)
	var neighbors []string
	for _, candidate := range x.names {
		if candidate == key {
			continue
		}
		if Touches(target, x.tiles[candidate]) {
			neighbors = append(neighbors, candidate)
		}
	}
	return neighbors, nil
}

// ExpandToNeighbors unions the target tile with every edge-sharing neighbor.
// Grid cells only meet at boundaries, so the union is represented as a
// multi-polygon of the member cells; its area is the sum of theirs and never
// less than the single-tile footprint. A tile without neighbors yields its
// plain polygon.
func (x *Index) ExpandToNeighbors(name string) (orb.Geometry, error) {
	target, err := x.Footprint(name)
	if err != nil {
		return nil, err
	}
	neighbors, err := x.Neighbors(name)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return target, nil
	}
	union := orb.MultiPolygon{target}
	for _, neighbor := range neighbors {
		union = append(union, x.tiles[neighbor])
	}
	return union, nil
}

// Area returns the planar area of a footprint in index units.
func Area(geom orb.Geometry) float64 {
	area := planar.Area(geom)
	if area < 0 {
		return -area
	}
	return area
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
