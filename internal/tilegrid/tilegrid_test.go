package tilegrid_test

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"

	"tilefetch/internal/testsupport"
	"tilefetch/internal/tilegrid"
)

const cellSize = 1000.0

func loadTestGrid(t *testing.T) *tilegrid.Index {
	t.Helper()

	path := filepath.Join(t.TempDir(), "grid.geojson")
	testsupport.WriteSquareGrid(t, path, "TILE_NAME", [][]string{
		{"ST57SE", "ST67SW", "ST67SE"},
		{"ST58NE", "ST68NW", "ST68NE"},
		{"ST59SE", "ST69SW", "ST69SE"},
	}, cellSize)

	index, err := tilegrid.Load(path, "TILE_NAME")
	if err != nil {
		t.Fatalf("load grid: %v", err)
	}
	return index
}

func TestLoadIndexesAllTiles(t *testing.T) {
	index := loadTestGrid(t)
	if index.Len() != 9 {
		t.Fatalf("expected 9 tiles, got %d", index.Len())
	}
}

func TestFootprintIsCaseInsensitive(t *testing.T) {
	index := loadTestGrid(t)

	for _, name := range []string{"ST68NW", "st68nw", " St68Nw "} {
		footprint, err := index.Footprint(name)
		if err != nil {
			t.Fatalf("footprint %q: %v", name, err)
		}
		if got := tilegrid.Area(footprint); math.Abs(got-cellSize*cellSize) > 1 {
			t.Fatalf("footprint %q area = %f, want %f", name, got, cellSize*cellSize)
		}
	}
}

func TestFootprintNotFound(t *testing.T) {
	index := loadTestGrid(t)

	_, err := index.Footprint("NZ99NE")
	if !errors.Is(err, tilegrid.ErrTileNotFound) {
		t.Fatalf("expected ErrTileNotFound, got %v", err)
	}
}

func TestNeighborsShareEdgesNotCorners(t *testing.T) {
	index := loadTestGrid(t)

	center, err := index.Neighbors("ST68NW")
	if err != nil {
		t.Fatal(err)
	}
	// The four edge-sharing cells; diagonal cells touch only at a corner.
	want := map[string]bool{"ST58NE": true, "ST67SW": true, "ST68NE": true, "ST69SW": true}
	if len(center) != len(want) {
		t.Fatalf("center neighbors = %v, want %v", center, want)
	}
	for _, name := range center {
		if !want[name] {
			t.Fatalf("unexpected neighbor %s", name)
		}
	}

	corner, err := index.Neighbors("ST57SE")
	if err != nil {
		t.Fatal(err)
	}
	if len(corner) != 2 {
		t.Fatalf("corner neighbors = %v, want 2", corner)
	}
}

func TestExpandToNeighborsAreaIsSumOfCells(t *testing.T) {
	index := loadTestGrid(t)

	single, err := index.Footprint("ST68NW")
	if err != nil {
		t.Fatal(err)
	}
	expanded, err := index.ExpandToNeighbors("ST68NW")
	if err != nil {
		t.Fatal(err)
	}

	singleArea := tilegrid.Area(single)
	expandedArea := tilegrid.Area(expanded)
	if expandedArea < singleArea {
		t.Fatalf("expanded area %f smaller than single cell %f", expandedArea, singleArea)
	}
	if want := 5 * singleArea; math.Abs(expandedArea-want) > 1 {
		t.Fatalf("expanded area = %f, want %f", expandedArea, want)
	}
}

func TestExpandToNeighborsWithoutNeighbors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.geojson")
	testsupport.WriteSquareGrid(t, path, "TILE_NAME", [][]string{{"SV00SW"}}, cellSize)
	index, err := tilegrid.Load(path, "TILE_NAME")
	if err != nil {
		t.Fatal(err)
	}

	expanded, err := index.ExpandToNeighbors("SV00SW")
	if err != nil {
		t.Fatal(err)
	}
	footprint, err := index.Footprint("SV00SW")
	if err != nil {
		t.Fatal(err)
	}
	if tilegrid.Area(expanded) != tilegrid.Area(footprint) {
		t.Fatalf("isolated expansion should equal the cell footprint")
	}
}

func TestCountVerticesIgnoresHoles(t *testing.T) {
	withHole := orb.Polygon{
		{{0, 0}, {100, 0}, {100, 100}, {0, 100}, {0, 0}},
		{{40, 40}, {60, 40}, {60, 60}, {40, 60}, {40, 40}},
	}
	if got := tilegrid.CountVertices(withHole); got != 5 {
		t.Fatalf("CountVertices = %d, want 5", got)
	}
}

func TestSimplifyWithinIsNoopUnderLimit(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {1000, 0}, {1000, 1000}, {0, 1000}, {0, 0}}}

	got, err := tilegrid.SimplifyWithin(square, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if tilegrid.CountVertices(got) != tilegrid.CountVertices(square) {
		t.Fatalf("no-op simplification changed the vertex count")
	}
	if !got.(orb.Polygon)[0].Equal(square[0]) {
		t.Fatalf("no-op simplification changed the geometry")
	}
}

func TestSimplifyWithinReducesDenseOutline(t *testing.T) {
	// A large square traced with one vertex per metre along each edge. All
	// the intermediate points are collinear so the first tolerance pass
	// removes them.
	ring := orb.Ring{}
	const side = 10000.0
	const step = 100.0
	for x := 0.0; x < side; x += step {
		ring = append(ring, orb.Point{x, 0})
	}
	for y := 0.0; y < side; y += step {
		ring = append(ring, orb.Point{side, y})
	}
	for x := side; x > 0; x -= step {
		ring = append(ring, orb.Point{x, side})
	}
	for y := side; y > 0; y -= step {
		ring = append(ring, orb.Point{0, y})
	}
	ring = append(ring, ring[0])
	dense := orb.Polygon{ring}

	got, err := tilegrid.SimplifyWithin(dense, 10)
	if err != nil {
		t.Fatal(err)
	}
	if count := tilegrid.CountVertices(got); count > 10 {
		t.Fatalf("simplified outline still has %d vertices", count)
	}
}

func TestSimplifyWithinExhaustsOnJaggedOutline(t *testing.T) {
	// A comb whose teeth are far deeper than the tolerance cap; no pass can
	// remove them.
	ring := orb.Ring{}
	for i := 0; i < 20; i++ {
		x := float64(i) * 2000
		ring = append(ring, orb.Point{x, 0}, orb.Point{x + 1000, 5000})
	}
	ring = append(ring, orb.Point{40000, -5000}, orb.Point{0, -5000}, ring[0])
	jagged := orb.Polygon{ring}

	_, err := tilegrid.SimplifyWithin(jagged, 4)
	if !errors.Is(err, tilegrid.ErrSimplifyExhausted) {
		t.Fatalf("expected ErrSimplifyExhausted, got %v", err)
	}
}

func TestPlanSplitsMultiPartFootprints(t *testing.T) {
	multi := orb.MultiPolygon{
		{{{0, 0}, {1000, 0}, {1000, 1000}, {0, 1000}, {0, 0}}},
		{{{5000, 0}, {6000, 0}, {6000, 1000}, {5000, 1000}, {5000, 0}}},
	}
	if got := len(tilegrid.Plan(multi)); got != 2 {
		t.Fatalf("Plan split into %d parts, want 2", got)
	}
	if !tilegrid.NeedsSplit(multi) {
		t.Fatalf("expected multi-part footprint to need a split")
	}

	single := orb.Polygon{{{0, 0}, {1000, 0}, {1000, 1000}, {0, 1000}, {0, 0}}}
	if got := len(tilegrid.Plan(single)); got != 1 {
		t.Fatalf("Plan split a small footprint into %d parts", got)
	}
	if tilegrid.NeedsSplit(single) {
		t.Fatalf("small footprint should not need a split")
	}
}
