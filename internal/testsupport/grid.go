package testsupport

import (
	"os"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// WriteSquareGrid writes a GeoJSON tile index of axis-aligned square cells.
// names is row-major; cell (row, col) spans [col*size, (col+1)*size] on x
// and [row*size, (row+1)*size] on y, so horizontally and vertically adjacent
// cells share an edge and diagonal cells share only a corner.
func WriteSquareGrid(t testing.TB, path, nameProperty string, names [][]string, size float64) {
	t.Helper()

	fc := geojson.NewFeatureCollection()
	for row, cols := range names {
		for col, name := range cols {
			if name == "" {
				continue
			}
			x0 := float64(col) * size
			y0 := float64(row) * size
			cell := orb.Polygon{{
				{x0, y0},
				{x0 + size, y0},
				{x0 + size, y0 + size},
				{x0, y0 + size},
				{x0, y0},
			}}
			feature := geojson.NewFeature(cell)
			feature.Properties[nameProperty] = name
			fc.Append(feature)
		}
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal grid: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write grid %s: %v", path, err)
	}
}
