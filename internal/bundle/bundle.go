package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"tilefetch/internal/services"
)

// prjWKT pins the grid's coordinate reference system (EPSG:27700, British
// National Grid) for the portal's reprojection step.
const prjWKT = `PROJCS["British_National_Grid",GEOGCS["GCS_OSGB_1936",DATUM["D_OSGB_1936",SPHEROID["Airy_1830",6377563.396,299.3249646]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]],PROJECTION["Transverse_Mercator"],PARAMETER["False_Easting",400000.0],PARAMETER["False_Northing",-100000.0],PARAMETER["Central_Meridian",-2.0],PARAMETER["Scale_Factor",0.9996012717],PARAMETER["Latitude_Of_Origin",49.0],UNIT["Meter",1.0]]`

// sidecarExts lists the shapefile members bundled into the upload archive,
// in the order the portal documentation enumerates them.
var sidecarExts = []string{".shp", ".shx", ".dbf", ".prj"}

// Package writes geom as a shapefile named name inside dir and bundles the
// sidecars that exist into a single zip, returning the archive path. The
// caller owns dir and its cleanup.
func Package(geom orb.Geometry, dir, name string) (string, error) {
	parts := shapeParts(geom)
	if len(parts) == 0 {
		return "", services.Wrap(services.ErrValidation, "bundle", "package", "empty footprint geometry", nil)
	}

	base := filepath.Join(dir, name)
	if err := writeShapefile(base, name, parts); err != nil {
		return "", services.Wrap(services.ErrValidation, "bundle", "package", "write shapefile", err)
	}
	if err := os.WriteFile(base+".prj", []byte(prjWKT), 0o644); err != nil {
		return "", fmt.Errorf("write projection: %w", err)
	}

	zipPath := base + ".zip"
	if err := writeArchive(zipPath, base); err != nil {
		return "", fmt.Errorf("bundle archive: %w", err)
	}
	return zipPath, nil
}

func writeShapefile(base, name string, parts [][]shp.Point) error {
	writer, err := shp.Create(base+".shp", shp.POLYGON)
	if err != nil {
		return fmt.Errorf("create %s.shp: %w", filepath.Base(base), err)
	}

	polygon := shp.Polygon(*shp.NewPolyLine(parts))
	writer.Write(&polygon)

	if err := writer.SetFields([]shp.Field{shp.StringField("TILE_NAME", 32)}); err != nil {
		writer.Close()
		return fmt.Errorf("attribute fields: %w", err)
	}
	writer.WriteAttribute(0, 0, name)
	writer.Close()
	return nil
}

// shapeParts flattens a footprint into shapefile ring parts. Exterior rings
// are wound clockwise and holes counter-clockwise, as the shapefile spec
// requires.
func shapeParts(geom orb.Geometry) [][]shp.Point {
	var parts [][]shp.Point
	appendPolygon := func(polygon orb.Polygon) {
		for i, ring := range polygon {
			if len(ring) < 4 {
				continue
			}
			clockwise := i == 0
			parts = append(parts, ringPoints(ring, clockwise))
		}
	}
	switch g := geom.(type) {
	case orb.Polygon:
		appendPolygon(g)
	case orb.MultiPolygon:
		for _, part := range g {
			appendPolygon(part)
		}
	}
	return parts
}

func ringPoints(ring orb.Ring, clockwise bool) []shp.Point {
	points := make([]shp.Point, len(ring))
	for i, pt := range ring {
		points[i] = shp.Point{X: pt[0], Y: pt[1]}
	}
	if ringIsClockwise(ring) != clockwise {
		for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
			points[i], points[j] = points[j], points[i]
		}
	}
	return points
}

func ringIsClockwise(ring orb.Ring) bool {
	var sum float64
	for i := 0; i+1 < len(ring); i++ {
		sum += (ring[i+1][0] - ring[i][0]) * (ring[i+1][1] + ring[i][1])
	}
	return sum > 0
}

func writeArchive(zipPath, base string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}

	archive := zip.NewWriter(out)
	for _, ext := range sidecarExts {
		member := base + ext
		if _, err := os.Stat(member); err != nil {
			continue
		}
		if err := addMember(archive, member); err != nil {
			_ = archive.Close()
			_ = out.Close()
			return err
		}
	}
	if err := archive.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func addMember(archive *zip.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	entry, err := archive.Create(filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, in)
	return err
}
