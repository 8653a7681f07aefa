package vector

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// shapefiles wind outer rings clockwise and holes counter-clockwise
const shapefileOuter = orb.CW

func readShapefileLines(path string) (orb.MultiLineString, *Source, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("[shp.Open] in pkg [vector] encountered: %w", err)
	}
	defer shape.Close()

	var lines orb.MultiLineString

	for shape.Next() {
		_, s := shape.Shape()
		for _, part := range shapeParts(s) {
			if len(part) < 2 {
				continue
			}
			lines = append(lines, orb.LineString(part))
		}
	}

	if err := shape.Err(); err != nil {
		return nil, nil, fmt.Errorf("[shp.Next] in pkg [vector] encountered: %w", err)
	}

	if len(lines) == 0 {
		return nil, nil, ErrNoLines
	}

	src, err := readSource(path)
	if err != nil {
		return nil, nil, err
	}

	return lines, src, nil
}

func readShapefilePolygons(path string) ([]Feature, *Source, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("[shp.Open] in pkg [vector] encountered: %w", err)
	}
	defer shape.Close()

	fields := shape.Fields()
	fidField := -1
	for k, f := range fields {
		if strings.EqualFold(f.String(), "FID") {
			fidField = k
		}
	}

	var features []Feature

	for shape.Next() {
		n, s := shape.Shape()

		switch s.(type) {
		case *shp.Polygon, *shp.PolygonZ, *shp.PolygonM:
		default:
			continue
		}

		var rings []orb.Ring
		for _, part := range shapeParts(s) {
			rings = append(rings, orb.Ring(part))
		}

		mp := ringsToPolygons(rings, shapefileOuter)
		if len(mp) == 0 {
			continue
		}

		feature := Feature{FID: n, Geometry: mp, Properties: make(map[string]string)}
		for k, f := range fields {
			value := cleanAttribute(shape.ReadAttribute(n, k))
			feature.Properties[f.String()] = value

			if k == fidField {
				if fid, err := strconv.Atoi(value); err == nil {
					feature.FID = fid
				}
			}
		}

		features = append(features, feature)
	}

	if err := shape.Err(); err != nil {
		return nil, nil, fmt.Errorf("[shp.Next] in pkg [vector] encountered: %w", err)
	}

	if len(features) == 0 {
		return nil, nil, ErrNoPolygons
	}

	src, err := readSource(path)
	if err != nil {
		return nil, nil, err
	}

	return features, src, nil
}

func writeShapefilePolygons(path string, polys []orb.Polygon, src *Source) error {
	out, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return fmt.Errorf("[shp.Create] in pkg [vector] encountered: %w", err)
	}
	defer out.Close()

	fields := []shp.Field{
		shp.NumberField("FID", 10),
		shp.FloatField("AREA", 18, 3),
	}
	if err := out.SetFields(fields); err != nil {
		return fmt.Errorf("[SetFields] in pkg [vector] encountered: %w", err)
	}

	for i, poly := range polys {
		var parts [][]shp.Point
		for _, ring := range orientRings(poly, shapefileOuter) {
			part := make([]shp.Point, len(ring))
			for j, p := range ring {
				part[j] = shp.Point{X: p[0], Y: p[1]}
			}
			parts = append(parts, part)
		}

		polygon := shp.Polygon(*shp.NewPolyLine(parts))
		row := int(out.Write(&polygon))

		if err := out.WriteAttribute(row, 0, i); err != nil {
			return fmt.Errorf("[WriteAttribute] in pkg [vector] encountered: %w", err)
		}
		if err := out.WriteAttribute(row, 1, planar.Area(poly)); err != nil {
			return fmt.Errorf("[WriteAttribute] in pkg [vector] encountered: %w", err)
		}
	}

	if src != nil && src.PRJ != "" {
		if err := os.WriteFile(sidecar(path, ".prj"), []byte(src.PRJ), 0644); err != nil {
			return fmt.Errorf("[os.WriteFile] in pkg [vector] encountered: %w", err)
		}
	}

	return nil
}

// shapeParts peels the parts of any multi-part shape into coordinate slices.
func shapeParts(s shp.Shape) [][]orb.Point {
	var parts []int32
	var points []shp.Point

	switch v := s.(type) {
	case *shp.PolyLine:
		parts, points = v.Parts, v.Points
	case *shp.PolyLineZ:
		parts, points = v.Parts, v.Points
	case *shp.PolyLineM:
		parts, points = v.Parts, v.Points
	case *shp.Polygon:
		parts, points = v.Parts, v.Points
	case *shp.PolygonZ:
		parts, points = v.Parts, v.Points
	case *shp.PolygonM:
		parts, points = v.Parts, v.Points
	default:
		return nil
	}

	out := make([][]orb.Point, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || end > int32(len(points)) {
			continue
		}

		coords := make([]orb.Point, 0, end-start)
		for _, p := range points[start:end] {
			coords = append(coords, orb.Point{p.X, p.Y})
		}
		out = append(out, coords)
	}

	return out
}

// readSource picks up the .prj sidecar next to a shapefile.
func readSource(path string) (*Source, error) {
	src := &Source{Path: path}

	f, err := os.Open(sidecar(path, ".prj"))
	if os.IsNotExist(err) {
		return src, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[os.Open] in pkg [vector] encountered: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("[io.ReadAll] in pkg [vector] encountered: %w", err)
	}
	src.PRJ = strings.TrimSpace(string(raw))

	return src, nil
}

func sidecar(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func cleanAttribute(v string) string {
	return strings.TrimSpace(strings.Trim(v, "\x00"))
}
