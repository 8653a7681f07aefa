package vector

import (
	"fmt"
	"os"
	"strconv"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// GeoJSON winds outer rings counter-clockwise
const geojsonOuter = orb.CCW

func readCollection(path string) (*geojson.FeatureCollection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[os.ReadFile] in pkg [vector] encountered: %w", err)
	}

	collection, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("[UnmarshalFeatureCollection] in pkg [vector] encountered: %w", err)
	}

	return collection, nil
}

func readGeoJSONLines(path string) (orb.MultiLineString, *Source, error) {
	collection, err := readCollection(path)
	if err != nil {
		return nil, nil, err
	}

	var lines orb.MultiLineString
	for _, feature := range collection.Features {
		lines = append(lines, geometryLines(feature.Geometry)...)
	}

	if len(lines) == 0 {
		return nil, nil, ErrNoLines
	}

	return lines, &Source{Path: path, CRS: collection.CRS}, nil
}

// geometryLines flattens every line and ring of g, recursing into collections.
func geometryLines(g *geojson.Geometry) orb.MultiLineString {
	if g == nil {
		return nil
	}

	var paths [][][]float64

	switch g.Type {
	case geojson.GeometryLineString:
		paths = [][][]float64{g.LineString}
	case geojson.GeometryMultiLineString:
		paths = g.MultiLineString
	case geojson.GeometryPolygon:
		paths = g.Polygon
	case geojson.GeometryMultiPolygon:
		for _, polygon := range g.MultiPolygon {
			paths = append(paths, polygon...)
		}
	case geojson.GeometryCollection:
		var out orb.MultiLineString
		for _, child := range g.Geometries {
			out = append(out, geometryLines(child)...)
		}
		return out
	}

	var out orb.MultiLineString
	for _, path := range paths {
		if len(path) < 2 {
			continue
		}
		out = append(out, orb.LineString(toPoints(path)))
	}

	return out
}

func readGeoJSONPolygons(path string) ([]Feature, *Source, error) {
	collection, err := readCollection(path)
	if err != nil {
		return nil, nil, err
	}

	var features []Feature

	for i, feature := range collection.Features {
		if feature.Geometry == nil {
			continue
		}

		var polygons [][][][]float64
		switch feature.Geometry.Type {
		case geojson.GeometryPolygon:
			polygons = [][][][]float64{feature.Geometry.Polygon}
		case geojson.GeometryMultiPolygon:
			polygons = feature.Geometry.MultiPolygon
		default:
			continue
		}

		var mp orb.MultiPolygon
		for _, polygon := range polygons {
			var rings []orb.Ring
			for _, ring := range polygon {
				rings = append(rings, orb.Ring(toPoints(ring)))
			}
			// the first ring is the shell regardless of winding
			if len(rings) == 0 || len(rings[0]) < 4 {
				continue
			}
			mp = append(mp, orientRings(orb.Polygon(rings), geojsonOuter))
		}
		if len(mp) == 0 {
			continue
		}

		features = append(features, Feature{
			FID:        featureID(feature, i),
			Geometry:   mp,
			Properties: stringProperties(feature.Properties),
		})
	}

	if len(features) == 0 {
		return nil, nil, ErrNoPolygons
	}

	return features, &Source{Path: path, CRS: collection.CRS}, nil
}

// featureID looks for an integer FID property, then the feature id, and
// falls back to the position in the collection.
func featureID(feature *geojson.Feature, index int) int {
	for _, key := range []string{"FID", "fid", "id"} {
		if v, ok := feature.Properties[key]; ok {
			if fid, ok := asInt(v); ok {
				return fid
			}
		}
	}

	if fid, ok := asInt(feature.ID); ok {
		return fid
	}

	return index
}

func asInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), t == float64(int(t))
	case int:
		return t, true
	case string:
		i, err := strconv.Atoi(t)
		return i, err == nil
	}
	return 0, false
}

func stringProperties(props map[string]interface{}) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func writeGeoJSONPolygons(path string, polys []orb.Polygon, src *Source) error {
	collection := geojson.NewFeatureCollection()

	if src != nil && src.CRS != nil {
		collection.CRS = src.CRS
	}

	for i, poly := range polys {
		var coords [][][]float64
		for _, ring := range orientRings(poly, geojsonOuter) {
			r := make([][]float64, len(ring))
			for j, p := range ring {
				r[j] = []float64{p[0], p[1]}
			}
			coords = append(coords, r)
		}

		feature := geojson.NewPolygonFeature(coords)
		feature.SetProperty("FID", i)
		feature.SetProperty("AREA", planar.Area(poly))
		collection.AddFeature(feature)
	}

	raw, err := collection.MarshalJSON()
	if err != nil {
		return fmt.Errorf("[MarshalJSON] in pkg [vector] encountered: %w", err)
	}

	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("[os.WriteFile] in pkg [vector] encountered: %w", err)
	}

	return nil
}

func toPoints(coords [][]float64) []orb.Point {
	points := make([]orb.Point, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		points = append(points, orb.Point{c[0], c[1]})
	}
	return points
}
