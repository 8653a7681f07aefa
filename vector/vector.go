// Package vector reads reference lines and tile polygons from shapefiles or
// GeoJSON and writes tile polygons back out, carrying the input CRS along.
package vector

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var (
	// ErrNoLines is returned when an input holds no line geometry.
	ErrNoLines = errors.New("no line features to parse")

	// ErrNoPolygons is returned when an input holds no polygon geometry.
	ErrNoPolygons = errors.New("no polygon features to parse")

	// ErrUnsupportedFormat is returned for paths that are neither .shp nor GeoJSON.
	ErrUnsupportedFormat = errors.New("unsupported vector format")
)

// Source describes where geometry came from so outputs can carry the same CRS.
type Source struct {
	Path string

	// WKT of the shapefile .prj sidecar, empty when there is none
	PRJ string

	// "crs" member of a GeoJSON input
	CRS map[string]interface{}
}

// Feature is one tile polygon with its identifier and attributes.
type Feature struct {
	FID        int
	Geometry   orb.MultiPolygon
	Properties map[string]string
}

// Bound ...
func (f Feature) Bound() orb.Bound {
	return f.Geometry.Bound()
}

// Area ...
func (f Feature) Area() float64 {
	return planar.Area(f.Geometry)
}

type format int

const (
	formatUnknown format = iota
	formatShapefile
	formatGeoJSON
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return formatShapefile
	case ".geojson", ".json":
		return formatGeoJSON
	}
	return formatUnknown
}

// ReadLines returns every line of the input as one MultiLineString. Polygon
// inputs contribute their rings as closed lines.
func ReadLines(path string) (orb.MultiLineString, *Source, error) {
	switch formatOf(path) {
	case formatShapefile:
		return readShapefileLines(path)
	case formatGeoJSON:
		return readGeoJSONLines(path)
	}
	return nil, nil, ErrUnsupportedFormat
}

// ReadPolygons returns the polygon features of the input. The FID comes from
// an "FID" attribute when present and the record index otherwise.
func ReadPolygons(path string) ([]Feature, *Source, error) {
	switch formatOf(path) {
	case formatShapefile:
		return readShapefilePolygons(path)
	case formatGeoJSON:
		return readGeoJSONPolygons(path)
	}
	return nil, nil, ErrUnsupportedFormat
}

// WritePolygons writes one feature per polygon with FID and AREA attributes.
// src may be nil; when it carries a CRS the output is tagged with it.
func WritePolygons(path string, polys []orb.Polygon, src *Source) error {
	switch formatOf(path) {
	case formatShapefile:
		return writeShapefilePolygons(path, polys, src)
	case formatGeoJSON:
		return writeGeoJSONPolygons(path, polys, src)
	}
	return ErrUnsupportedFormat
}

// orientRings returns a copy of poly with the exterior ring wound to outer
// and the holes to the opposite direction.
func orientRings(poly orb.Polygon, outer orb.Orientation) orb.Polygon {
	out := make(orb.Polygon, 0, len(poly))
	for i, ring := range poly {
		r := append(orb.Ring(nil), ring...)

		// close the ring if the source left it open
		if len(r) > 0 && !r.Closed() {
			r = append(r, r[0])
		}

		want := outer
		if i > 0 {
			want = -outer
		}
		if o := r.Orientation(); o != 0 && o != want {
			r.Reverse()
		}
		out = append(out, r)
	}
	return out
}

// ringsToPolygons assembles rings into polygons: rings wound as outer start a
// new polygon, the others become holes of the polygon that contains them.
func ringsToPolygons(rings []orb.Ring, outer orb.Orientation) orb.MultiPolygon {
	var mp orb.MultiPolygon
	var holes []orb.Ring

	for _, r := range rings {
		if len(r) < 4 {
			continue
		}
		if r.Orientation() == -outer {
			holes = append(holes, r)
			continue
		}
		mp = append(mp, orb.Polygon{r})
	}

	for _, h := range holes {
		placed := false
		for i := range mp {
			if planar.RingContains(mp[i][0], h[0]) {
				mp[i] = append(mp[i], h)
				placed = true
				break
			}
		}

		// a lone hole is really an outer ring with the wrong winding
		if !placed {
			r := append(orb.Ring(nil), h...)
			r.Reverse()
			mp = append(mp, orb.Polygon{r})
		}
	}

	return mp
}
