// Package tiling cuts the corridor around a reference line into tiles of
// roughly equal length using cutters perpendicular to the line.
package tiling

import (
	"errors"
	"fmt"

	"github.com/godeepar/geoprep/monitoring"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/twpayne/go-geos"
)

// DefaultQuadSegments is the number of segments per quarter circle used to
// approximate the rounded ends of the corridor.
const DefaultQuadSegments = 16

// ErrInvalidOptions is returned when width or spacing is not positive.
var ErrInvalidOptions = errors.New("width and spacing must be positive")

// Options ...
type Options struct {
	// buffer half-width, in line units
	Width float64

	// distance between cutters along the line
	Spacing float64

	// tiles with area at or below this are discarded, Width*Spacing/2 when zero
	MinArea float64

	QuadSegments int
	Tolerance    float64
}

func (o Options) withDefaults() Options {
	if o.MinArea <= 0 {
		o.MinArea = o.Width * o.Spacing / 2
	}
	if o.QuadSegments <= 0 {
		o.QuadSegments = DefaultQuadSegments
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	return o
}

// Result holds the kept tiles and the bookkeeping of a tiling run.
type Result struct {
	Tiles []orb.Polygon

	Corridor     orb.MultiPolygon
	CorridorArea float64

	// fragments dropped by the area filter
	Discarded     int
	DiscardedArea float64

	Cutters        int
	SkippedCutters int
}

// TileArea ...
func (r *Result) TileArea() float64 {
	total := 0.0
	for _, t := range r.Tiles {
		total += planar.Area(t)
	}
	return total
}

// Tile buffers line by opts.Width and cuts the corridor every opts.Spacing
// units along it. A line no longer than one spacing yields the corridor as a
// single tile; a line of zero length yields no tiles and one discard.
func Tile(line orb.MultiLineString, opts Options) (*Result, error) {
	if opts.Width <= 0 || opts.Spacing <= 0 {
		return nil, ErrInvalidOptions
	}
	opts = opts.withDefaults()

	if planar.Length(line) == 0 {
		monitoring.NonFatal("reference line has zero length, no tiles produced")
		return &Result{Discarded: 1}, nil
	}

	ctx := geos.NewContext()

	merged, err := merge(ctx, line)
	if err != nil {
		return nil, err
	}

	g, err := toGeom(ctx, merged)
	if err != nil {
		return nil, err
	}

	// corridor
	seeds := polygons(g.Buffer(opts.Width, opts.QuadSegments))

	corridor, err := toOrbPolygons(seeds)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Corridor:     orb.MultiPolygon(corridor),
		CorridorArea: planar.Area(orb.MultiPolygon(corridor)),
	}

	// no cut falls strictly inside a line no longer than one spacing
	length := planar.Length(merged)
	if length/opts.Spacing <= 1+sampleEpsilon {
		res.Tiles = corridor
		return res, nil
	}

	n := SampleCount(length, opts.Spacing)

	cutters, skipped := Cutters(merged, SamplePoints(merged, n), 2*opts.Width, opts.Tolerance)
	res.Cutters = len(cutters)
	res.SkippedCutters = skipped

	pieces, err := toOrbPolygons(splitAll(ctx, seeds, cutters))
	if err != nil {
		return nil, err
	}

	for _, p := range pieces {
		area := planar.Area(p)
		if area <= opts.MinArea {
			res.Discarded++
			res.DiscardedArea += area
			continue
		}
		res.Tiles = append(res.Tiles, p)
	}

	return res, nil
}

// Cutters builds the cutter for each sample point in order. Points that do not
// fall on the line within tolerance get no cutter and are counted as skipped.
func Cutters(line orb.MultiLineString, points []orb.Point, halfLength, tolerance float64) ([]orb.LineString, int) {
	cutters := make([]orb.LineString, 0, len(points))
	skipped := 0

	for i, p := range points {
		c, ok := PerpendicularCutter(line, p, halfLength, tolerance)
		if !ok {
			monitoring.NonFatal("no segment within %g of sample %d (%.3f, %.3f), cutter skipped", tolerance, i, p[0], p[1])
			skipped++
			continue
		}
		cutters = append(cutters, c)
	}

	return cutters, skipped
}

// merge unions the input paths and joins those sharing end points.
func merge(ctx *geos.Context, line orb.MultiLineString) (orb.MultiLineString, error) {
	var paths orb.MultiLineString
	for _, path := range line {
		if planar.Length(path) > 0 {
			paths = append(paths, path)
		}
	}

	g, err := toGeom(ctx, paths)
	if err != nil {
		return nil, err
	}

	geom, err := fromGeom(g.UnaryUnion().LineMerge())
	if err != nil {
		return nil, err
	}

	switch v := geom.(type) {
	case orb.LineString:
		return orb.MultiLineString{v}, nil
	case orb.MultiLineString:
		return v, nil
	}

	return nil, fmt.Errorf("[LineMerge] in pkg [tiling] encountered: unexpected %s", geom.GeoJSONType())
}
