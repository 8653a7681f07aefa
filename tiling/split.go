package tiling

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/twpayne/go-geos"
)

func toGeom(ctx *geos.Context, g orb.Geometry) (*geos.Geom, error) {
	raw, err := wkb.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("[wkb.Marshal] in pkg [tiling] encountered: %w", err)
	}

	geom, err := ctx.NewGeomFromWKB(raw)
	if err != nil {
		return nil, fmt.Errorf("[NewGeomFromWKB] in pkg [tiling] encountered: %w", err)
	}

	return geom, nil
}

func fromGeom(g *geos.Geom) (orb.Geometry, error) {
	geom, err := wkb.Unmarshal(g.ToWKB())
	if err != nil {
		return nil, fmt.Errorf("[wkb.Unmarshal] in pkg [tiling] encountered: %w", err)
	}
	return geom, nil
}

// polygons flattens g into its polygon members, dropping anything else.
func polygons(g *geos.Geom) []*geos.Geom {
	if g == nil || g.IsEmpty() {
		return nil
	}

	switch g.TypeID() {
	case geos.TypeIDPolygon:
		return []*geos.Geom{g}
	case geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		var out []*geos.Geom
		for i := 0; i < g.NumGeometries(); i++ {
			out = append(out, polygons(g.Geometry(i).Clone())...)
		}
		return out
	}

	return nil
}

func toOrbPolygons(geoms []*geos.Geom) ([]orb.Polygon, error) {
	var out []orb.Polygon

	for _, g := range geoms {
		geom, err := fromGeom(g)
		if err != nil {
			return nil, err
		}

		switch v := geom.(type) {
		case orb.Polygon:
			out = append(out, v)
		case orb.MultiPolygon:
			out = append(out, v...)
		}
	}

	return out, nil
}

// candidate is a polygon waiting for the next cutter. A cutter that crosses a
// ring-shaped polygon once leaves it whole; it stays pending and is noded
// again together with the cutters that follow.
type candidate struct {
	poly    *geos.Geom
	pending []*geos.Geom
}

// splitPolygon cuts poly along lines. The boundary is noded against the
// lines, the linework polygonized, and only faces inside poly are kept, so
// holes stay holes. split is false when poly comes back in one piece.
func splitPolygon(ctx *geos.Context, poly *geos.Geom, lines []*geos.Geom) (pieces []*geos.Geom, split bool) {
	noded := poly.Boundary()
	for _, line := range lines {
		noded = noded.Union(line)
	}
	faces := polygons(ctx.Polygonize([]*geos.Geom{noded}))

	for _, face := range faces {
		if poly.Contains(face.PointOnSurface()) {
			pieces = append(pieces, face)
		}
	}

	if len(pieces) < 2 {
		return []*geos.Geom{poly}, false
	}

	return pieces, true
}

func splitAll(ctx *geos.Context, seeds []*geos.Geom, cutters []orb.LineString) []*geos.Geom {
	candidates := make([]candidate, len(seeds))
	for i, seed := range seeds {
		candidates[i] = candidate{poly: seed}
	}

	for _, c := range cutters {
		cutter := ctx.NewLineString([][]float64{{c[0][0], c[0][1]}, {c[len(c)-1][0], c[len(c)-1][1]}})

		next := make([]candidate, 0, len(candidates)+1)
		for _, cand := range candidates {
			if !cand.poly.Intersects(cutter) {
				next = append(next, cand)
				continue
			}

			lines := append(cand.pending[:len(cand.pending):len(cand.pending)], cutter)
			pieces, split := splitPolygon(ctx, cand.poly, lines)
			if !split {
				next = append(next, candidate{poly: cand.poly, pending: lines})
				continue
			}

			for _, piece := range pieces {
				next = append(next, candidate{poly: piece})
			}
		}
		candidates = next
	}

	out := make([]*geos.Geom, len(candidates))
	for i, cand := range candidates {
		out[i] = cand.poly
	}
	return out
}

// Split cuts the polygons of area with each cutter in turn and returns the
// resulting pieces. A cutter that leaves a polygon whole, such as a single
// crossing of a ring, is noded again with the cutters after it. Nothing is
// filtered.
func Split(area orb.MultiPolygon, cutters []orb.LineString) ([]orb.Polygon, error) {
	ctx := geos.NewContext()

	var seeds []*geos.Geom
	for _, poly := range area {
		g, err := toGeom(ctx, poly)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, g)
	}

	valid := cutters[:0:0]
	for _, c := range cutters {
		if len(c) >= 2 {
			valid = append(valid, c)
		}
	}

	return toOrbPolygons(splitAll(ctx, seeds, valid))
}
