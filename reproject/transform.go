package reproject

import (
	"fmt"

	"github.com/ctessum/geom/proj"
	"github.com/paulmach/orb"
)

// Transform maps one coordinate from the source to the destination CRS.
type Transform func(x, y float64) (float64, float64, error)

// Identity ...
func Identity(x, y float64) (float64, float64, error) {
	return x, y, nil
}

// NewTransform builds the transform from src to dst. EPSG:3857 <-> EPSG:4326
// runs through the spherical Mercator of go.geo; any other pair goes through
// proj, chaining via EPSG:4326 when one side is EPSG:3857.
func NewTransform(src, dst string) (Transform, error) {
	src, dst = Normalize(src), Normalize(dst)

	switch {
	case src == dst:
		return Identity, nil
	case src == WGS84 && dst == WebMercator:
		return func(x, y float64) (float64, float64, error) {
			px, py := mercatorProject(x, y)
			return px, py, nil
		}, nil
	case src == WebMercator && dst == WGS84:
		return func(x, y float64) (float64, float64, error) {
			px, py := mercatorInverse(x, y)
			return px, py, nil
		}, nil
	case src == WebMercator:
		toDst, err := NewTransform(WGS84, dst)
		if err != nil {
			return nil, err
		}
		return chain(mustTransform(WebMercator, WGS84), toDst), nil
	case dst == WebMercator:
		toWGS84, err := NewTransform(src, WGS84)
		if err != nil {
			return nil, err
		}
		return chain(toWGS84, mustTransform(WGS84, WebMercator)), nil
	}

	srcDef, err := Resolve(src)
	if err != nil {
		return nil, err
	}
	dstDef, err := Resolve(dst)
	if err != nil {
		return nil, err
	}

	srcSR, err := proj.Parse(srcDef)
	if err != nil {
		return nil, fmt.Errorf("[proj.Parse] in pkg [reproject] encountered: %w", err)
	}
	dstSR, err := proj.Parse(dstDef)
	if err != nil {
		return nil, fmt.Errorf("[proj.Parse] in pkg [reproject] encountered: %w", err)
	}

	ct, err := srcSR.NewTransform(dstSR)
	if err != nil {
		return nil, fmt.Errorf("[NewTransform] in pkg [reproject] encountered: %w", err)
	}

	return Transform(ct), nil
}

func mustTransform(src, dst string) Transform {
	t, err := NewTransform(src, dst)
	if err != nil {
		panic(err)
	}
	return t
}

func chain(first, second Transform) Transform {
	return func(x, y float64) (float64, float64, error) {
		x, y, err := first(x, y)
		if err != nil {
			return x, y, err
		}
		return second(x, y)
	}
}

// Bound transforms the four corners of b and returns their extent.
func (t Transform) Bound(b orb.Bound) (orb.Bound, error) {
	corners := []orb.Point{
		b.Min,
		{b.Max[0], b.Min[1]},
		b.Max,
		{b.Min[0], b.Max[1]},
	}

	var out orb.Bound
	for i, c := range corners {
		x, y, err := t(c[0], c[1])
		if err != nil {
			return orb.Bound{}, fmt.Errorf("[Transform] in pkg [reproject] encountered: %w", err)
		}

		p := orb.Point{x, y}
		if i == 0 {
			out = p.Bound()
			continue
		}
		out = out.Extend(p)
	}

	return out, nil
}
