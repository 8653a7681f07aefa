package tiling

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// DefaultTolerance is the distance under which a sample point counts as lying
// on a segment of the reference line.
const DefaultTolerance = 1e-8

// PerpendicularCutter returns the segment centred on p, perpendicular to the
// reference line there, reaching halfLength to each side. With several paths
// the one closest to p is used. The bool is false when no segment of that
// path lies within tolerance of p.
func PerpendicularCutter(line orb.MultiLineString, p orb.Point, halfLength, tolerance float64) (orb.LineString, bool) {
	path := closestPath(line, p)
	if len(path) < 2 {
		return nil, false
	}

	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		if a.Equal(b) {
			continue
		}
		if planar.DistanceFromSegment(a, b, p) >= tolerance {
			continue
		}

		angle := math.Atan2(b[1]-a[1], b[0]-a[0]) + math.Pi/2
		dx := halfLength * math.Cos(angle)
		dy := halfLength * math.Sin(angle)

		return orb.LineString{
			{p[0] - dx, p[1] - dy},
			{p[0] + dx, p[1] + dy},
		}, true
	}

	return nil, false
}

func closestPath(line orb.MultiLineString, p orb.Point) orb.LineString {
	switch len(line) {
	case 0:
		return nil
	case 1:
		return line[0]
	}

	best, bestDist := 0, math.Inf(1)
	for i, path := range line {
		if len(path) == 0 {
			continue
		}
		if d := planar.DistanceFrom(path, p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return line[best]
}
