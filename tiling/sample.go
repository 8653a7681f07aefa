package tiling

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// sampleEpsilon absorbs the shortfall of a loop length summed from many
// segments, which lands a hair short of its true value.
const sampleEpsilon = 1e-9

// SampleCount is the number of sample points for a line of the given length:
// one every spacing units plus the far end. It is 1 when the line is shorter
// than spacing, and 0 for an empty line.
func SampleCount(length, spacing float64) int {
	if length <= 0 || spacing <= 0 {
		return 0
	}
	return int(math.Floor(length/spacing+sampleEpsilon)) + 1
}

// SamplePoints returns n points at equal arc-length steps along the paths of
// line taken end to end. The first and last points are the two ends.
func SamplePoints(line orb.MultiLineString, n int) []orb.Point {
	first, last, ok := ends(line)
	if !ok || n <= 0 {
		return nil
	}
	if n == 1 {
		return []orb.Point{first}
	}

	total := planar.Length(line)
	points := make([]orb.Point, n)
	points[0] = first
	points[n-1] = last

	for k := 1; k < n-1; k++ {
		points[k] = Interpolate(line, total*float64(k)/float64(n-1))
	}

	return points
}

// Interpolate returns the point dist units along line. Distances outside the
// line clamp to its ends.
func Interpolate(line orb.MultiLineString, dist float64) orb.Point {
	first, last, ok := ends(line)
	if !ok {
		return orb.Point{}
	}
	if dist <= 0 {
		return first
	}

	walked := 0.0
	for _, path := range line {
		for i := 0; i+1 < len(path); i++ {
			a, b := path[i], path[i+1]
			seg := math.Hypot(b[0]-a[0], b[1]-a[1])
			if seg == 0 {
				continue
			}

			if walked+seg >= dist {
				t := (dist - walked) / seg
				return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
			}
			walked += seg
		}
	}

	return last
}

func ends(line orb.MultiLineString) (orb.Point, orb.Point, bool) {
	var first, last orb.Point
	found := false

	for _, path := range line {
		if len(path) == 0 {
			continue
		}
		if !found {
			first = path[0]
			found = true
		}
		last = path[len(path)-1]
	}

	return first, last, found
}
