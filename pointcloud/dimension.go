package pointcloud

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hongping1224/lidario"
)

// Getter reads one numeric dimension from a point.
type Getter func(p lidario.LasPointer) float64

var getters = map[string]Getter{
	"x": func(p lidario.LasPointer) float64 { return p.PointData().X },
	"y": func(p lidario.LasPointer) float64 { return p.PointData().Y },
	"z": func(p lidario.LasPointer) float64 { return p.PointData().Z },
	"intensity": func(p lidario.LasPointer) float64 {
		return float64(p.PointData().Intensity)
	},
	"gps_time": func(p lidario.LasPointer) float64 { return p.GpsTimeData() },
	"classification": func(p lidario.LasPointer) float64 {
		return float64(p.PointData().ClassBitField.Classification())
	},
	"user_data": func(p lidario.LasPointer) float64 {
		return float64(p.PointData().UserData)
	},
	"point_source_id": func(p lidario.LasPointer) float64 {
		return float64(p.PointData().PointSourceID)
	},
	"scan_angle": func(p lidario.LasPointer) float64 {
		return float64(p.PointData().ScanAngle)
	},
	"return_number": func(p lidario.LasPointer) float64 {
		return float64(p.PointData().BitField.ReturnNumber())
	},
	"number_of_returns": func(p lidario.LasPointer) float64 {
		return float64(p.PointData().BitField.NumberOfReturns())
	},
}

// Dimensions lists the supported dimension names.
func Dimensions() []string {
	names := make([]string, 0, len(getters))
	for name := range getters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dimension returns the getter for name as found in point format. Names are
// matched case insensitively.
func Dimension(name string, format byte) (Getter, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	get, ok := getters[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, name)
	}

	if key == "gps_time" && format != 1 && format != 3 {
		return nil, fmt.Errorf("%w: %q in point format %d", ErrMissingDimension, name, format)
	}

	return get, nil
}
