// Package reproject resolves coordinate reference systems by EPSG code or
// proj4 definition and builds point transforms between them.
package reproject

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ErrUnknownCRS is returned for EPSG codes missing from the registry.
var ErrUnknownCRS = errors.New("unknown coordinate reference system")

const (
	// WGS84 ...
	WGS84 = "EPSG:4326"
	// WebMercator ...
	WebMercator = "EPSG:3857"
)

var registryMu sync.RWMutex

// registry of the proj4 definitions the utilities are used with
var registry = map[int]string{
	4326: "+proj=longlat +datum=WGS84 +no_defs",
	3857: "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs",
	// Estonian Coordinate System of 1997
	3301: "+proj=lcc +lat_1=59.33333333333334 +lat_2=58 +lat_0=57.51755393055556 +lon_0=24 +x_0=500000 +y_0=6375000 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
}

func init() {
	// ETRS89 / UTM and WGS 84 / UTM, zones 32 to 35
	for zone := 32; zone <= 35; zone++ {
		registry[25800+zone] = fmt.Sprintf("+proj=utm +zone=%d +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs", zone)
		registry[32600+zone] = fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", zone)
	}
}

// Register adds or replaces the proj4 definition of an EPSG code.
func Register(code int, proj4 string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[code] = proj4
}

// RegisterAll registers every code of defs, as read from a config "crs" map.
func RegisterAll(defs map[int]string) {
	for code, def := range defs {
		Register(code, strings.TrimSpace(def))
	}
}

// Resolve returns the proj4 definition for "EPSG:<code>", a bare code, or a
// definition that is already proj4.
func Resolve(srs string) (string, error) {
	srs = strings.TrimSpace(srs)
	if strings.HasPrefix(srs, "+") {
		return srs, nil
	}

	code, err := Code(srs)
	if err != nil {
		return "", err
	}

	registryMu.RLock()
	def, ok := registry[code]
	registryMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: EPSG:%d", ErrUnknownCRS, code)
	}
	return def, nil
}

// Code extracts the EPSG code of "EPSG:<code>" or "<code>".
func Code(srs string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(srs))
	s = strings.TrimPrefix(s, "EPSG:")

	code, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCRS, srs)
	}
	return code, nil
}

// Normalize returns "EPSG:<code>" for EPSG inputs and the trimmed input otherwise.
func Normalize(srs string) string {
	if code, err := Code(srs); err == nil {
		return fmt.Sprintf("EPSG:%d", code)
	}
	return strings.TrimSpace(srs)
}
