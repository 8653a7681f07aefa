// Package raster reprojects DEM GeoTIFFs. The warp itself is delegated to a
// Driver so the planning around it (extents, output bounds, warp options)
// stays free of cgo.
package raster

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/reproject"
	"github.com/paulmach/orb"
)

// GeoTransform is the affine pixel to CRS transform of a raster, in GDAL
// order: origin x, pixel width, row rotation, origin y, column rotation,
// pixel height (negative for north-up).
type GeoTransform [6]float64

// Extent returns the area covered by a north-up raster of w by h pixels.
func (g GeoTransform) Extent(w, h int) orb.Bound {
	x0, y0 := g[0], g[3]
	x1 := g[0] + g[1]*float64(w)
	y1 := g[3] + g[5]*float64(h)

	return orb.Bound{
		Min: orb.Point{math.Min(x0, x1), math.Min(y0, y1)},
		Max: orb.Point{math.Max(x0, x1), math.Max(y0, y1)},
	}
}

// OutputBounds takes the lower-left and upper-right corners of src through
// tr and returns the extent they span.
func OutputBounds(src orb.Bound, tr reproject.Transform) (orb.Bound, error) {
	minX, minY, err := tr(src.Min[0], src.Min[1])
	if err != nil {
		return orb.Bound{}, fmt.Errorf("[Transform] in pkg [raster] encountered: %w", err)
	}

	maxX, maxY, err := tr(src.Max[0], src.Max[1])
	if err != nil {
		return orb.Bound{}, fmt.Errorf("[Transform] in pkg [raster] encountered: %w", err)
	}

	return orb.Bound{
		Min: orb.Point{math.Min(minX, maxX), math.Min(minY, maxY)},
		Max: orb.Point{math.Max(minX, maxX), math.Max(minY, maxY)},
	}, nil
}

// WarpOptions ...
type WarpOptions struct {
	SrcSRS          string
	DstSRS          string
	Bounds          orb.Bound
	Resampling      string
	SrcNodata       float64
	DstNodata       float64
	OutputType      string
	CreationOptions []string
}

// Args renders the options as gdalwarp arguments.
func (o WarpOptions) Args() []string {
	args := []string{"-of", "GTiff"}

	if o.SrcSRS != "" {
		args = append(args, "-s_srs", o.SrcSRS)
	}
	args = append(args, "-t_srs", o.DstSRS)

	if !o.Bounds.IsZero() && !o.Bounds.IsEmpty() {
		args = append(args, "-te",
			formatFloat(o.Bounds.Min[0]), formatFloat(o.Bounds.Min[1]),
			formatFloat(o.Bounds.Max[0]), formatFloat(o.Bounds.Max[1]),
		)
	}

	args = append(args,
		"-r", o.Resampling,
		"-srcnodata", formatFloat(o.SrcNodata),
		"-dstnodata", formatFloat(o.DstNodata),
		"-ot", o.OutputType,
	)

	for _, co := range o.CreationOptions {
		args = append(args, "-co", co)
	}

	return args
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func warpOptions(cfg config.ReprojectDEM, bounds orb.Bound) WarpOptions {
	return WarpOptions{
		SrcSRS:          srsArg(cfg.SrcSRS, cfg.CRS),
		DstSRS:          srsArg(cfg.DstSRS, cfg.CRS),
		Bounds:          bounds,
		Resampling:      cfg.Resampling,
		SrcNodata:       cfg.SrcNodata,
		DstNodata:       cfg.DstNodata,
		OutputType:      cfg.OutputType,
		CreationOptions: cfg.CreationOptions,
	}
}

// srsArg hands GDAL the proj4 definition of codes it may not know.
func srsArg(srs string, defs map[int]string) string {
	if code, err := reproject.Code(srs); err == nil {
		if def, ok := defs[code]; ok {
			return strings.TrimSpace(def)
		}
	}
	return srs
}
