package config

import (
	"math"
	"sort"
	"strings"
)

// Tile configures tile boundary generation along a polyline.
type Tile struct {
	Input   string `json:"input" yaml:"input"`
	Output  string `json:"output" yaml:"output"`
	Preview string `json:"preview" yaml:"preview"`

	// tile width across the line and approximate tile length along it,
	// both in the linear units of the input CRS
	Width   float64 `json:"width" yaml:"width"`
	Spacing float64 `json:"spacing" yaml:"spacing"`

	// zero means Width*Spacing/2
	MinArea float64 `json:"min_area" yaml:"min_area"`

	QuadSegments int     `json:"quad_segments" yaml:"quad_segments"`
	Tolerance    float64 `json:"tolerance" yaml:"tolerance"`
}

// DefaultTile ...
func DefaultTile() Tile {
	return Tile{
		Input:        "polyline.shp",
		Output:       "tiled_multipolygons.shp",
		Width:        60,
		Spacing:      600,
		QuadSegments: 16,
		Tolerance:    1e-8,
	}
}

// Validate ...
func (c Tile) Validate() error {
	if err := requireDirs(c.Input, c.Output); err != nil {
		return err
	}
	if c.Width <= 0 {
		return invalid("width must be positive, got %v", c.Width)
	}
	if c.Spacing <= 0 {
		return invalid("spacing must be positive, got %v", c.Spacing)
	}
	if c.MinArea < 0 {
		return invalid("min_area must not be negative, got %v", c.MinArea)
	}
	if c.QuadSegments < 1 {
		return invalid("quad_segments must be at least 1, got %d", c.QuadSegments)
	}
	if c.Tolerance <= 0 {
		return invalid("tolerance must be positive, got %v", c.Tolerance)
	}
	return nil
}

// Crop configures cutting point clouds to tile polygons.
type Crop struct {
	Input  string `json:"input" yaml:"input"`
	Tiles  string `json:"tiles" yaml:"tiles"`
	Output string `json:"output" yaml:"output"`
	Scale  XYZ    `json:"scale" yaml:"scale"`
	Offset XYZ    `json:"offset" yaml:"offset"`

	// CRS of the tiles and point clouds; when set the manifest carries S2 tokens
	SRS      string `json:"srs" yaml:"srs"`
	Manifest string `json:"manifest" yaml:"manifest"`

	// proj4 definitions of EPSG codes missing from the built-in registry
	CRS map[int]string `json:"crs" yaml:"crs"`
}

// DefaultCrop ...
func DefaultCrop() Crop {
	return Crop{
		Input:    "laz_tiles",
		Tiles:    "tiled_multipolygons.shp",
		Output:   "laz_cropped",
		Scale:    XYZ{X: 0.001, Y: 0.001, Z: 0.001},
		Offset:   XYZ{X: 400000, Y: 4560000, Z: 0},
		Manifest: "tiles.json",
	}
}

// Validate ...
func (c Crop) Validate() error {
	if err := requireDirs(c.Input, c.Output); err != nil {
		return err
	}
	if c.Tiles == "" {
		return invalid("tiles is required")
	}
	if err := validCRS(c.CRS); err != nil {
		return err
	}
	return validScale(c.Scale)
}

// Shift configures a constant xyz shift of point clouds.
type Shift struct {
	Input   string `json:"input" yaml:"input"`
	Output  string `json:"output" yaml:"output"`
	Shift   XYZ    `json:"shift" yaml:"shift"`
	Workers int    `json:"workers" yaml:"workers"`
}

// DefaultShift ...
func DefaultShift() Shift {
	return Shift{
		Input:   "laz",
		Output:  "laz_shifted",
		Shift:   XYZ{X: -0.1, Y: -0.8, Z: 1.7},
		Workers: 1,
	}
}

// Validate ...
func (c Shift) Validate() error {
	return requireDirs(c.Input, c.Output)
}

// Correct configures timestamp interpolated corrections. The i-th shift of
// every axis applies at Timestamps[i].
type Correct struct {
	Input      string    `json:"input" yaml:"input"`
	Output     string    `json:"output" yaml:"output"`
	Timestamps []float64 `json:"timestamps" yaml:"timestamps"`
	XShifts    []float64 `json:"x_shifts" yaml:"x_shifts"`
	YShifts    []float64 `json:"y_shifts" yaml:"y_shifts"`
	ZShifts    []float64 `json:"z_shifts" yaml:"z_shifts"`
	Workers    int       `json:"workers" yaml:"workers"`
}

// DefaultCorrect ...
func DefaultCorrect() Correct {
	return Correct{
		Input:      "laz_in",
		Output:     "laz_out",
		Timestamps: []float64{1706468131, 1706468603},
		XShifts:    []float64{0.40, 0.38},
		YShifts:    []float64{0.32, 3.17},
		ZShifts:    []float64{-0.75, -2.15},
		Workers:    1,
	}
}

// Validate ...
func (c Correct) Validate() error {
	if err := requireDirs(c.Input, c.Output); err != nil {
		return err
	}
	n := len(c.Timestamps)
	if n < 2 {
		return invalid("at least 2 timestamps are required, got %d", n)
	}
	if len(c.XShifts) != n || len(c.YShifts) != n || len(c.ZShifts) != n {
		return invalid("every shift list needs %d values", n)
	}
	if !sort.Float64sAreSorted(c.Timestamps) {
		return invalid("timestamps must be increasing")
	}
	for i := 1; i < n; i++ {
		if c.Timestamps[i] == c.Timestamps[i-1] {
			return invalid("duplicate timestamp %v", c.Timestamps[i])
		}
	}
	return nil
}

// Filter configures keeping points by the range of one dimension.
type Filter struct {
	Input     string  `json:"input" yaml:"input"`
	Output    string  `json:"output" yaml:"output"`
	Dimension string  `json:"dimension" yaml:"dimension"`
	Min       float64 `json:"min" yaml:"min"`
	Max       float64 `json:"max" yaml:"max"`
	Workers   int     `json:"workers" yaml:"workers"`
}

// DefaultFilter ...
func DefaultFilter() Filter {
	return Filter{
		Input:     "laz_original",
		Output:    "laz_filtered",
		Dimension: "intensity",
		Min:       2.5,
		Max:       100,
		Workers:   1,
	}
}

// Validate ...
func (c Filter) Validate() error {
	if err := requireDirs(c.Input, c.Output); err != nil {
		return err
	}
	if c.Dimension == "" {
		return invalid("dimension is required")
	}
	if math.IsNaN(c.Min) || math.IsNaN(c.Max) || c.Min > c.Max {
		return invalid("min (%v) must not exceed max (%v)", c.Min, c.Max)
	}
	return nil
}

// ReprojectCloud configures point cloud reprojection.
type ReprojectCloud struct {
	Input   string `json:"input" yaml:"input"`
	Output  string `json:"output" yaml:"output"`
	SrcSRS  string `json:"src_srs" yaml:"src_srs"`
	DstSRS  string `json:"dst_srs" yaml:"dst_srs"`
	Prefix  string `json:"prefix" yaml:"prefix"`
	Scale   XYZ    `json:"scale" yaml:"scale"`
	Workers int    `json:"workers" yaml:"workers"`

	CRS map[int]string `json:"crs" yaml:"crs"`
}

// DefaultReprojectCloud ...
func DefaultReprojectCloud() ReprojectCloud {
	return ReprojectCloud{
		Input:   "laz_original",
		Output:  "laz_wgs84",
		SrcSRS:  "EPSG:3301",
		DstSRS:  "EPSG:4326",
		Prefix:  "wgs84_",
		Scale:   XYZ{X: 1e-7, Y: 1e-7, Z: 1e-3},
		Workers: 1,
	}
}

// Validate ...
func (c ReprojectCloud) Validate() error {
	if err := requireDirs(c.Input, c.Output); err != nil {
		return err
	}
	if c.SrcSRS == "" || c.DstSRS == "" {
		return invalid("src_srs and dst_srs are required")
	}
	if err := validCRS(c.CRS); err != nil {
		return err
	}
	return validScale(c.Scale)
}

// ReprojectDEM configures raster DEM reprojection.
type ReprojectDEM struct {
	Input           string   `json:"input" yaml:"input"`
	Output          string   `json:"output" yaml:"output"`
	SrcSRS          string   `json:"src_srs" yaml:"src_srs"`
	DstSRS          string   `json:"dst_srs" yaml:"dst_srs"`
	Resampling      string   `json:"resampling" yaml:"resampling"`
	SrcNodata       float64  `json:"src_nodata" yaml:"src_nodata"`
	DstNodata       float64  `json:"dst_nodata" yaml:"dst_nodata"`
	OutputType      string   `json:"output_type" yaml:"output_type"`
	CreationOptions []string `json:"creation_options" yaml:"creation_options"`

	CRS map[int]string `json:"crs" yaml:"crs"`
}

// DefaultReprojectDEM ...
func DefaultReprojectDEM() ReprojectDEM {
	return ReprojectDEM{
		Input:           "dem_original",
		Output:          "dem_wgs84",
		SrcSRS:          "EPSG:3301",
		DstSRS:          "EPSG:4326",
		Resampling:      "bilinear",
		SrcNodata:       -9999,
		DstNodata:       -9999,
		OutputType:      "Float32",
		CreationOptions: []string{"COMPRESS=LZW", "PREDICTOR=2"},
	}
}

// Validate ...
func (c ReprojectDEM) Validate() error {
	if err := requireDirs(c.Input, c.Output); err != nil {
		return err
	}
	if c.SrcSRS == "" || c.DstSRS == "" {
		return invalid("src_srs and dst_srs are required")
	}
	if err := validCRS(c.CRS); err != nil {
		return err
	}
	switch c.Resampling {
	case "near", "bilinear", "cubic", "cubicspline", "lanczos", "average", "mode":
	default:
		return invalid("unknown resampling %q", c.Resampling)
	}
	return nil
}

// Mask configures masking images with a black and white mask.
type Mask struct {
	Input  string `json:"input" yaml:"input"`
	Mask   string `json:"mask" yaml:"mask"`
	Output string `json:"output" yaml:"output"`
}

// DefaultMask ...
func DefaultMask() Mask {
	return Mask{
		Input:  "images",
		Mask:   "mask.png",
		Output: "masked",
	}
}

// Validate ...
func (c Mask) Validate() error {
	if err := requireDirs(c.Input, c.Output); err != nil {
		return err
	}
	if c.Mask == "" {
		return invalid("mask is required")
	}
	return nil
}

// Equirect configures padding panoramas to a 2:1 aspect ratio.
type Equirect struct {
	Input   string `json:"input" yaml:"input"`
	Output  string `json:"output" yaml:"output"`
	Quality int    `json:"quality" yaml:"quality"`
}

// DefaultEquirect ...
func DefaultEquirect() Equirect {
	return Equirect{
		Input:   "panorama_original",
		Output:  "panorama_equirectangular",
		Quality: 90,
	}
}

// Validate ...
func (c Equirect) Validate() error {
	if err := requireDirs(c.Input, c.Output); err != nil {
		return err
	}
	return validQuality(c.Quality)
}

// Cutout configures cutting a view out of equirectangular frames and
// assembling the frames into a video.
type Cutout struct {
	Input        string  `json:"input" yaml:"input"`
	Output       string  `json:"output" yaml:"output"`
	FPS          float64 `json:"fps" yaml:"fps"`
	HFOV         float64 `json:"hfov" yaml:"hfov"`
	VFOV         float64 `json:"vfov" yaml:"vfov"`
	Rotation     float64 `json:"rotation" yaml:"rotation"`
	InputWidth   int     `json:"input_width" yaml:"input_width"`
	InputHeight  int     `json:"input_height" yaml:"input_height"`
	OutputWidth  int     `json:"output_width" yaml:"output_width"`
	OutputHeight int     `json:"output_height" yaml:"output_height"`
	Quality      int     `json:"quality" yaml:"quality"`
	Video        bool    `json:"video" yaml:"video"`
}

// DefaultCutout ...
func DefaultCutout() Cutout {
	return Cutout{
		Input:        "equirectangular",
		Output:       "video",
		FPS:          6,
		HFOV:         90,
		VFOV:         45,
		Rotation:     180,
		InputWidth:   8192,
		InputHeight:  4096,
		OutputWidth:  1280,
		OutputHeight: 1024,
		Quality:      90,
		Video:        true,
	}
}

// Validate ...
func (c Cutout) Validate() error {
	if err := requireDirs(c.Input, c.Output); err != nil {
		return err
	}
	if c.FPS <= 0 {
		return invalid("fps must be positive, got %v", c.FPS)
	}
	if c.HFOV <= 0 || c.HFOV > 360 || c.VFOV <= 0 || c.VFOV > 180 {
		return invalid("field of view out of range (h %v, v %v)", c.HFOV, c.VFOV)
	}
	if c.InputWidth <= 0 || c.InputHeight <= 0 || c.OutputWidth <= 0 || c.OutputHeight <= 0 {
		return invalid("resolutions must be positive")
	}
	return validQuality(c.Quality)
}

func validScale(s XYZ) error {
	if s.X <= 0 || s.Y <= 0 || s.Z <= 0 {
		return invalid("scale factors must be positive, got %v", s)
	}
	return nil
}

func validCRS(defs map[int]string) error {
	for code, def := range defs {
		if code <= 0 {
			return invalid("crs code must be positive, got %d", code)
		}
		if !strings.HasPrefix(strings.TrimSpace(def), "+") {
			return invalid("crs %d must be a proj4 definition, got %q", code, def)
		}
	}
	return nil
}

func validQuality(q int) error {
	if q < 1 || q > 100 {
		return invalid("quality must be within 1..100, got %d", q)
	}
	return nil
}
