package raster

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/godeepar/geoprep"
	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/monitoring"
	"github.com/godeepar/geoprep/reproject"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func TestExtent(t *testing.T) {
	gt := GeoTransform{540000, 1, 0, 6590000, 0, -1}

	b := gt.Extent(1000, 2000)
	assert.Equal(t, orb.Bound{
		Min: orb.Point{540000, 6588000},
		Max: orb.Point{541000, 6590000},
	}, b)
}

func TestOutputBounds(t *testing.T) {
	tr, err := reproject.NewTransform("EPSG:3301", reproject.WGS84)
	require.NoError(t, err)

	src := orb.Bound{Min: orb.Point{540000, 6588000}, Max: orb.Point{541000, 6590000}}
	b, err := OutputBounds(src, tr)
	require.NoError(t, err)

	assert.Less(t, b.Min[0], b.Max[0])
	assert.Less(t, b.Min[1], b.Max[1])
	assert.InDelta(t, 24.7, b.Min[0], 0.2)
	assert.InDelta(t, 59.4, b.Min[1], 0.2)

	// roughly 1 km by 2 km at 59.4 degrees north
	assert.InDelta(t, 1000.0/56700, b.Max[0]-b.Min[0], 0.002)
	assert.InDelta(t, 2000.0/111300, b.Max[1]-b.Min[1], 0.002)
}

func TestOutputBoundsError(t *testing.T) {
	boom := errors.New("boom")
	_, err := OutputBounds(orb.Bound{}, func(x, y float64) (float64, float64, error) {
		return 0, 0, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestWarpArgs(t *testing.T) {
	cfg := config.DefaultReprojectDEM()
	opts := warpOptions(cfg, orb.Bound{Min: orb.Point{24.5, 59.25}, Max: orb.Point{24.75, 59.5}})

	assert.Equal(t, []string{
		"-of", "GTiff",
		"-s_srs", "EPSG:3301",
		"-t_srs", "EPSG:4326",
		"-te", "24.5", "59.25", "24.75", "59.5",
		"-r", "bilinear",
		"-srcnodata", "-9999",
		"-dstnodata", "-9999",
		"-ot", "Float32",
		"-co", "COMPRESS=LZW",
		"-co", "PREDICTOR=2",
	}, opts.Args())

	opts.Bounds = orb.Bound{}
	assert.NotContains(t, opts.Args(), "-te")
}

type fakeDataset struct {
	gt     GeoTransform
	noGeo  bool
	closed bool
}

func (d *fakeDataset) GeoTransform() (GeoTransform, error) {
	if d.noGeo {
		return GeoTransform{}, errors.New("dataset has no geotransform")
	}
	return d.gt, nil
}

func (d *fakeDataset) Size() (int, int) { return 100, 100 }

func (d *fakeDataset) Close() { d.closed = true }

type fakeDriver struct {
	datasets map[string]*fakeDataset
	warped   map[string][]string
	failWarp bool
}

func (f *fakeDriver) Open(path string) (Dataset, error) {
	ds, ok := f.datasets[filepath.Base(path)]
	if !ok {
		return nil, errors.New("cannot open")
	}
	return ds, nil
}

func (f *fakeDriver) Warp(dst string, src Dataset, args []string) error {
	if f.failWarp {
		return errors.New("warp failed")
	}
	f.warped[filepath.Base(dst)] = args
	return nil
}

func TestRunDEM(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "dem_original"), filepath.Join(dir, "dem_wgs84")
	require.NoError(t, os.Mkdir(in, 0755))
	for _, name := range []string{"a.tif", "broken.tif", "plain.tif", "readme.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), []byte("x"), 0644))
	}

	good := &fakeDataset{gt: GeoTransform{540000, 10, 0, 6590000, 0, -10}}
	driver := &fakeDriver{
		datasets: map[string]*fakeDataset{
			"a.tif":     good,
			"plain.tif": {noGeo: true},
		},
		warped: map[string][]string{},
	}

	cfg := config.DefaultReprojectDEM()
	cfg.Input, cfg.Output = in, out

	counter, err := RunDEM(cfg, driver)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counter.Get(geoprep.Processed))
	assert.Equal(t, int64(2), counter.Get(geoprep.Skipped))

	require.Contains(t, driver.warped, "a.tif")
	assert.Contains(t, driver.warped["a.tif"], "-te")
	assert.True(t, good.closed)
	assert.DirExists(t, out)

	driver.failWarp = true
	counter, err = RunDEM(cfg, driver)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counter.Get(geoprep.Failed))
}

func TestRunDEMRegisteredCRS(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "dem_original")
	require.NoError(t, os.Mkdir(in, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.tif"), []byte("x"), 0644))

	lonlat := "+proj=longlat +datum=WGS84 +no_defs"
	cfg := config.DefaultReprojectDEM()
	cfg.Input, cfg.Output = in, filepath.Join(dir, "out")
	cfg.DstSRS = "EPSG:990001"
	cfg.CRS = map[int]string{990001: lonlat}

	driver := &fakeDriver{
		datasets: map[string]*fakeDataset{"a.tif": {gt: GeoTransform{540000, 10, 0, 6590000, 0, -10}}},
		warped:   map[string][]string{},
	}

	counter, err := RunDEM(cfg, driver)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counter.Get(geoprep.Processed))

	args := driver.warped["a.tif"]
	require.Contains(t, args, "-t_srs")
	for i, arg := range args {
		if arg == "-t_srs" {
			assert.Equal(t, lonlat, args[i+1])
		}
	}
	assert.Contains(t, args, "-te")
}

func TestRunDEMUnknownCRS(t *testing.T) {
	cfg := config.DefaultReprojectDEM()
	cfg.SrcSRS = "EPSG:1"

	_, err := RunDEM(cfg, &fakeDriver{})
	assert.ErrorIs(t, err, reproject.ErrUnknownCRS)
}
