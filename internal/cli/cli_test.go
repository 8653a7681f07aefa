package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v2"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func tileApp(t *testing.T) (*kingpin.Application, *Command, *config.Tile, *int) {
	t.Helper()

	app := kingpin.New("geoprep", "")
	cfg := config.DefaultTile()
	c := New(app, "tile", "", &cfg)
	c.Flags.String("input", "", &cfg.Input)
	c.Flags.Float("width", "", &cfg.Width)
	c.Flags.Float("spacing", "", &cfg.Spacing)
	c.Flags.Int("quad-segments", "", &cfg.QuadSegments)

	calls := new(int)
	c.Execute = func() (*monitoring.Counter, error) {
		*calls++
		counter := monitoring.NewCounter()
		counter.Set("tiles", 1)
		return counter, nil
	}
	return app, c, &cfg, calls
}

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunFlagsWinOverFile(t *testing.T) {
	path := writeYAML(t, "width: 80\nspacing: 300\n")
	app, c, cfg, calls := tileApp(t)

	_, err := app.Parse([]string{"tile", "--config", path, "--spacing", "500"})
	require.NoError(t, err)
	require.NoError(t, c.Run(&bytes.Buffer{}))

	assert.Equal(t, 80.0, cfg.Width)
	assert.Equal(t, 500.0, cfg.Spacing)
	// neither in the file nor on the command line
	assert.Equal(t, "polyline.shp", cfg.Input)
	assert.Equal(t, 16, cfg.QuadSegments)
	assert.Equal(t, 1, *calls)
}

func TestRunWithoutFile(t *testing.T) {
	app, c, cfg, calls := tileApp(t)

	_, err := app.Parse([]string{"tile", "--width", "25", "--quad-segments", "8"})
	require.NoError(t, err)
	require.NoError(t, c.Run(&bytes.Buffer{}))

	assert.Equal(t, 25.0, cfg.Width)
	assert.Equal(t, 600.0, cfg.Spacing)
	assert.Equal(t, 8, cfg.QuadSegments)
	assert.Equal(t, 1, *calls)
}

func TestRunRejectsBadFlag(t *testing.T) {
	app, c, _, calls := tileApp(t)

	_, err := app.Parse([]string{"tile", "--width", "wide"})
	require.NoError(t, err)

	err = c.Run(&bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.Contains(t, err.Error(), "--width")
	assert.Zero(t, *calls)
}

func TestRunValidatesLayeredSettings(t *testing.T) {
	path := writeYAML(t, "spacing: 300\n")
	app, c, _, calls := tileApp(t)

	_, err := app.Parse([]string{"tile", "--config", path, "--spacing", "0"})
	require.NoError(t, err)

	err = c.Run(&bytes.Buffer{})
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.Zero(t, *calls)
}

func TestRunUnknownFileKey(t *testing.T) {
	path := writeYAML(t, "colour: red\n")
	app, c, _, calls := tileApp(t)

	_, err := app.Parse([]string{"tile", "--config", path})
	require.NoError(t, err)

	assert.Error(t, c.Run(&bytes.Buffer{}))
	assert.Zero(t, *calls)
}

func TestRunDumpConfig(t *testing.T) {
	path := writeYAML(t, "width: 80\n")
	app, c, _, calls := tileApp(t)

	_, err := app.Parse([]string{"tile", "--config", path, "--spacing", "450", "--dump-config"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, c.Run(&out))
	assert.Zero(t, *calls)

	dumped := config.DefaultTile()
	require.NoError(t, yaml.UnmarshalStrict(out.Bytes(), &dumped))
	assert.Equal(t, 80.0, dumped.Width)
	assert.Equal(t, 450.0, dumped.Spacing)
	assert.Equal(t, "polyline.shp", dumped.Input)
}

func cutoutApp(t *testing.T, args ...string) *config.Cutout {
	t.Helper()

	app := kingpin.New("geoprep", "")
	cfg := config.DefaultCutout()
	c := New(app, "cutout", "", &cfg)
	c.Flags.Bool("video", "", &cfg.Video)
	c.Execute = func() (*monitoring.Counter, error) { return nil, nil }

	_, err := app.Parse(append([]string{"cutout"}, args...))
	require.NoError(t, err)
	require.NoError(t, c.Run(&bytes.Buffer{}))
	return &cfg
}

func TestBoolOverride(t *testing.T) {
	on := writeYAML(t, "video: true\n")
	off := writeYAML(t, "video: false\n")

	assert.False(t, cutoutApp(t, "--config", on, "--no-video").Video)
	assert.True(t, cutoutApp(t, "--config", off, "--video").Video)
	assert.False(t, cutoutApp(t, "--config", off).Video)
	assert.True(t, cutoutApp(t).Video)
}
