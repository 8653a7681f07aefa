package imagery

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/godeepar/geoprep"
	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// halfMask is white on the left half and black on the right.
func halfMask(w, h int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			m.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return m
}

// columns paints each column with its own red value so rolls are visible.
func columns(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	return img
}

func TestApplyMask(t *testing.T) {
	img := solid(4, 2, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	masked, err := ApplyMask(img, halfMask(4, 2))
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 255}, masked.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{}, masked.NRGBAAt(3, 1))

	flat := Opaque(masked)
	assert.Equal(t, color.RGBA{A: 255}, flat.RGBAAt(3, 1))
	assert.Equal(t, color.RGBA{R: 200, G: 100, B: 50, A: 255}, flat.RGBAAt(1, 0))
}

func TestApplyMaskGrey(t *testing.T) {
	img := solid(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 1, 1))
	mask.SetGray(0, 0, color.Gray{Y: 51})

	masked, err := ApplyMask(img, mask)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 51, G: 51, B: 51, A: 51}, masked.NRGBAAt(0, 0))
}

func TestApplyMaskSizeMismatch(t *testing.T) {
	_, err := ApplyMask(solid(4, 2, color.White), halfMask(2, 2))
	assert.ErrorIs(t, err, ErrSizeMismatch)
}

func TestRunMask(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "images"), filepath.Join(dir, "masked")
	require.NoError(t, os.Mkdir(in, 0755))

	maskPath := filepath.Join(dir, "mask.png")
	require.NoError(t, Save(maskPath, halfMask(4, 2), 0))

	red := solid(4, 2, color.RGBA{R: 255, A: 255})
	require.NoError(t, Save(filepath.Join(in, "a.png"), red, 0))
	require.NoError(t, Save(filepath.Join(in, "b.bmp"), red, 0))
	require.NoError(t, Save(filepath.Join(in, "c.png"), solid(8, 8, color.White), 0))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("x"), 0644))

	cfg := config.DefaultMask()
	cfg.Input, cfg.Output, cfg.Mask = in, out, maskPath

	counter, err := RunMask(cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counter.Get(geoprep.Processed))
	assert.Equal(t, int64(1), counter.Get(geoprep.Skipped))

	png, err := Load(filepath.Join(out, "a.png"))
	require.NoError(t, err)
	_, _, _, a := png.At(3, 0).RGBA()
	assert.Zero(t, a)

	bmp, err := Load(filepath.Join(out, "b.bmp"))
	require.NoError(t, err)
	r, g, b, a := bmp.At(3, 0).RGBA()
	assert.Equal(t, []uint32{0, 0, 0, 0xffff}, []uint32{r, g, b, a})
	r, _, _, _ = bmp.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), r)

	assert.NoFileExists(t, filepath.Join(out, "c.png"))
}

func TestSaveUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.tiff")
	err := Save(path, solid(1, 1, color.White), 90)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.NoFileExists(t, path)
}

func TestPadEquirect(t *testing.T) {
	t.Run("wide", func(t *testing.T) {
		out := PadEquirect(solid(10, 2, color.White))
		assert.Equal(t, image.Rect(0, 0, 10, 5), out.Bounds())

		// rows 1 and 2 hold the image
		assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(0, 0))
		assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(0, 1))
		assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(9, 2))
		assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(0, 3))
	})

	t.Run("tall", func(t *testing.T) {
		img := columns(4, 5)
		out := PadEquirect(img)
		assert.Equal(t, image.Rect(0, 0, 4, 2), out.Bounds())

		// (2-5)//2 = -2, so source rows 2 and 3 survive
		assert.Equal(t, uint8(2), out.RGBAAt(0, 0).G)
		assert.Equal(t, uint8(3), out.RGBAAt(0, 1).G)
	})
}

func TestViewWindow(t *testing.T) {
	view := ViewFromConfig(config.DefaultCutout())

	win := view.Window(8192, 4096)
	assert.Equal(t, 1280, win.Dx())
	assert.Equal(t, 1024, win.Dy())
	assert.Equal(t, image.Pt(3456, 1536), win.Min)
}

func TestViewCut(t *testing.T) {
	view := View{
		HFOV: 180, VFOV: 90, Rotation: 90,
		InputWidth: 2, InputHeight: 1, OutputWidth: 2, OutputHeight: 1,
	}

	img := columns(8, 4)
	cut := view.Cut(img)
	require.Equal(t, image.Rect(0, 0, 4, 2), cut.Bounds())

	// window starts at column 2, shifted right by 2: source columns 0..3
	for x := 0; x < 4; x++ {
		assert.Equal(t, uint8(x), cut.RGBAAt(x, 0).R)
	}
	assert.Equal(t, uint8(1), cut.RGBAAt(0, 0).G)

	view.Rotation = 0
	cut = view.Cut(img)
	assert.Equal(t, uint8(2), cut.RGBAAt(0, 0).R)

	// rolling wraps around the seam
	view.Rotation = 180
	cut = view.Cut(img)
	assert.Equal(t, uint8(6), cut.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(1), cut.RGBAAt(3, 0).R)
}

func TestViewRender(t *testing.T) {
	view := View{
		HFOV: 180, VFOV: 90,
		InputWidth: 2, InputHeight: 1, OutputWidth: 16, OutputHeight: 4,
	}

	out := view.Render(solid(8, 4, color.RGBA{B: 255, A: 255}))
	assert.Equal(t, image.Rect(0, 0, 16, 4), out.Bounds())
	assert.Equal(t, color.RGBA{B: 255, A: 255}, out.RGBAAt(8, 2))
}

type fakeSink struct {
	path   string
	frames int
	closed bool
}

func (f *fakeSink) Write(img image.Image) error {
	f.frames++
	return nil
}

func (f *fakeSink) Close() error {
	f.closed = true
	return nil
}

func TestRunCutout(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "equirectangular"), filepath.Join(dir, "video")
	require.NoError(t, os.Mkdir(in, 0755))

	for _, name := range []string{"001.jpg", "002.jpg"} {
		require.NoError(t, Save(filepath.Join(in, name), columns(64, 32), 90))
	}
	require.NoError(t, os.WriteFile(filepath.Join(in, "003.jpg"), []byte("not a jpeg"), 0644))

	cfg := config.DefaultCutout()
	cfg.Input, cfg.Output = in, out
	cfg.InputWidth, cfg.InputHeight = 64, 32
	cfg.OutputWidth, cfg.OutputHeight = 20, 16

	sink := &fakeSink{}
	open := func(path string, fps float64, w, h int) (FrameSink, error) {
		assert.Equal(t, 6.0, fps)
		assert.Equal(t, 20, w)
		assert.Equal(t, 16, h)
		sink.path = path
		return sink, nil
	}

	counter, err := RunCutout(cfg, open)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counter.Get(geoprep.Processed))
	assert.Equal(t, int64(1), counter.Get(geoprep.Skipped))

	assert.Equal(t, filepath.Join(out, "Video_20x16.mp4"), sink.path)
	assert.Equal(t, 2, sink.frames)
	assert.True(t, sink.closed)

	frame, err := Load(filepath.Join(out, "20x16", "001.jpg"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 16), frame.Bounds())
}

func TestRunCutoutWithoutVideo(t *testing.T) {
	dir := t.TempDir()
	in, out := filepath.Join(dir, "in"), filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(in, 0755))
	require.NoError(t, Save(filepath.Join(in, "001.jpg"), columns(64, 32), 90))

	cfg := config.DefaultCutout()
	cfg.Input, cfg.Output = in, out
	cfg.Video = false

	called := false
	_, err := RunCutout(cfg, func(string, float64, int, int) (FrameSink, error) {
		called = true
		return &fakeSink{}, nil
	})
	require.NoError(t, err)
	assert.False(t, called)
	assert.FileExists(t, filepath.Join(out, "1280x1024", "001.jpg"))
}
