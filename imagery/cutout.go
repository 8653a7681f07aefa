package imagery

import (
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/godeepar/geoprep"
	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/monitoring"
	xdraw "golang.org/x/image/draw"
)

// View describes the part of an equirectangular frame to cut out. Angles are
// in degrees; the input resolution only sets the aspect ratio the horizontal
// field of view is corrected for.
type View struct {
	HFOV     float64
	VFOV     float64
	Rotation float64

	InputWidth   int
	InputHeight  int
	OutputWidth  int
	OutputHeight int
}

// ViewFromConfig ...
func ViewFromConfig(cfg config.Cutout) View {
	return View{
		HFOV:         cfg.HFOV,
		VFOV:         cfg.VFOV,
		Rotation:     cfg.Rotation,
		InputWidth:   cfg.InputWidth,
		InputHeight:  cfg.InputHeight,
		OutputWidth:  cfg.OutputWidth,
		OutputHeight: cfg.OutputHeight,
	}
}

// Window returns the centred cut rectangle for a frame of w by h pixels.
func (v View) Window(w, h int) image.Rectangle {
	outAspect := float64(v.OutputWidth) / float64(v.OutputHeight)
	inAspect := float64(v.InputWidth) / float64(v.InputHeight)
	hfov := v.HFOV * (outAspect / inAspect)

	cw := int(float64(w) * hfov / 360)
	ch := int(float64(h) * v.VFOV / 180)

	x0 := (w - cw) / 2
	y0 := (h - ch) / 2

	return image.Rect(x0, y0, x0+cw, y0+ch)
}

// Cut rolls img horizontally by the rotation and returns the window,
// unscaled.
func (v View) Cut(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	shift := int(v.Rotation / 360 * float64(w))
	win := v.Window(w, h)

	out := image.NewRGBA(image.Rect(0, 0, win.Dx(), win.Dy()))
	for y := 0; y < win.Dy(); y++ {
		for x := 0; x < win.Dx(); x++ {
			// pixels move right by shift and wrap around
			sx := ((win.Min.X+x-shift)%w + w) % w
			out.Set(x, y, img.At(b.Min.X+sx, b.Min.Y+win.Min.Y+y))
		}
	}

	return out
}

// Render cuts the view out of img and scales it to the output resolution.
func (v View) Render(img image.Image) *image.RGBA {
	cut := v.Cut(img)

	if cut.Bounds().Dx() == v.OutputWidth && cut.Bounds().Dy() == v.OutputHeight {
		return cut
	}

	out := image.NewRGBA(image.Rect(0, 0, v.OutputWidth, v.OutputHeight))
	xdraw.BiLinear.Scale(out, out.Bounds(), cut, cut.Bounds(), xdraw.Src, nil)

	return out
}

// FrameSink receives rendered frames in order.
type FrameSink interface {
	Write(img image.Image) error
	Close() error
}

// SinkOpener creates the sink a cutout run writes its frames to.
type SinkOpener func(path string, fps float64, width, height int) (FrameSink, error)

// RunCutout renders every .jpg of cfg.Input in name order, saves the frames
// under <output>/<W>x<H>/ and, with cfg.Video and a non-nil open, feeds them
// to <output>/Video_<W>x<H>.mp4.
func RunCutout(cfg config.Cutout, open SinkOpener) (*monitoring.Counter, error) {
	start := time.Now()
	view := ViewFromConfig(cfg)

	files, err := geoprep.ListFiles(cfg.Input, ".jpg")
	if err != nil {
		return nil, err
	}
	monitoring.Logf("Found %d images to process.", len(files))

	size := fmt.Sprintf("%dx%d", cfg.OutputWidth, cfg.OutputHeight)
	framesDir := filepath.Join(cfg.Output, size)
	if err := geoprep.EnsureDir(framesDir); err != nil {
		return nil, err
	}

	videoPath := filepath.Join(cfg.Output, "Video_"+size+".mp4")

	counter := monitoring.NewCounter()
	counter.Set(geoprep.Processed, 0)

	var sink FrameSink
	for _, path := range files {
		img, err := Load(path)
		if err != nil {
			monitoring.NonFatal("Skipping file: %s (%v)", filepath.Base(path), err)
			counter.Incr(geoprep.Skipped)
			continue
		}

		frame := view.Render(img)
		if err := Save(geoprep.OutputPath(framesDir, path, ""), frame, cfg.Quality); err != nil {
			if sink != nil {
				sink.Close()
			}
			return counter, err
		}

		if cfg.Video && open != nil {
			if sink == nil {
				monitoring.Logf("Initializing video creation...")
				if sink, err = open(videoPath, cfg.FPS, cfg.OutputWidth, cfg.OutputHeight); err != nil {
					return counter, err
				}
			}
			if err := sink.Write(frame); err != nil {
				sink.Close()
				return counter, err
			}
		}

		counter.Incr(geoprep.Processed)
	}

	if sink != nil {
		if err := sink.Close(); err != nil {
			return counter, err
		}
		monitoring.Logf("Video saved to %s with %d frames.", videoPath, counter.Get(geoprep.Processed))
	}

	monitoring.Logf("Processing completed in %.2f seconds.", time.Since(start).Seconds())

	return counter, nil
}
