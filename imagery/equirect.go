package imagery

import (
	"image"
	"image/color"
	"image/draw"
	"path/filepath"

	"github.com/godeepar/geoprep"
	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/monitoring"
)

// PadEquirect places img on a black canvas of the same width and half that
// height, centred vertically. Taller images are cropped top and bottom.
func PadEquirect(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	newH := w / 2

	out := image.NewRGBA(image.Rect(0, 0, w, newH))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)

	top := (newH - h) / 2
	if (newH-h)%2 != 0 && newH < h {
		// floor division, as for negative offsets
		top--
	}

	dst := image.Rect(0, top, w, top+h)
	draw.Draw(out, dst, img, b.Min, draw.Src)

	return out
}

// RunEquirect pads every .jpg of cfg.Input to 2:1.
func RunEquirect(cfg config.Equirect) (*monitoring.Counter, error) {
	files, err := geoprep.ListFiles(cfg.Input, ".jpg")
	if err != nil {
		return nil, err
	}

	if err := geoprep.EnsureDir(cfg.Output); err != nil {
		return nil, err
	}

	counter := geoprep.ForEach(files, 1, func(path string) error {
		img, err := Load(path)
		if err != nil {
			return err
		}

		if err := Save(geoprep.OutputPath(cfg.Output, path, ""), PadEquirect(img), cfg.Quality); err != nil {
			return err
		}

		monitoring.Logf("Processed %s", filepath.Base(path))
		return nil
	})

	return counter, nil
}
