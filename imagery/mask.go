package imagery

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"

	"github.com/godeepar/geoprep"
	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/monitoring"
)

// LoadMask reads a black and white mask as grayscale. White keeps a pixel,
// black removes it.
func LoadMask(path string) (*image.Gray, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)

	return gray, nil
}

// ApplyMask scales every channel of img, alpha included, by the mask value
// of the pixel.
func ApplyMask(img image.Image, mask *image.Gray) (*image.NRGBA, error) {
	b := img.Bounds()
	if b.Dx() != mask.Bounds().Dx() || b.Dy() != mask.Bounds().Dy() {
		return nil, ErrSizeMismatch
	}

	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			m := uint16(mask.GrayAt(x, y).Y)

			out.SetNRGBA(x, y, color.NRGBA{
				R: uint8(uint16(c.R) * m / 255),
				G: uint8(uint16(c.G) * m / 255),
				B: uint8(uint16(c.B) * m / 255),
				A: uint8(uint16(c.A) * m / 255),
			})
		}
	}

	return out, nil
}

// Opaque drops the alpha channel of img, keeping the colour values.
func Opaque(img *image.NRGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			out.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}

	return out
}

// RunMask masks every image of cfg.Input with cfg.Mask. Only PNG outputs
// keep transparency.
func RunMask(cfg config.Mask) (*monitoring.Counter, error) {
	mask, err := LoadMask(cfg.Mask)
	if err != nil {
		return nil, err
	}

	files, err := geoprep.ListFiles(cfg.Input, ImageExts...)
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

		masked, err := ApplyMask(img, mask)
		if errors.Is(err, ErrSizeMismatch) {
			return geoprep.Skip(err.Error())
		}
		if err != nil {
			return err
		}

		var result image.Image = masked
		if !geoprep.HasExt(path, ".png") {
			result = Opaque(masked)
		}

		out := geoprep.OutputPath(cfg.Output, path, "")
		if err := Save(out, result, 95); err != nil {
			return err
		}

		monitoring.Logf("Mask applied to %s, saved to %s", filepath.Base(path), out)
		return nil
	})

	return counter, nil
}
