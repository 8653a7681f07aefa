// Package imagery holds the image batch utilities: masking, padding
// panoramas to 2:1 and cutting views out of equirectangular frames.
package imagery

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

var (
	// ErrSizeMismatch is returned when an image and its mask differ in size.
	ErrSizeMismatch = errors.New("image and mask sizes do not match")

	// ErrUnsupportedImage is returned for extensions without an encoder.
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// ImageExts are the extensions the utilities read.
var ImageExts = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif"}

// Load decodes the image at path. The format is sniffed from the content.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[os.Open] in pkg [imagery] encountered: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("[image.Decode] in pkg [imagery] encountered: %w", err)
	}

	return img, nil
}

// Save encodes img to path in the format named by its extension. quality
// applies to JPEG only.
func Save(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[os.Create] in pkg [imagery] encountered: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".gif":
		err = gif.Encode(f, img, nil)
	default:
		err = ErrUnsupportedImage
	}

	if err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("[Encode] in pkg [imagery] encountered: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("[Close] in pkg [imagery] encountered: %w", err)
	}

	return nil
}
