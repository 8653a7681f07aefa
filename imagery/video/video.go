// Package video encodes frames to an mp4 file with OpenCV.
package video

import (
	"errors"
	"fmt"
	"image"

	"github.com/godeepar/geoprep/imagery"
	"gocv.io/x/gocv"
)

// ErrNotOpened is returned when OpenCV cannot open the output for writing.
var ErrNotOpened = errors.New("video writer could not be opened")

// Writer appends frames to an mp4v encoded video.
type Writer struct {
	w             *gocv.VideoWriter
	width, height int
}

// Open creates the video at path. Frames of a different size are rejected.
func Open(path string, fps float64, width, height int) (imagery.FrameSink, error) {
	w, err := gocv.VideoWriterFile(path, "mp4v", fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("[gocv.VideoWriterFile] in pkg [video] encountered: %w", err)
	}

	if !w.IsOpened() {
		w.Close()
		return nil, ErrNotOpened
	}

	return &Writer{w: w, width: width, height: height}, nil
}

// Write ...
func (v *Writer) Write(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != v.width || b.Dy() != v.height {
		return fmt.Errorf("frame is %dx%d, video is %dx%d", b.Dx(), b.Dy(), v.width, v.height)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("[gocv.ImageToMatRGB] in pkg [video] encountered: %w", err)
	}
	defer mat.Close()

	if err := v.w.Write(mat); err != nil {
		return fmt.Errorf("[VideoWriter.Write] in pkg [video] encountered: %w", err)
	}

	return nil
}

// Close flushes and releases the video.
func (v *Writer) Close() error {
	return v.w.Close()
}
