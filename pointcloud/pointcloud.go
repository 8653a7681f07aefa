// Package pointcloud runs the LAS batch utilities: constant shifts, time
// interpolated corrections, attribute filters, reprojection and cropping to
// tile polygons.
package pointcloud

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/godeepar/geoprep"
	"github.com/godeepar/geoprep/monitoring"
)

var (
	// ErrMissingDimension is returned when the point format of a file does not
	// carry the requested dimension.
	ErrMissingDimension = errors.New("dimension not found")

	// ErrUnknownDimension is returned for dimension names that are not supported.
	ErrUnknownDimension = errors.New("unknown dimension")

	// ErrCompressed is returned for LAZ input, which cannot be decoded.
	ErrCompressed = errors.New("compressed LAZ input is not supported")
)

// FileOp processes one cloud at in and writes the result to out. It returns
// the number of points written.
type FileOp func(in, out string) (int, error)

// Run applies op to every .las file of input, writing to output under the
// same name with prefix prepended. LAZ files are reported and skipped.
func Run(input, output, prefix string, workers int, op FileOp) (*monitoring.Counter, error) {
	files, err := geoprep.ListFiles(input, ".las", ".laz")
	if err != nil {
		return nil, fmt.Errorf("[ListFiles] in pkg [pointcloud] encountered: %w", err)
	}

	if err := geoprep.EnsureDir(output); err != nil {
		return nil, err
	}

	counter := geoprep.ForEach(files, workers, func(path string) error {
		name := filepath.Base(path)

		if geoprep.HasExt(path, ".laz") {
			return geoprep.Skip(ErrCompressed.Error())
		}

		monitoring.Logf("Processing %s...", name)

		out := geoprep.OutputPath(output, path, prefix)
		n, err := op(path, out)
		if err != nil {
			return skipOrFail(err)
		}

		if n == 0 {
			return geoprep.Skip("no points left to write")
		}

		monitoring.Logf("Modified point cloud saved to %s (%d points).", out, n)
		return nil
	})

	return counter, nil
}

// skipOrFail turns per-file conditions into skips; everything else is a
// failure of that file.
func skipOrFail(err error) error {
	switch {
	case errors.Is(err, ErrMissingDimension), errors.Is(err, ErrUnknownDimension):
		return geoprep.Skip(err.Error())
	}
	return err
}
