package pointcloud

import (
	"fmt"
	"os"

	"github.com/godeepar/geoprep/config"
	"github.com/hongping1224/lidario"
	"github.com/paulmach/orb"
)

// gps time is carried by point formats 1 and 3
func hasGPSTime(las *lidario.LasFile) bool {
	f := las.Header.PointFormatID
	return f == 1 || f == 3
}

func openCloud(path string) (*lidario.LasFile, error) {
	las, err := lidario.NewLasFile(path, "r")
	if err != nil {
		return nil, fmt.Errorf("[lidario.NewLasFile] in pkg [pointcloud] encountered: %w", err)
	}
	return las, nil
}

// headerBound reads only the header of path and returns its planar extent.
func headerBound(path string) (orb.Bound, byte, error) {
	las, err := lidario.NewLasFile(path, "rh")
	if err != nil {
		return orb.Bound{}, 0, fmt.Errorf("[lidario.NewLasFile] in pkg [pointcloud] encountered: %w", err)
	}
	defer las.Close()

	h := las.Header
	return orb.Bound{
		Min: orb.Point{h.MinX, h.MinY},
		Max: orb.Point{h.MaxX, h.MaxY},
	}, h.PointFormatID, nil
}

func createLike(path string, src *lidario.LasFile) (*lidario.LasFile, error) {
	out, err := lidario.InitializeUsingFile(path, src)
	if err != nil {
		return nil, fmt.Errorf("[lidario.InitializeUsingFile] in pkg [pointcloud] encountered: %w", err)
	}
	return out, nil
}

func setScale(h *lidario.LasHeader, scale config.XYZ) {
	h.XScaleFactor = scale.X
	h.YScaleFactor = scale.Y
	h.ZScaleFactor = scale.Z
}

func setOffset(h *lidario.LasHeader, offset config.XYZ) {
	h.XOffset = offset.X
	h.YOffset = offset.Y
	h.ZOffset = offset.Z
}

// rewrite copies the points of in to a new file at out with the same header.
// edit runs on every point before it is written and drops it by returning
// false. prepare may adjust the output header before the first point. When
// no point survives, out is removed and 0 is returned.
func rewrite(in, out string, prepare func(src *lidario.LasFile, h *lidario.LasHeader) error, edit func(i int, p lidario.LasPointer) (bool, error)) (int, error) {
	src, err := openCloud(in)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	dst, err := createLike(out, src)
	if err != nil {
		return 0, err
	}

	if prepare != nil {
		if err := prepare(src, &dst.Header); err != nil {
			dst.Close()
			os.Remove(out)
			return 0, err
		}
	}

	kept := 0
	for i := 0; i < src.Header.NumberPoints; i++ {
		p, err := src.LasPoint(i)
		if err != nil {
			dst.Close()
			os.Remove(out)
			return 0, fmt.Errorf("[LasPoint] in pkg [pointcloud] encountered: %w", err)
		}

		keep, err := edit(i, p)
		if err != nil {
			dst.Close()
			os.Remove(out)
			return 0, err
		}
		if !keep {
			continue
		}

		if err := dst.AddLasPoint(p); err != nil {
			dst.Close()
			os.Remove(out)
			return 0, fmt.Errorf("[AddLasPoint] in pkg [pointcloud] encountered: %w", err)
		}
		kept++
	}

	if err := dst.Close(); err != nil {
		return 0, fmt.Errorf("[Close] in pkg [pointcloud] encountered: %w", err)
	}

	if kept == 0 {
		os.Remove(out)
	}

	return kept, nil
}
