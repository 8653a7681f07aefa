package pointcloud

import (
	"fmt"
	"math"

	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/monitoring"
	"github.com/godeepar/geoprep/reproject"
	"github.com/hongping1224/lidario"
)

// Reproject transforms the horizontal coordinates of every point of in with
// tr. Heights are left as they are. The output uses scale, and offsets at
// the floor of the transformed minimums.
func Reproject(in, out string, tr reproject.Transform, scale config.XYZ) (int, error) {
	var xy [][2]float64

	prepare := func(src *lidario.LasFile, h *lidario.LasHeader) error {
		xy = make([][2]float64, src.Header.NumberPoints)

		minX, minY, minZ := math.Inf(1), math.Inf(1), math.Inf(1)
		for i := range xy {
			p, err := src.LasPoint(i)
			if err != nil {
				return fmt.Errorf("[LasPoint] in pkg [pointcloud] encountered: %w", err)
			}
			pd := p.PointData()

			x, y, err := tr(pd.X, pd.Y)
			if err != nil {
				return fmt.Errorf("[Transform] in pkg [pointcloud] encountered: %w", err)
			}
			xy[i] = [2]float64{x, y}

			minX, minY, minZ = math.Min(minX, x), math.Min(minY, y), math.Min(minZ, pd.Z)
		}

		setScale(h, scale)
		if len(xy) > 0 {
			setOffset(h, config.XYZ{X: math.Floor(minX), Y: math.Floor(minY), Z: math.Floor(minZ)})
		}
		return nil
	}

	return rewrite(in, out, prepare, func(i int, p lidario.LasPointer) (bool, error) {
		pd := p.PointData()
		pd.X, pd.Y = xy[i][0], xy[i][1]
		return true, nil
	})
}

// RunReproject reprojects every cloud of cfg.Input.
func RunReproject(cfg config.ReprojectCloud) (*monitoring.Counter, error) {
	reproject.RegisterAll(cfg.CRS)
	tr, err := reproject.NewTransform(cfg.SrcSRS, cfg.DstSRS)
	if err != nil {
		return nil, fmt.Errorf("[NewTransform] in pkg [pointcloud] encountered: %w", err)
	}

	return Run(cfg.Input, cfg.Output, cfg.Prefix, cfg.Workers, func(in, out string) (int, error) {
		return Reproject(in, out, tr, cfg.Scale)
	})
}
