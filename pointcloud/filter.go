package pointcloud

import (
	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/monitoring"
	"github.com/hongping1224/lidario"
)

// Filter keeps the points of in whose dimension lies within [min, max].
// Nothing is written when no point is in range.
func Filter(in, out, dimension string, min, max float64) (int, error) {
	var get Getter

	prepare := func(src *lidario.LasFile, _ *lidario.LasHeader) error {
		g, err := Dimension(dimension, src.Header.PointFormatID)
		if err != nil {
			return err
		}
		get = g
		return nil
	}

	return rewrite(in, out, prepare, func(_ int, p lidario.LasPointer) (bool, error) {
		v := get(p)
		return v >= min && v <= max, nil
	})
}

// RunFilter filters every cloud of cfg.Input.
func RunFilter(cfg config.Filter) (*monitoring.Counter, error) {
	return Run(cfg.Input, cfg.Output, "", cfg.Workers, func(in, out string) (int, error) {
		return Filter(in, out, cfg.Dimension, cfg.Min, cfg.Max)
	})
}
