package pointcloud

import (
	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/monitoring"
	"github.com/hongping1224/lidario"
)

// Shift adds a constant offset to every point of in and writes out.
func Shift(in, out string, d config.XYZ) (int, error) {
	return rewrite(in, out, nil, func(_ int, p lidario.LasPointer) (bool, error) {
		pd := p.PointData()
		pd.X += d.X
		pd.Y += d.Y
		pd.Z += d.Z
		return true, nil
	})
}

// RunShift shifts every cloud of cfg.Input.
func RunShift(cfg config.Shift) (*monitoring.Counter, error) {
	return Run(cfg.Input, cfg.Output, "", cfg.Workers, func(in, out string) (int, error) {
		return Shift(in, out, cfg.Shift)
	})
}
