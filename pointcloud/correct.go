package pointcloud

import (
	"fmt"

	"github.com/godeepar/geoprep/config"
	"github.com/godeepar/geoprep/monitoring"
	"github.com/hongping1224/lidario"
	"gonum.org/v1/gonum/interp"
)

// Corrector interpolates per-axis shifts over gps time. Between the control
// timestamps the shift is piecewise linear, outside them the first or last
// segment is extended.
type Corrector struct {
	times []float64
	axes  [3]axis
}

type axis struct {
	values []float64
	fit    interp.PiecewiseLinear
}

// NewCorrector fits one interpolator per axis. Timestamps must be strictly
// increasing with at least two entries, and every shift list must match
// their length.
func NewCorrector(timestamps, xs, ys, zs []float64) (*Corrector, error) {
	c := &Corrector{times: append([]float64(nil), timestamps...)}

	for i, values := range [][]float64{xs, ys, zs} {
		if len(values) != len(timestamps) {
			return nil, fmt.Errorf("%w: %d shifts for %d timestamps", config.ErrInvalid, len(values), len(timestamps))
		}

		a := axis{values: append([]float64(nil), values...)}
		if err := a.fit.Fit(c.times, a.values); err != nil {
			return nil, fmt.Errorf("[interp.Fit] in pkg [pointcloud] encountered: %w", err)
		}
		c.axes[i] = a
	}

	return c, nil
}

// At returns the shift to apply at gps time t.
func (c *Corrector) At(t float64) (dx, dy, dz float64) {
	return c.axes[0].at(c.times, t), c.axes[1].at(c.times, t), c.axes[2].at(c.times, t)
}

func (a *axis) at(times []float64, t float64) float64 {
	n := len(times)

	switch {
	case t < times[0]:
		return extend(times[0], times[1], a.values[0], a.values[1], t)
	case t > times[n-1]:
		return extend(times[n-2], times[n-1], a.values[n-2], a.values[n-1], t)
	}

	return a.fit.Predict(t)
}

func extend(t0, t1, v0, v1, t float64) float64 {
	return v0 + (v1-v0)*(t-t0)/(t1-t0)
}

// Correct applies the interpolated shift to every point of in. Clouds without
// gps time are rejected with ErrMissingDimension.
func Correct(in, out string, c *Corrector) (int, error) {
	prepare := func(src *lidario.LasFile, _ *lidario.LasHeader) error {
		if !hasGPSTime(src) {
			return fmt.Errorf("%w: 'gps_time' in point format %d", ErrMissingDimension, src.Header.PointFormatID)
		}
		return nil
	}

	return rewrite(in, out, prepare, func(_ int, p lidario.LasPointer) (bool, error) {
		dx, dy, dz := c.At(p.GpsTimeData())

		pd := p.PointData()
		pd.X += dx
		pd.Y += dy
		pd.Z += dz
		return true, nil
	})
}

// RunCorrect corrects every cloud of cfg.Input.
func RunCorrect(cfg config.Correct) (*monitoring.Counter, error) {
	c, err := NewCorrector(cfg.Timestamps, cfg.XShifts, cfg.YShifts, cfg.ZShifts)
	if err != nil {
		return nil, err
	}

	return Run(cfg.Input, cfg.Output, "", cfg.Workers, func(in, out string) (int, error) {
		return Correct(in, out, c)
	})
}
