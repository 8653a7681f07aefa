package tiling

import (
	"fmt"
	"image/color"

	"github.com/paulmach/orb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var previewPalette = []color.Color{
	color.NRGBA{R: 102, G: 194, B: 165, A: 160},
	color.NRGBA{R: 252, G: 141, B: 98, A: 160},
	color.NRGBA{R: 141, G: 160, B: 203, A: 160},
	color.NRGBA{R: 231, G: 138, B: 195, A: 160},
}

// WritePreview draws the tiles and the reference line to path. The image
// format follows the extension (.png, .svg, .pdf, ...).
func WritePreview(path string, res *Result, line orb.MultiLineString) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%d tiles, %d discarded", len(res.Tiles), res.Discarded)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	for i, tile := range res.Tiles {
		rings := make([]plotter.XYer, 0, len(tile))
		for _, ring := range tile {
			rings = append(rings, xys(ring))
		}

		poly, err := plotter.NewPolygon(rings...)
		if err != nil {
			return fmt.Errorf("[plotter.NewPolygon] in pkg [tiling] encountered: %w", err)
		}
		poly.Color = previewPalette[i%len(previewPalette)]
		poly.LineStyle.Width = vg.Points(0.5)
		p.Add(poly)
	}

	for _, ls := range line {
		if len(ls) < 2 {
			continue
		}

		l, err := plotter.NewLine(xys(ls))
		if err != nil {
			return fmt.Errorf("[plotter.NewLine] in pkg [tiling] encountered: %w", err)
		}
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Color = color.Black
		p.Add(l)
	}

	p.Add(plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("[plot.Save] in pkg [tiling] encountered: %w", err)
	}

	return nil
}

func xys(points []orb.Point) plotter.XYs {
	out := make(plotter.XYs, len(points))
	for i, p := range points {
		out[i].X, out[i].Y = p[0], p[1]
	}
	return out
}
