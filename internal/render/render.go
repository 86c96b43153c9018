// Package render draws detector frames as heat-map images for quick visual
// inspection, without pulling in the full analysis framework.
package render

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// denseGrid adapts a matrix to plotter.GridXYZ. Row 0 is drawn at the
// bottom, matching the plotting convention rather than image convention.
type denseGrid struct {
	m *mat.Dense
}

func (g denseGrid) Dims() (c, r int) {
	rows, cols := g.m.Dims()
	return cols, rows
}

func (g denseGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g denseGrid) X(c int) float64    { return float64(c) }
func (g denseGrid) Y(r int) float64    { return float64(r) }

// HeatMapPNG renders the frame as a heat map and saves it to path. The
// format is chosen from the path extension (use .png).
func HeatMapPNG(frame *mat.Dense, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "column (px)"
	p.Y.Label.Text = "row (px)"

	hm := plotter.NewHeatMap(denseGrid{m: frame}, palette.Heat(64, 1))
	p.Add(hm)

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("saving heat map to %s: %w", path, err)
	}
	return nil
}
