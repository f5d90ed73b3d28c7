package storage

import (
	"errors"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var ErrNoData = errors.New("storage: nothing to plot")

// PlotEnergies draws the accepted-energy trace to path. The image format
// follows the extension (.png, .svg, .pdf, ...). Energies are divided by
// particles when it is positive.
func PlotEnergies(path string, energies []float64, particles int) error {
	if len(energies) == 0 {
		return ErrNoData
	}

	pts := make(plotter.XYs, len(energies))
	for i, e := range energies {
		pts[i].X = float64(i + 1)
		pts[i].Y = e
		if particles > 0 {
			pts[i].Y /= float64(particles)
		}
	}

	p := plot.New()
	p.Title.Text = "Accepted energy"
	p.X.Label.Text = "accepted move"
	p.Y.Label.Text = "energy"
	if particles > 0 {
		p.Y.Label.Text = "energy per particle"
	}
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = color.RGBA{R: 46, G: 134, B: 193, A: 255}
	p.Add(line)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
