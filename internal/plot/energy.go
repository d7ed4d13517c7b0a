// Package plot renders per-timestep trajectory series to image files.
package plot

import (
	"fmt"

	"github.com/san-kum/xyzprep/internal/xyz"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Energy draws energy against timestep. The image format follows the file
// extension (.png, .svg, .pdf, ...).
func Energy(traj *xyz.Trajectory, title, path string) error {
	energies := traj.Energies()
	if len(energies) == 0 {
		return fmt.Errorf("%s: no energies to plot", traj.Source)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "timestep"
	p.Y.Label.Text = "energy"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(energies))
	for i, e := range energies {
		pts[i].X = float64(i + 1)
		pts[i].Y = e
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	p.Add(line, points)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
