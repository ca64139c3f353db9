package export

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/dpend/internal/models"
	"github.com/san-kum/dpend/internal/sim"
	"github.com/san-kum/dpend/internal/viz"
)

// TrajectoryPlot builds a square plot of both bob paths in world units.
func TrajectoryPlot(frames []sim.Frame, p models.Params) (*plot.Plot, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("plot data invalid: no frames")
	}

	pl := plot.New()
	pl.Title.Text = "Double pendulum trajectory"
	pl.X.Label.Text = "x (m)"
	pl.Y.Label.Text = "y (m)"
	stylePlot(pl)

	reach := viz.Reach(p.Length)
	pl.X.Min, pl.X.Max = -reach, reach
	pl.Y.Min, pl.Y.Max = -reach, reach

	upper := make(plotter.XYs, len(frames))
	lower := make(plotter.XYs, len(frames))
	for i, f := range frames {
		upper[i].X, upper[i].Y = f.X1, f.Y1
		lower[i].X, lower[i].Y = f.X2, f.Y2
	}

	for i, pts := range []plotter.XYs{upper, lower} {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		pl.Add(line)
		pl.Legend.Add(fmt.Sprintf("bob %d", i+1), line)
	}
	pl.Add(plotter.NewGrid())

	return pl, nil
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)
	p.X.Label.Padding = vg.Points(6)
	p.Y.Label.Padding = vg.Points(6)
	p.X.Padding = vg.Points(10)
	p.Y.Padding = vg.Points(10)
	p.Legend.Top = true
}

// PNGDPI is the resolution WritePNG renders at.
const PNGDPI = 150

// WritePNG draws the trajectory plot as a square PNG about px pixels wide.
func WritePNG(w io.Writer, frames []sim.Frame, p models.Params, px int) error {
	pl, err := TrajectoryPlot(frames, p)
	if err != nil {
		return err
	}
	if px <= 0 {
		px = 6 * PNGDPI
	}

	side := vg.Length(float64(px)/PNGDPI) * vg.Inch
	c := vgimg.NewWith(
		vgimg.UseWH(side, side),
		vgimg.UseDPI(PNGDPI),
	)
	pl.Draw(draw.New(c))

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(w); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}
