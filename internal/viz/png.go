package viz

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Axis planes for trajectory plots.
var planes = map[string][2]int{"xy": {0, 1}, "xz": {0, 2}, "yz": {1, 2}}

// SavePNG plots the trajectory of every body relative to origin in the
// given plane ("xy", "xz" or "yz") and writes it to path. Coordinates are
// in kilometres. The format follows the file extension.
func SavePNG(path, title string, frames []Frame, origin, plane string) error {
	axes, ok := planes[plane]
	if !ok {
		return fmt.Errorf("unknown plane %q", plane)
	}
	if len(frames) == 0 {
		return fmt.Errorf("no timesteps to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = plane[:1] + " (km)"
	p.Y.Label.Text = plane[1:] + " (km)"
	p.Add(plotter.NewGrid())

	for i, name := range Names(frames) {
		if name == origin {
			continue
		}
		_, pos := Relative(frames, name, origin)
		if len(pos) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(pos))
		for j, r := range pos {
			pts[j].X = r[axes[0]] / 1e3
			pts[j].Y = r[axes[1]] / 1e3
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)

		end, err := plotter.NewScatter(pts[len(pts)-1:])
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		end.GlyphStyle.Color = plotutil.Color(i)
		end.GlyphStyle.Radius = vg.Points(3)

		p.Add(line, end)
		p.Legend.Add(name, line)
	}
	return save(p, path)
}

// SaveSeriesPNG plots named series against time (s) and writes it to path.
func SaveSeriesPNG(path, title, ylabel string, times []float64, series map[string][]float64, order []string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	for i, name := range order {
		ys := series[name]
		n := min(len(ys), len(times))
		if n == 0 {
			continue
		}
		pts := make(plotter.XYs, n)
		for j := 0; j < n; j++ {
			pts[j].X, pts[j].Y = times[j], ys[j]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	return save(p, path)
}

func save(p *plot.Plot, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create directory: %w", err)
		}
	}
	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}
