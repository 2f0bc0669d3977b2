package viz

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"
)

// Chart renders a terminal line chart of one or more series.
func Chart(caption string, height, width int, series ...[]float64) string {
	var data [][]float64
	for _, s := range series {
		if len(s) > 0 {
			data = append(data, s)
		}
	}
	if len(data) == 0 {
		return ""
	}

	opts := []asciigraph.Option{asciigraph.Height(height), asciigraph.Caption(caption)}
	if width > 0 {
		opts = append(opts, asciigraph.Width(width))
	}
	if len(data) > 1 {
		opts = append(opts, asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Yellow, asciigraph.Green, asciigraph.Red))
		return asciigraph.PlotMany(data, opts...)
	}
	return asciigraph.Plot(data[0], opts...)
}

// Distances returns the norm of each position.
func Distances(pos []mgl64.Vec3) []float64 {
	out := make([]float64, len(pos))
	for i, p := range pos {
		out[i] = p.Len()
	}
	return out
}

// Components splits positions into x, y and z series.
func Components(pos []mgl64.Vec3) (x, y, z []float64) {
	x, y, z = make([]float64, len(pos)), make([]float64, len(pos)), make([]float64, len(pos))
	for i, p := range pos {
		x[i], y[i], z[i] = p[0], p[1], p[2]
	}
	return x, y, z
}
