package cmd

import (
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/lesfilter/graphics"
	"github.com/notargets/lesfilter/mesh"
)

// plotResidual draws a field and its residual against the cell centre x
func plotResidual(m *mesh.Mesh, name string, input, residual []float64, delay time.Duration) {
	var (
		x          = make([]float64, m.NCells())
		fmin, fmax = floats.Min(input), floats.Max(input)
	)
	for c := range x {
		x[c] = m.C[c].X
	}
	fmin = min(fmin, floats.Min(residual))
	fmax = max(fmax, floats.Max(residual))
	margin := 0.1 * (fmax - fmin)
	if margin == 0 {
		margin = 1
	}
	lc := graphics.NewLineChart(1920, 1280, floats.Min(x), floats.Max(x), fmin-margin, fmax+margin)
	lc.Plot(delay, x, input, -1, name)
	lc.Plot(delay, x, residual, 1, name+" residual")
	graphics.SleepFor(int(delay.Milliseconds()))
}
