// Package graphics draws line charts with the avs OpenGL toolkit. It needs
// cgo and the GL and X11 headers, so it is kept apart from the numerical
// packages.
package graphics

import (
	"time"

	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"
)

func SleepFor(milliseconds int) {
	time.Sleep(time.Duration(milliseconds) * time.Millisecond)
}

type LineChart struct {
	Chart    *chart2d.Chart2D
	ColorMap *utils2.ColorMap
}

func NewLineChart(width, height int, xmin, xmax, fmin, fmax float64) (lc *LineChart) {
	lc = &LineChart{
		Chart:    chart2d.NewChart2D(width, height, float32(xmin), float32(xmax), float32(fmin), float32(fmax)),
		ColorMap: utils2.NewColorMap(-1, 1, 1),
	}
	go lc.Chart.Plot()
	return
}

func (lc *LineChart) Plot(graphDelay time.Duration, x, f []float64, lineColor float64, lineName string) {
	/*
		lineColor goes from -1 (red) to 1 (blue)
	*/
	if err := lc.Chart.AddSeries(lineName, x, f,
		chart2d.CrossGlyph, chart2d.Solid, lc.ColorMap.GetRGB(float32(lineColor))); err != nil {
		panic("unable to add graph series")
	}
	time.Sleep(graphDelay)
}
