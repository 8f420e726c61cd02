package render

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"gonum.org/v1/gonum/floats"

	"seismicview/internal/analysis"
)

// spectrogramLayout maps data coordinates of the heat map onto pixels.
// Cells are centred on their time and frequency bins.
type spectrogramLayout struct {
	plot       image.Rectangle
	bar        image.Rectangle
	tMin, tMax float64
	fMin, fMax float64
}

func newSpectrogramLayout(panel image.Rectangle, spec *analysis.Spectrogram) spectrogramLayout {
	plot := image.Rect(panel.Min.X+80, panel.Min.Y+30, panel.Max.X-150, panel.Max.Y-50)
	bar := image.Rect(plot.Max.X+20, plot.Min.Y, plot.Max.X+40, plot.Max.Y)

	halfT := halfStep(spec.Times)
	halfF := halfStep(spec.Frequencies)
	return spectrogramLayout{
		plot: plot,
		bar:  bar,
		tMin: spec.Times[0] - halfT,
		tMax: spec.Times[len(spec.Times)-1] + halfT,
		fMin: spec.Frequencies[0] - halfF,
		fMax: spec.Frequencies[len(spec.Frequencies)-1] + halfF,
	}
}

// halfStep is half the bin spacing. A single bin falls back to its own value
// so the cell still has a width.
func halfStep(bins []float64) float64 {
	if len(bins) < 2 {
		if len(bins) == 1 && bins[0] != 0 {
			return math.Abs(bins[0])
		}
		return 0.5
	}
	return (bins[1] - bins[0]) / 2
}

// timeAt returns the data time at the centre of pixel column x.
func (l spectrogramLayout) timeAt(x int) float64 {
	frac := (float64(x-l.plot.Min.X) + 0.5) / float64(l.plot.Dx())
	return l.tMin + frac*(l.tMax-l.tMin)
}

// freqAt returns the frequency at the centre of pixel row y. Frequency grows upwards.
func (l spectrogramLayout) freqAt(y int) float64 {
	frac := (float64(l.plot.Max.Y-1-y) + 0.5) / float64(l.plot.Dy())
	return l.fMin + frac*(l.fMax-l.fMin)
}

// column returns the pixel column for time t and whether it lies inside the plot.
func (l spectrogramLayout) column(t float64) (int, bool) {
	x := l.plot.Min.X + int(math.Floor((t-l.tMin)/(l.tMax-l.tMin)*float64(l.plot.Dx())))
	return x, x >= l.plot.Min.X && x < l.plot.Max.X
}

func (l spectrogramLayout) row(f float64) int {
	return l.plot.Max.Y - 1 - int(math.Floor((f-l.fMin)/(l.fMax-l.fMin)*float64(l.plot.Dy())))
}

func nearestBin(bins []float64, v float64) int {
	if len(bins) < 2 {
		return 0
	}
	i := int(math.Round((v - bins[0]) / (bins[1] - bins[0])))
	return max(0, min(i, len(bins)-1))
}

func drawSpectrogram(dst draw.Image, l spectrogramLayout, res *analysis.Result) {
	spec := res.Spectrogram
	logp := spec.LogPower()

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range logp {
		lo = math.Min(lo, floats.Min(row))
		hi = math.Max(hi, floats.Max(row))
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	// precompute bin lookups per column and row
	cols := make([]int, l.plot.Dx())
	for i := range cols {
		cols[i] = nearestBin(spec.Times, l.timeAt(l.plot.Min.X+i))
	}
	for y := l.plot.Min.Y; y < l.plot.Max.Y; y++ {
		k := nearestBin(spec.Frequencies, l.freqAt(y))
		for i, j := range cols {
			dst.Set(l.plot.Min.X+i, y, colorAt((logp[k][j]-lo)/span))
		}
	}

	for _, m := range res.Markers {
		if x, ok := l.column(m.Time); ok {
			vLine(dst, x, l.plot.Min.Y, l.plot.Max.Y-1, markerColor(m.Kind))
		}
	}

	strokeRect(dst, l.plot, black)
	drawTimeAxis(dst, l)
	drawFrequencyAxis(dst, l)
	drawColorBar(dst, l, lo, hi)
}

func drawTimeAxis(dst draw.Image, l spectrogramLayout) {
	base := l.plot.Max.Y
	for _, t := range niceTicks(l.tMin, l.tMax, 8) {
		x, ok := l.column(t)
		if !ok {
			continue
		}
		vLine(dst, x, base, base+4, black)
		drawText(dst, formatTick(t), x, base+6+textAscent(), alignCenter, black)
	}
	drawText(dst, "Time [s]", (l.plot.Min.X+l.plot.Max.X)/2, base+36, alignCenter, black)
}

func drawFrequencyAxis(dst draw.Image, l spectrogramLayout) {
	left := l.plot.Min.X
	for _, f := range niceTicks(math.Max(l.fMin, 0), l.fMax, 6) {
		y := l.row(f)
		if y < l.plot.Min.Y || y >= l.plot.Max.Y {
			continue
		}
		hLine(dst, left-4, left-1, y, black)
		drawText(dst, formatTick(f), left-6, y+textAscent()/2, alignRight, black)
	}
	drawText(dst, "Frequency [Hz]", left, l.plot.Min.Y-10, alignLeft, black)
}

// drawColorBar draws the vertical log10 power scale with its ticks.
func drawColorBar(dst draw.Image, l spectrogramLayout, lo, hi float64) {
	b := l.bar
	for y := b.Min.Y; y < b.Max.Y; y++ {
		v := (float64(b.Max.Y-1-y) + 0.5) / float64(b.Dy())
		hLine(dst, b.Min.X, b.Max.X-1, y, colorAt(v))
	}
	strokeRect(dst, b, black)

	if hi > lo {
		for _, v := range niceTicks(lo, hi, 6) {
			y := b.Max.Y - 1 - int(math.Floor((v-lo)/(hi-lo)*float64(b.Dy())))
			if y < b.Min.Y || y >= b.Max.Y {
				continue
			}
			hLine(dst, b.Max.X, b.Max.X+3, y, black)
			drawText(dst, fmt.Sprintf("1e%.1f", v), b.Max.X+6, y+textAscent()/2, alignLeft, black)
		}
	}
	drawText(dst, "Power [(m/s)^2/sqrt(Hz)]", b.Max.X+60, b.Min.Y-10, alignRight, black)
}
