package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"

	"seismicview/internal/analysis"
)

func toDrawing(c interface{ RGBA() (r, g, b, a uint32) }) drawing.Color {
	r, g, b, a := c.RGBA()
	return drawing.Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// drawTrace renders the velocity panel with go-chart and decodes it back
// into an image for composition.
func (r *Renderer) drawTrace(res *analysis.Result, width, height int) (image.Image, error) {
	xs, ys := decimate(res.Series.Time, res.Series.Velocity, r.cfg.MaxTracePoints)
	x0, x1 := res.Series.Time[0], res.Series.Time[len(res.Series.Time)-1]

	thr := res.Envelope.Threshold
	lo := min(floats.Min(ys), thr)
	hi := max(floats.Max(ys), thr)
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	lo, hi = lo-pad, hi+pad

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "Velocity (m/s)",
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: toDrawing(traceBlue), StrokeWidth: 1},
		},
		chart.ContinuousSeries{
			Name:    "Threshold",
			XValues: []float64{x0, x1},
			YValues: []float64{thr, thr},
			Style:   chart.Style{StrokeColor: toDrawing(thresholdColor), StrokeWidth: 1},
		},
		chart.ContinuousSeries{
			XValues: []float64{x0, x1},
			YValues: []float64{thr, thr},
			Style: chart.Style{
				StrokeColor:     toDrawing(markerGreen),
				StrokeWidth:     1,
				StrokeDashArray: []float64{6, 4},
			},
		},
	}
	for _, m := range res.Markers {
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{m.Time, m.Time},
			YValues: []float64{lo, hi},
			Style:   chart.Style{StrokeColor: toDrawing(markerColor(m.Kind)), StrokeWidth: 1.5},
		})
	}

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name:           "Time (s)",
			Range:          &chart.ContinuousRange{Min: x0, Max: x1},
			ValueFormatter: tickFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Velocity (m/s)",
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			ValueFormatter: tickFormatter,
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render: %w", err)
	}
	return png.Decode(&buf)
}

func tickFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return formatTick(f)
	}
	return ""
}

// decimate keeps the minimum and maximum of each bucket, in their original
// order, so spikes survive the reduction.
func decimate(xs, ys []float64, maxPoints int) ([]float64, []float64) {
	n := len(xs)
	if maxPoints < 4 || n <= maxPoints {
		return xs, ys
	}
	buckets := maxPoints / 2
	outX := make([]float64, 0, buckets*2)
	outY := make([]float64, 0, buckets*2)
	for b := 0; b < buckets; b++ {
		lo, hi := b*n/buckets, (b+1)*n/buckets
		if lo >= hi {
			continue
		}
		minI, maxI := lo, lo
		for i := lo + 1; i < hi; i++ {
			if ys[i] < ys[minI] {
				minI = i
			}
			if ys[i] > ys[maxI] {
				maxI = i
			}
		}
		first, second := minI, maxI
		if first > second {
			first, second = second, first
		}
		outX = append(outX, xs[first])
		outY = append(outY, ys[first])
		if second != first {
			outX = append(outX, xs[second])
			outY = append(outY, ys[second])
		}
	}
	return outX, outY
}
