package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var labelFace = basicfont.Face7x13

type textAlign int

const (
	alignLeft textAlign = iota
	alignCenter
	alignRight
)

// drawText writes s with its baseline at y. x is the left edge, centre or
// right edge depending on align.
func drawText(dst draw.Image, s string, x, y int, align textAlign, col color.Color) {
	width := textWidth(s)
	switch align {
	case alignCenter:
		x -= width / 2
	case alignRight:
		x -= width
	}
	dr := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: labelFace,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	dr.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(labelFace, s).Ceil()
}

func textAscent() int {
	return labelFace.Metrics().Ascent.Ceil()
}

func fillRect(dst draw.Image, r image.Rectangle, col color.Color) {
	draw.Draw(dst, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func strokeRect(dst draw.Image, r image.Rectangle, col color.Color) {
	hLine(dst, r.Min.X, r.Max.X-1, r.Min.Y, col)
	hLine(dst, r.Min.X, r.Max.X-1, r.Max.Y-1, col)
	vLine(dst, r.Min.X, r.Min.Y, r.Max.Y-1, col)
	vLine(dst, r.Max.X-1, r.Min.Y, r.Max.Y-1, col)
}

func hLine(dst draw.Image, x0, x1, y int, col color.Color) {
	for x := x0; x <= x1; x++ {
		dst.Set(x, y, col)
	}
}

func vLine(dst draw.Image, x, y0, y1 int, col color.Color) {
	for y := y0; y <= y1; y++ {
		dst.Set(x, y, col)
	}
}

// niceTicks returns roughly target evenly spaced round values within [lo, hi].
func niceTicks(lo, hi float64, target int) []float64 {
	if !(hi > lo) || target < 2 {
		return []float64{lo}
	}
	step := niceNum(niceNum(hi-lo, false)/float64(target-1), true)
	var ticks []float64
	for v := math.Ceil(lo/step) * step; v <= hi+step*1e-9; v += step {
		// snap to the step to drop accumulated float noise
		ticks = append(ticks, math.Round(v/step)*step)
	}
	return ticks
}

func niceNum(x float64, round bool) float64 {
	exp := math.Floor(math.Log10(x))
	f := x / math.Pow(10, exp)
	var nf float64
	switch {
	case round && f < 1.5:
		nf = 1
	case round && f < 3:
		nf = 2
	case round && f < 7:
		nf = 5
	case round:
		nf = 10
	case f <= 1:
		nf = 1
	case f <= 2:
		nf = 2
	case f <= 5:
		nf = 5
	default:
		nf = 10
	}
	return nf * math.Pow(10, exp)
}

func formatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e5 || abs < 1e-3 {
		return fmt.Sprintf("%.1e", v)
	}
	return fmt.Sprintf("%g", math.Round(v*1e6)/1e6)
}
