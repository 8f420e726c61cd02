package render

import (
	"image/color"
	"math"
)

// inferno anchor colours sampled at equal steps from 0 to 1
var inferno = []color.RGBA{
	{0, 0, 4, 255},
	{31, 12, 72, 255},
	{85, 15, 109, 255},
	{136, 34, 106, 255},
	{186, 54, 85, 255},
	{227, 89, 51, 255},
	{249, 140, 10, 255},
	{249, 201, 50, 255},
	{252, 255, 164, 255},
}

// colorAt maps v in [0, 1] onto the inferno colour map. Values outside the
// range are clamped; NaN maps to the lowest colour.
func colorAt(v float64) color.RGBA {
	if math.IsNaN(v) || v <= 0 {
		return inferno[0]
	}
	if v >= 1 {
		return inferno[len(inferno)-1]
	}
	pos := v * float64(len(inferno)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := inferno[i], inferno[i+1]
	return color.RGBA{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: 255,
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
