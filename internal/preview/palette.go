package preview

import (
	"image/color"
	"math"

	"mesh-autorig/internal/skinning"
)

// JointColor returns a distinct, saturated colour for joint j. Hues step by
// the golden angle so neighbouring indices stay far apart.
func JointColor(j int) color.NRGBA {
	h := math.Mod(float64(j)*137.508, 360)
	r, g, b := hsv(h, 0.65, 0.95)
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func hsv(h, s, v float64) (uint8, uint8, uint8) {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to8 := func(f float64) uint8 { return uint8(math.Round((f + m) * 255)) }
	return to8(r), to8(g), to8(b)
}

// VertexColors blends joint colours by each vertex's weights.
func VertexColors(w skinning.Weights) []color.NRGBA {
	palette := make([]color.NRGBA, w.J)
	for j := range palette {
		palette[j] = JointColor(j)
	}
	out := make([]color.NRGBA, w.N)
	for v := range out {
		var r, g, b float64
		for j, x := range w.Row(v) {
			if x == 0 {
				continue
			}
			r += x * float64(palette[j].R)
			g += x * float64(palette[j].G)
			b += x * float64(palette[j].B)
		}
		out[v] = color.NRGBA{R: clamp(r), G: clamp(g), B: clamp(b), A: 255}
	}
	return out
}

func clamp(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}
