package raster

import (
	"image/color"
	"math"

	"mesh-autorig/internal/mathutil"
)

// RasterizeTriangle fills one triangle with per-vertex colours blended
// barycentrically, depth tested against fb.ZBuf, flat lit per face and
// tone mapped. Out-of-range or degenerate triangles are skipped.
//
// Inner loop is allocation free.
func RasterizeTriangle(
	fb *FrameBuffer,
	px, py, pz []float64,
	idx [3]int,
	cols [3]color.NRGBA,
	lc *LightConfig,
) {
	nv := len(px)
	for _, i := range idx {
		if i < 0 || i >= nv {
			return
		}
	}

	x0, y0, z0 := px[idx[0]], py[idx[0]], pz[idx[0]]
	x1, y1, z1 := px[idx[1]], py[idx[1]], pz[idx[1]]
	x2, y2, z2 := px[idx[2]], py[idx[2]], pz[idx[2]]

	n := mathutil.Vec3{x1 - x0, y1 - y0, z1 - z0}.Cross(mathutil.Vec3{x2 - x0, y2 - y0, z2 - z0})
	if n.Len() < 1e-8 {
		return
	}
	shade := lc.ComputeShade(n.Normalize()) * lc.Exposure

	// Linear vertex colours, premultiplied by shade.
	var lin [3][3]float64
	for k, c := range cols {
		lin[k] = [3]float64{
			srgbToLinear[c.R] * shade,
			srgbToLinear[c.G] * shade,
			srgbToLinear[c.B] * shade,
		}
	}

	minX := max(int(math.Min(math.Min(x0, x1), x2)), 0)
	maxX := min(int(math.Max(math.Max(x0, x1), x2))+1, fb.Width-1)
	minY := max(int(math.Min(math.Min(y0, y1), y2)), 0)
	maxY := min(int(math.Max(math.Max(y0, y1), y2))+1, fb.Height-1)
	if minX >= maxX || minY >= maxY {
		return
	}

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			for ch := 0; ch < 3; ch++ {
				v := w0*lin[0][ch] + w1*lin[1][ch] + w2*lin[2][ch]
				fb.Color[pxIdx+ch] = clamp255(math.Pow(ACESTonemap(v), lc.InvGamma) * 255)
			}
			fb.Color[pxIdx+3] = 255
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
