// Package viewmatrix fits an orthographic preview camera around a mesh.
package viewmatrix

import (
	"math"

	"mesh-autorig/internal/mathutil"
)

// Projection maps world points to screen pixels: X right, Y down, larger Z
// nearer the viewer.
type Projection struct {
	R      mathutil.Mat3
	Center mathutil.Vec3 // view-space centre of the fitted bounds
	Scale  float64
	Size   int
}

// Fit centres the view-space bounds of pts in a size×size square, leaving
// margin pixels on every side.
func Fit(pts []mathutil.Vec3, R mathutil.Mat3, size, margin int) Projection {
	p := Projection{R: R, Scale: 1, Size: size}
	if len(pts) == 0 {
		return p
	}

	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range pts {
		t := R.MulVec3(v)
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], t[k])
			hi[k] = math.Max(hi[k], t[k])
		}
	}
	p.Center = lo.Add(hi).Scale(0.5)

	span := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if span < 0.001 {
		span = 0.001
	}
	p.Scale = float64(size-2*margin) / span
	return p
}

// Project returns the screen position and depth of v.
func (p Projection) Project(v mathutil.Vec3) (x, y, z float64) {
	t := p.R.MulVec3(v)
	half := float64(p.Size) / 2
	return (t[0]-p.Center[0])*p.Scale + half, -(t[1]-p.Center[1])*p.Scale + half, t[2]
}

// ProjectVertices transforms 3D vertices to 2D screen coordinates.
// Returns px, py, pz slices (screen X, screen Y, depth).
func (p Projection) ProjectVertices(verts []mathutil.Vec3) ([]float64, []float64, []float64) {
	n := len(verts)
	px := make([]float64, n)
	py := make([]float64, n)
	pz := make([]float64, n)
	for i, v := range verts {
		px[i], py[i], pz[i] = p.Project(v)
	}
	return px, py, pz
}
