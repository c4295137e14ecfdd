// Package mesh holds the triangle-mesh data model consumed by the rigging
// core. Meshes are owned by the caller and never mutated here.
package mesh

import (
	"errors"
	"fmt"

	"mesh-autorig/internal/mathutil"
)

var (
	// ErrIndexOutOfRange reports a face that references a missing vertex.
	ErrIndexOutOfRange = errors.New("mesh: face index out of range")
	// ErrNonFinite reports a vertex coordinate that is NaN or infinite.
	ErrNonFinite = errors.New("mesh: non-finite vertex coordinate")
)

// Mesh is an indexed triangle mesh. Z is up.
type Mesh struct {
	Name     string
	Vertices []mathutil.Vec3
	Faces    [][3]int
}

// Validate checks the loader contract: every face index is in range and every
// coordinate is finite.
func (m *Mesh) Validate() error {
	for i, v := range m.Vertices {
		if !v.IsFinite() {
			return fmt.Errorf("vertex %d: %w", i, ErrNonFinite)
		}
	}
	n := len(m.Vertices)
	for fi, f := range m.Faces {
		for _, vi := range f {
			if vi < 0 || vi >= n {
				return fmt.Errorf("face %d references vertex %d of %d: %w", fi, vi, n, ErrIndexOutOfRange)
			}
		}
	}
	return nil
}

// Empty reports whether the mesh has no vertices.
func (m *Mesh) Empty() bool {
	return len(m.Vertices) == 0
}

// TriangleArea returns the area of face f.
func (m *Mesh) TriangleArea(f [3]int) float64 {
	a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	return b.Sub(a).Cross(c.Sub(a)).Len() / 2
}

// SurfaceArea sums all triangle areas.
func (m *Mesh) SurfaceArea() float64 {
	var area float64
	for _, f := range m.Faces {
		area += m.TriangleArea(f)
	}
	return area
}

// SignedVolume sums signed tetrahedra (origin, a, b, c). The result is the
// enclosed volume only for closed, consistently wound meshes.
func (m *Mesh) SignedVolume() float64 {
	var vol float64
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		vol += a.Dot(b.Cross(c)) / 6
	}
	return vol
}
