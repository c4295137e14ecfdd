// Package meshtest builds small closed meshes for tests.
package meshtest

import (
	"math"

	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/mesh"
)

// Box returns a closed, outward-wound box spanning lo..hi.
func Box(lo, hi mathutil.Vec3) mesh.Mesh {
	verts := make([]mathutil.Vec3, 8)
	for i := range verts {
		v := lo
		if i&1 != 0 {
			v[0] = hi[0]
		}
		if i&2 != 0 {
			v[1] = hi[1]
		}
		if i&4 != 0 {
			v[2] = hi[2]
		}
		verts[i] = v
	}
	return mesh.Mesh{
		Name:     "box",
		Vertices: verts,
		Faces: [][3]int{
			{0, 2, 3}, {0, 3, 1}, // -z
			{4, 5, 7}, {4, 7, 6}, // +z
			{0, 1, 5}, {0, 5, 4}, // -y
			{2, 6, 7}, {2, 7, 3}, // +y
			{0, 4, 6}, {0, 6, 2}, // -x
			{1, 3, 7}, {1, 7, 5}, // +x
		},
	}
}

// Extents returns a box centred at the origin with the given extents.
func Extents(x, y, z float64) mesh.Mesh {
	h := mathutil.Vec3{x / 2, y / 2, z / 2}
	return Box(h.Scale(-1), h)
}

// Tube returns a closed tube along axis (0, 1 or 2) from 0 to length, with
// rings ring vertices per slice. radius maps the normalised position t∈[0,1]
// to the ring radius.
func Tube(axis int, length float64, slices, ring int, radius func(t float64) float64) mesh.Mesh {
	u, w := (axis+1)%3, (axis+2)%3
	var m mesh.Mesh
	m.Name = "tube"
	for s := 0; s < slices; s++ {
		t := float64(s) / float64(slices-1)
		r := radius(t)
		for k := 0; k < ring; k++ {
			a := 2 * math.Pi * float64(k) / float64(ring)
			var v mathutil.Vec3
			v[axis] = t * length
			v[u] = r * math.Cos(a)
			v[w] = r * math.Sin(a)
			m.Vertices = append(m.Vertices, v)
		}
	}
	for s := 0; s+1 < slices; s++ {
		for k := 0; k < ring; k++ {
			a := s*ring + k
			b := s*ring + (k+1)%ring
			c := (s+1)*ring + k
			d := (s+1)*ring + (k+1)%ring
			m.Faces = append(m.Faces, [3]int{a, b, d}, [3]int{a, d, c})
		}
	}
	var start, end mathutil.Vec3
	end[axis] = length
	si := len(m.Vertices)
	m.Vertices = append(m.Vertices, start, end)
	last := (slices - 1) * ring
	for k := 0; k < ring; k++ {
		m.Faces = append(m.Faces,
			[3]int{si, (k + 1) % ring, k},
			[3]int{si + 1, last + k, last + (k+1)%ring},
		)
	}
	return m
}
