// Package raster is a small software rasterizer for mesh previews: z-buffered
// triangles, flat lighting with Gouraud-blended vertex colours and ACES tone
// mapping.
package raster

import (
	"image"
	"image/color"

	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/viewmatrix"
)

// Margin is the empty border, in output pixels, around the fitted mesh.
const Margin = 16

// RenderMesh renders faces coloured per vertex, looking through view, into a
// (size*supersample)² image. The projection is returned so overlays can be
// drawn in the same screen space.
func RenderMesh(
	verts []mathutil.Vec3,
	faces [][3]int,
	colors []color.NRGBA,
	view mathutil.Mat3,
	size int,
	supersample int,
) (*image.NRGBA, viewmatrix.Projection) {
	supersample = max(supersample, 1)
	renderSize := size * supersample
	proj := viewmatrix.Fit(verts, view, renderSize, Margin*supersample)

	fb := NewFrameBuffer(renderSize, renderSize)
	if len(verts) == 0 {
		return fb.Image(), proj
	}
	lc := DefaultLightConfig()
	px, py, pz := proj.ProjectVertices(verts)

	def := color.NRGBA{R: 160, G: 160, B: 170, A: 255}
	for _, f := range faces {
		var cols [3]color.NRGBA
		for k, v := range f {
			cols[k] = def
			if v >= 0 && v < len(colors) {
				cols[k] = colors[v]
			}
		}
		RasterizeTriangle(fb, px, py, pz, f, cols, &lc)
	}
	return fb.Image(), proj
}
