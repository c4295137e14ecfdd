// Package preview renders rig previews: the mesh shaded by skin weights with
// the skeleton drawn on top, encoded as WebP, TGA or PNG.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/gogpu/gg"

	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/mesh"
	"mesh-autorig/internal/postprocess"
	"mesh-autorig/internal/raster"
	"mesh-autorig/internal/skeleton"
	"mesh-autorig/internal/skinning"
	"mesh-autorig/internal/viewmatrix"
)

// ErrFormat reports an unknown output format.
var ErrFormat = errors.New("preview: unknown format")

// Options configures Render.
type Options struct {
	Size        int // output edge in pixels
	Supersample int
	// View maps Z-up world space to view space; zero means PreviewView.
	View mathutil.Mat3
	// Skeleton overlay is skipped when false.
	Overlay bool
}

// Render draws m coloured by w (uniform grey when w is empty) and, if asked,
// the bones of sk as lines with dots at joint heads.
func Render(m *mesh.Mesh, sk *skeleton.Skeleton, w skinning.Weights, opts Options) (image.Image, error) {
	size := max(opts.Size, 16)
	ss := max(opts.Supersample, 1)
	view := opts.View
	if view == (mathutil.Mat3{}) {
		view = mathutil.PreviewView
	}

	var colors []color.NRGBA
	if w.N == len(m.Vertices) && w.N > 0 {
		colors = VertexColors(w)
	}
	img, proj := raster.RenderMesh(m.Vertices, m.Faces, colors, view, size, ss)
	img = postprocess.Downsample(img, ss)
	proj = scaled(proj, ss)

	if !opts.Overlay || sk == nil || sk.Len() == 0 {
		return img, nil
	}
	return drawSkeleton(img, sk, proj)
}

// scaled maps a supersampled projection to output pixels.
func scaled(p viewmatrix.Projection, ss int) viewmatrix.Projection {
	p.Scale /= float64(ss)
	p.Size /= ss
	return p
}

func drawSkeleton(img image.Image, sk *skeleton.Skeleton, proj viewmatrix.Projection) (image.Image, error) {
	dc := gg.NewContextForImage(img)
	defer dc.Close()

	lw := max(float64(proj.Size)/160, 1)
	dc.SetLineWidth(lw)
	dc.SetRGB(1, 1, 1)
	for _, j := range sk.Joints {
		hx, hy, _ := proj.Project(j.Head)
		tx, ty, _ := proj.Project(j.Tail)
		dc.DrawLine(hx, hy, tx, ty)
	}
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("preview: stroke bones: %w", err)
	}

	for i, j := range sk.Joints {
		x, y, _ := proj.Project(j.Head)
		c := JointColor(i)
		dc.SetRGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
		dc.DrawCircle(x, y, 1.5*lw)
		if err := dc.Fill(); err != nil {
			return nil, fmt.Errorf("preview: fill joint %q: %w", j.Name, err)
		}
	}
	return dc.Image(), nil
}

// Encode writes img in format: "webp" (lossless), "tga" or "png".
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case "webp":
		return nativewebp.Encode(w, img, nil)
	case "tga":
		return tga.Encode(w, img)
	case "png":
		return png.Encode(w, img)
	}
	return fmt.Errorf("%w: %q", ErrFormat, format)
}

// WriteFile encodes img to path, creating parent directories.
func WriteFile(path string, img image.Image, format string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("preview: mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: create %s: %w", path, err)
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return fmt.Errorf("preview: encode %s: %w", path, err)
	}
	return f.Close()
}
