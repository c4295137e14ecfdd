package preview

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"

	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/mesh"
	"mesh-autorig/internal/meshtest"
	"mesh-autorig/internal/skeleton"
	"mesh-autorig/internal/skinning"
)

func TestRender(t *testing.T) {
	m := meshtest.Extents(1, 1, 2)
	sk := skeleton.Fallback(mathutil.Vec3{0, 0, -1}, 2)
	w := skinning.NewWeights(len(m.Vertices), sk.Len())
	for v := 0; v < w.N; v++ {
		w.Row(v)[v%sk.Len()] = 1
	}

	for _, overlay := range []bool{false, true} {
		img, err := Render(&m, sk, w, Options{Size: 64, Supersample: 2, Overlay: overlay})
		if err != nil {
			t.Fatalf("overlay=%v: %v", overlay, err)
		}
		if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
			t.Fatalf("overlay=%v: bounds = %v, want 64×64", overlay, b)
		}
		if _, _, _, a := img.At(32, 32).RGBA(); a == 0 {
			t.Errorf("overlay=%v: centre pixel is transparent", overlay)
		}
		if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
			t.Errorf("overlay=%v: corner pixel alpha = %d, want 0", overlay, a)
		}
	}
}

func TestRenderEmptyMesh(t *testing.T) {
	var m mesh.Mesh
	img, err := Render(&m, nil, skinning.Weights{}, Options{Size: 32, Overlay: true})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 32 {
		t.Errorf("bounds = %v, want 32×32", b)
	}
}

func TestEncode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 5))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	decoders := map[string]func(*bytes.Reader) (image.Image, error){
		"webp": func(r *bytes.Reader) (image.Image, error) { return webp.Decode(r) },
		"png":  func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) },
		"tga":  func(r *bytes.Reader) (image.Image, error) { return tga.Decode(r) },
	}
	for format, decode := range decoders {
		var buf bytes.Buffer
		if err := Encode(&buf, img, format); err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		got, err := decode(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("%s: decode: %v", format, err)
		}
		if got.Bounds().Dx() != 8 || got.Bounds().Dy() != 5 {
			t.Errorf("%s: bounds = %v, want 8×5", format, got.Bounds())
		}
	}

	if err := Encode(&bytes.Buffer{}, img, "bmp"); !errors.Is(err, ErrFormat) {
		t.Errorf("bmp: err = %v, want ErrFormat", err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "p.png")
	if err := WriteFile(path, image.NewNRGBA(image.Rect(0, 0, 2, 2)), "png"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}
}

func TestVertexColors(t *testing.T) {
	w := skinning.NewWeights(2, 3)
	copy(w.Data, []float64{0, 1, 0, 0.5, 0, 0.5})
	got := VertexColors(w)
	if got[0] != JointColor(1) {
		t.Errorf("pure joint 1 = %v, want %v", got[0], JointColor(1))
	}
	a, b := JointColor(0), JointColor(2)
	if mid := (int(a.R) + int(b.R)) / 2; absDiff(int(got[1].R), mid) > 1 {
		t.Errorf("blend R = %d, want about %d", got[1].R, mid)
	}
	if JointColor(0) == JointColor(1) {
		t.Error("adjacent joints share a colour")
	}
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
