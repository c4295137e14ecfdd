package meshio

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"mesh-autorig/internal/mathutil"
)

const quadOBJ = `# unit quad and a pentagon
o Plane
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1/1/1 2/1/1 3/1/1 4/1/1
v 2 0 0
f -1 -4 -3
`

func TestParseOBJ(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader(quadOBJ), "")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "Plane" {
		t.Errorf("Name = %q, want Plane", m.Name)
	}
	if len(m.Vertices) != 5 {
		t.Fatalf("got %d vertices, want 5", len(m.Vertices))
	}
	if m.Vertices[4] != (mathutil.Vec3{2, 0, 0}) {
		t.Errorf("vertex 4 = %v", m.Vertices[4])
	}
	want := [][3]int{{0, 1, 2}, {0, 2, 3}, {4, 1, 2}}
	if !slices.Equal(m.Faces, want) {
		t.Errorf("Faces = %v, want %v", m.Faces, want)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad coordinate", "v 1 x 3\n"},
		{"short face", "v 0 0 0\nf 1 1\n"},
		{"zero index", "v 0 0 0\nf 0 1 1\n"},
		{"bad index", "v 0 0 0\nf a 1 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOBJ(strings.NewReader(tt.src), ""); err == nil {
				t.Errorf("ParseOBJ(%q) = nil error", tt.src)
			}
		})
	}
}

func TestParseOBJCharset(t *testing.T) {
	m, err := ParseOBJ(strings.NewReader("o Caf\xe9\nv 0 0 0\n"), "windows-1252")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "Café" {
		t.Errorf("Name = %q, want Café", m.Name)
	}
	if _, err := ParseOBJ(strings.NewReader(""), "ebcdic"); !errors.Is(err, ErrCharset) {
		t.Errorf("unknown charset error = %v, want ErrCharset", err)
	}
}

func TestReadOBJNamesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crate.obj")
	if err := os.WriteFile(path, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := ReadOBJ(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "crate" || len(m.Faces) != 1 {
		t.Errorf("ReadOBJ = %q with %d faces", m.Name, len(m.Faces))
	}
}

func TestSamplesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	in := Samples{
		Vertices: []mathutil.Vec3{{0, 0, 0}, {1, 2, 3}},
		Weights:  [][]float64{{1, 0}, {0.25, 0.75}},
	}
	if err := WriteSamples(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadSamples(path)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(out.Vertices, in.Vertices) || !slices.Equal(out.Weights[1], in.Weights[1]) {
		t.Errorf("ReadSamples = %+v, want %+v", out, in)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"vertices":[[0,0,0]],"weights":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSamples(bad); err == nil {
		t.Error("ReadSamples(mismatched) = nil error")
	}
}
