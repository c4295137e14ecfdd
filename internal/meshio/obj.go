// Package meshio reads meshes from Wavefront OBJ files and sampled skin
// weights from JSON.
package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/mesh"
)

// ErrCharset reports an unsupported object-name charset.
var ErrCharset = errors.New("meshio: unsupported charset")

var charsets = map[string]*charmap.Charmap{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"windows-1251": charmap.Windows1251,
	"cp1251":       charmap.Windows1251,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"cp437":        charmap.CodePage437,
	"koi8-r":       charmap.KOI8R,
}

// decoderFor returns nil for UTF-8 (no conversion).
func decoderFor(name string) (*encoding.Decoder, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "", "utf-8", "utf8":
		return nil, nil
	default:
		cm, ok := charsets[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrCharset, name)
		}
		return cm.NewDecoder(), nil
	}
}

// ReadOBJ reads an OBJ file. Object names are decoded from charset; empty or
// "utf-8" leaves them as is. The mesh is named after the first o/g
// statement, else the file's base name.
func ReadOBJ(path, charset string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("meshio: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := ParseOBJ(f, charset)
	if err != nil {
		return nil, fmt.Errorf("meshio: parse %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// ParseOBJ reads positions ("v") and faces ("f") from r. Polygons are
// triangulated as fans; 1-based and negative (relative) indices are
// accepted, texture and normal references are ignored.
func ParseOBJ(r io.Reader, charset string) (*mesh.Mesh, error) {
	dec, err := decoderFor(charset)
	if err != nil {
		return nil, err
	}

	m := &mesh.Mesh{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			var v mathutil.Vec3
			for k := 0; k < 3; k++ {
				v[k], err = strconv.ParseFloat(fields[1+k], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
			}
			m.Vertices = append(m.Vertices, v)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			poly := make([]int, 0, len(fields)-1)
			for _, s := range fields[1:] {
				idx, err := faceIndex(s, len(m.Vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				poly = append(poly, idx)
			}
			for k := 1; k+1 < len(poly); k++ {
				m.Faces = append(m.Faces, [3]int{poly[0], poly[k], poly[k+1]})
			}
		case "o", "g":
			if m.Name != "" || len(fields) < 2 {
				continue
			}
			name := strings.Join(fields[1:], " ")
			if dec != nil {
				if name, err = dec.String(name); err != nil {
					return nil, fmt.Errorf("line %d: decode name: %w", lineNo, err)
				}
			}
			m.Name = name
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// faceIndex converts "12", "12/4" or "-1//3" to a 0-based vertex index.
// Range checking is left to mesh.Validate.
func faceIndex(s string, nverts int) (int, error) {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("face index %q: %w", s, err)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		return nverts + n, nil
	}
	return 0, fmt.Errorf("face index 0 is invalid")
}
