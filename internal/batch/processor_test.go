package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mesh-autorig/internal/meshio"
	"mesh-autorig/internal/meshtest"
	"mesh-autorig/internal/skinning"
)

func writeBoxOBJ(t *testing.T, path string, x, y, z float64) {
	t.Helper()
	m := meshtest.Extents(x, y, z)
	var b strings.Builder
	for _, v := range m.Vertices {
		fmt.Fprintf(&b, "v %g %g %g\n", v[0], v[1], v[2])
	}
	for _, f := range m.Faces {
		fmt.Fprintf(&b, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	weights := filepath.Join(dir, "weights")
	out := filepath.Join(dir, "out")
	for _, d := range []string{in, weights} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}

	writeBoxOBJ(t, filepath.Join(in, "wing.obj"), 10, 1, 1)
	writeBoxOBJ(t, filepath.Join(in, "cube.obj"), 1, 1, 1)
	if err := os.WriteFile(filepath.Join(in, "broken.obj"), []byte("v 1 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// The generic template has seven joints; give the cube predictor output.
	samples := meshio.Samples{
		Vertices: meshtest.Extents(1, 1, 1).Vertices,
		Weights:  make([][]float64, 8),
	}
	for i := range samples.Weights {
		samples.Weights[i] = make([]float64, 7)
		samples.Weights[i][i%7] = 1
	}
	if err := meshio.WriteSamples(filepath.Join(weights, "cube.json"), samples); err != nil {
		t.Fatal(err)
	}

	inputs := []string{
		filepath.Join(in, "wing.obj"),
		filepath.Join(in, "cube.obj"),
		filepath.Join(in, "broken.obj"),
	}
	results := Run(Config{
		OutputDir:     out,
		WeightsDir:    weights,
		ExportFormat:  "glb",
		Skinning:      skinning.DefaultConfig(),
		Preview:       true,
		PreviewFormat: "png",
		PreviewSize:   48,
		Supersample:   2,
		Workers:       2,
	}, inputs)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	wing, cube, broken := results[0], results[1], results[2]

	if !wing.Success || wing.Archetype != "bird" || !wing.SeededWeights {
		t.Errorf("wing = %+v", wing)
	}
	if !cube.Success || cube.Archetype != "generic" || cube.SeededWeights {
		t.Errorf("cube = %+v", cube)
	}
	if broken.Success || broken.Error == "" {
		t.Errorf("broken = %+v, want failure", broken)
	}
	for _, r := range []Result{wing, cube} {
		for _, p := range []string{r.Rig, r.Preview} {
			if _, err := os.Stat(p); err != nil {
				t.Errorf("%s: %v", r.Name, err)
			}
		}
	}
	if filepath.Ext(wing.Rig) != ".glb" {
		t.Errorf("rig = %s, want .glb", wing.Rig)
	}

	manifest := filepath.Join(out, "manifest.json")
	if err := WriteManifest(manifest, results); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatal(err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 || entries[0].Rig != "wing.glb" || entries[1].Preview != "cube.png" {
		t.Errorf("manifest = %+v", entries)
	}
}

func TestRunJSONExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "box.obj")
	writeBoxOBJ(t, path, 3, 2, 6)

	results := Run(Config{
		OutputDir:    filepath.Join(dir, "out"),
		ExportFormat: "json",
		Skinning:     skinning.DefaultConfig(),
	}, []string{path})
	if r := results[0]; !r.Success || filepath.Ext(r.Rig) != ".json" || r.Archetype != "quadruped" {
		t.Errorf("result = %+v", r)
	}
}
