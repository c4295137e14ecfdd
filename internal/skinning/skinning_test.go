package skinning

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/skeleton"
)

func mustRows(t *testing.T, rows [][]float64) Weights {
	t.Helper()
	w, err := FromRows(rows)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

// strip returns n vertices zig-zagging along x joined by a triangle strip.
func strip(n int) ([]mathutil.Vec3, [][3]int) {
	verts := make([]mathutil.Vec3, n)
	for i := range verts {
		verts[i] = mathutil.Vec3{float64(i) * 0.5, float64(i % 2), 0}
	}
	var faces [][3]int
	for i := 0; i+2 < n; i++ {
		faces = append(faces, [3]int{i, i + 1, i + 2})
	}
	return verts, faces
}

func randomRows(rng *rand.Rand, n, j int) [][]float64 {
	rows := make([][]float64, n)
	for v := range rows {
		rows[v] = make([]float64, j)
		var sum float64
		for k := range rows[v] {
			rows[v][k] = rng.Float64()
			sum += rows[v][k]
		}
		for k := range rows[v] {
			rows[v][k] /= sum
		}
	}
	return rows
}

func TestRunNormalizesRows(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	verts, faces := strip(40)
	parents := []int{-1, 0, 1, 1, 0}
	samples := make([]mathutil.Vec3, 15)
	for i := range samples {
		samples[i] = mathutil.Vec3{rng.Float64() * 20, rng.Float64(), 0}
	}
	sampled := mustRows(t, randomRows(rng, len(samples), len(parents)))

	for _, m := range []Method{MethodNearest, MethodInverseDistance, MethodGaussian, MethodAverage} {
		cfg := DefaultConfig()
		cfg.SampleMethod = m
		cfg.IterSteps = 3
		res, err := Run(Input{
			Vertices:       verts,
			Faces:          faces,
			Parents:        parents,
			SamplePoints:   samples,
			SampledWeights: sampled,
		}, cfg)
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		if res.Weights.N != len(verts) || res.Weights.J != len(parents) {
			t.Fatalf("%s: shape %d×%d", m, res.Weights.N, res.Weights.J)
		}
		for v := 0; v < res.Weights.N; v++ {
			var sum float64
			for _, x := range res.Weights.Row(v) {
				if x < 0 {
					t.Fatalf("%s: vertex %d has negative weight %v", m, v, x)
				}
				sum += x
			}
			if math.Abs(sum-1) > 1e-5 {
				t.Errorf("%s: vertex %d sums to %v", m, v, sum)
			}
		}
	}
}

func TestRunSingleNeighbourWithoutDiffusionCopies(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	verts, faces := strip(12)
	rows := randomRows(rng, len(verts), 3)
	cfg := DefaultConfig()
	cfg.NearestSamples = 1
	cfg.IterSteps = 0
	cfg.Threshold = 0

	res, err := Run(Input{
		Vertices:       verts,
		Faces:          faces,
		Parents:        []int{-1, 0, 0},
		SamplePoints:   verts,
		SampledWeights: mustRows(t, rows),
	}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for v, want := range rows {
		got := res.Weights.Row(v)
		for j := range want {
			if math.Abs(got[j]-want[j]) > 1e-12 {
				t.Fatalf("vertex %d = %v, want %v", v, got, want)
			}
		}
	}
	if len(res.ZeroWeightVertices) != 0 {
		t.Errorf("ZeroWeightVertices = %v, want none", res.ZeroWeightVertices)
	}
}

func TestRunEmptyVertices(t *testing.T) {
	res, err := Run(Input{
		Parents:        []int{-1, 0},
		SamplePoints:   []mathutil.Vec3{{0, 0, 0}},
		SampledWeights: mustRows(t, [][]float64{{1, 0}}),
	}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Weights.N != 0 || res.Weights.J != 2 {
		t.Errorf("shape = %d×%d, want 0×2", res.Weights.N, res.Weights.J)
	}
}

func TestRunErrors(t *testing.T) {
	verts, faces := strip(4)
	good := Input{
		Vertices:       verts,
		Faces:          faces,
		Parents:        []int{-1, 0},
		SamplePoints:   verts[:2],
		SampledWeights: mustRows(t, [][]float64{{1, 0}, {0, 1}}),
	}
	tests := []struct {
		name string
		edit func(in *Input, cfg *Config)
		want error
	}{
		{"joint count", func(in *Input, _ *Config) { in.Parents = []int{-1, 0, 1} }, ErrShapeMismatch},
		{"bad parents", func(in *Input, _ *Config) { in.Parents = []int{-1, 1} }, skeleton.ErrInvalidParent},
		{"face range", func(in *Input, _ *Config) { in.Faces = [][3]int{{0, 1, 9}} }, ErrShapeMismatch},
		{"no samples", func(in *Input, _ *Config) {
			in.SamplePoints = nil
			in.SampledWeights = Weights{J: 2}
		}, ErrNoSamples},
		{"sample rows", func(in *Input, _ *Config) { in.SamplePoints = verts[:3] }, ErrShapeMismatch},
		{"method", func(_ *Input, cfg *Config) { cfg.SampleMethod = "cubic" }, ErrUnknownMethod},
		{"nan weight", func(in *Input, _ *Config) {
			in.SampledWeights = mustRows(t, [][]float64{{math.NaN(), 1}, {0, 1}})
		}, ErrNonFinite},
		{"infinite weight", func(in *Input, _ *Config) {
			in.SampledWeights = mustRows(t, [][]float64{{1, 0}, {math.Inf(1), 1}})
		}, ErrNonFinite},
		{"negative weight", func(in *Input, _ *Config) {
			in.SampledWeights = mustRows(t, [][]float64{{1, -0.5}, {0, 1}})
		}, ErrNonFinite},
		{"nan vertex", func(in *Input, _ *Config) {
			in.Vertices = append([]mathutil.Vec3{{math.NaN(), 0, 0}}, verts[1:]...)
		}, ErrNonFinite},
		{"infinite sample", func(in *Input, _ *Config) {
			in.SamplePoints = []mathutil.Vec3{{0, 0, 0}, {0, math.Inf(-1), 0}}
		}, ErrNonFinite},
		{"negative threshold", func(_ *Input, cfg *Config) { cfg.Threshold = -0.1 }, ErrInvalidThreshold},
		{"nan threshold", func(_ *Input, cfg *Config) { cfg.Threshold = math.NaN() }, ErrInvalidThreshold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, cfg := good, DefaultConfig()
			tt.edit(&in, &cfg)
			if _, err := Run(in, cfg); !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransferMethods(t *testing.T) {
	samples := []mathutil.Vec3{{0, 0, 0}, {2, 0, 0}}
	weights := mustRows(t, [][]float64{{1, 0}, {0, 1}})
	targets := []mathutil.Vec3{{0.5, 0, 0}}
	g := 1 / (1 + math.Exp(-2))

	tests := []struct {
		method Method
		want   float64 // weight of joint 0
	}{
		{MethodNearest, 1},
		{MethodInverseDistance, 0.9},
		{MethodGaussian, g},
		{MethodAverage, 0.5},
	}
	for _, tt := range tests {
		cfg := Config{SampleMethod: tt.method, NearestSamples: 2, Alpha: 2}
		w, err := Transfer(samples, weights, targets, cfg)
		if err != nil {
			t.Fatalf("%s: %v", tt.method, err)
		}
		row := w.Row(0)
		if math.Abs(row[0]-tt.want) > 1e-12 || math.Abs(row[1]-(1-tt.want)) > 1e-12 {
			t.Errorf("%s: row = %v, want [%v %v]", tt.method, row, tt.want, 1-tt.want)
		}
	}
}

func TestRunLargeAlphaOnCoincidentSamples(t *testing.T) {
	verts := []mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	cfg := DefaultConfig()
	cfg.Alpha = 40
	cfg.NearestSamples = 3
	cfg.IterSteps = 0
	cfg.Threshold = 0
	rows := [][]float64{{1, 0}, {0, 1}, {0.5, 0.5}}

	res, err := Run(Input{
		Vertices:       verts,
		Faces:          [][3]int{{0, 1, 2}},
		Parents:        []int{-1, 0},
		SamplePoints:   verts,
		SampledWeights: mustRows(t, rows),
	}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for v, want := range rows {
		got := res.Weights.Row(v)
		for j := range want {
			if math.IsNaN(got[j]) || math.Abs(got[j]-want[j]) > 1e-9 {
				t.Errorf("vertex %d = %v, want %v", v, got, want)
				break
			}
		}
	}
}

func TestTransferMoreNeighboursThanSamples(t *testing.T) {
	samples := []mathutil.Vec3{{0, 0, 0}, {1, 0, 0}}
	weights := mustRows(t, [][]float64{{1, 0}, {0, 1}})
	cfg := Config{SampleMethod: MethodAverage, NearestSamples: 10}
	w, err := Transfer(samples, weights, []mathutil.Vec3{{5, 5, 5}}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := w.Row(0); got[0] != 0.5 || got[1] != 0.5 {
		t.Errorf("row = %v, want [0.5 0.5]", got)
	}
}

func TestDiffuseFollowsHierarchy(t *testing.T) {
	w := NewWeights(3, 2)
	copy(w.Data, []float64{1, 0, 0, 1, 0, 1})
	input := w.Clone()
	faces := [][3]int{{0, 1, 2}}

	got := Diffuse(w, faces, []int{-1, 0}, 1)
	for v := 0; v < 3; v++ {
		row := got.Row(v)
		if math.Abs(row[0]-1.0/3) > 1e-12 || math.Abs(row[1]-2.0/3) > 1e-12 {
			t.Errorf("vertex %d = %v, want [1/3 2/3]", v, row)
		}
	}
	if !slices.Equal(w.Data, input.Data) {
		t.Errorf("Diffuse modified its input: %v", w.Data)
	}
	if same := Diffuse(w, faces, []int{-1, 0}, 0); !slices.Equal(same.Data, input.Data) {
		t.Errorf("zero steps = %v, want input", same.Data)
	}
}

func TestDiffuseSpreadsAlongStrip(t *testing.T) {
	_, faces := strip(10)
	w := NewWeights(10, 2)
	for v := 0; v < 10; v++ {
		if v < 5 {
			w.Row(v)[0] = 1
		} else {
			w.Row(v)[1] = 1
		}
	}
	got := Diffuse(w, faces, []int{-1, 0}, 2)
	// The hard boundary between vertices 4 and 5 is softened on both sides.
	if x := got.Row(4)[1]; !(x > 0 && x < 1) {
		t.Errorf("vertex 4 child weight = %v, want in (0,1)", x)
	}
	if x := got.Row(5)[0]; !(x > 0 && x < 1) {
		t.Errorf("vertex 5 root weight = %v, want in (0,1)", x)
	}
	// Far from the boundary nothing changes.
	if row := got.Row(0); math.Abs(row[0]-1) > 1e-12 || row[1] != 0 {
		t.Errorf("vertex 0 = %v, want [1 0]", row)
	}
}

func TestFinalizeZeroWeightFallback(t *testing.T) {
	w := NewWeights(2, 3)
	copy(w.Data, []float64{0.005, 0.004, 0.001, 0.2, 0.005, 0.6})
	got, zero := Finalize(w, 0.01, nil)
	if !slices.Equal(zero, []int{0}) {
		t.Errorf("zero = %v, want [0]", zero)
	}
	if row := got.Row(0); !slices.Equal(row, []float64{1, 0, 0}) {
		t.Errorf("row 0 = %v, want [1 0 0]", row)
	}
	row := got.Row(1)
	if row[1] != 0 || math.Abs(row[0]-0.25) > 1e-12 || math.Abs(row[2]-0.75) > 1e-12 {
		t.Errorf("row 1 = %v, want [0.25 0 0.75]", row)
	}
}

func TestTopK(t *testing.T) {
	w := NewWeights(1, 5)
	copy(w.Data, []float64{0.1, 0.4, 0.2, 0.2, 0.1})
	got := w.TopK(0, 3)
	want := []Influence{{1, 0.5}, {2, 0.25}, {3, 0.25}}
	if len(got) != len(want) {
		t.Fatalf("TopK = %v, want %v", got, want)
	}
	for i := range want {
		if got[i].Joint != want[i].Joint || math.Abs(got[i].Weight-want[i].Weight) > 1e-12 {
			t.Errorf("TopK[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if d := w.Dominant(0); d != 1 {
		t.Errorf("Dominant = %d, want 1", d)
	}
}

func TestFromRowsRagged(t *testing.T) {
	if _, err := FromRows([][]float64{{1, 0}, {1}}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("FromRows error = %v, want ErrShapeMismatch", err)
	}
	w := mustRows(t, [][]float64{{0.5, 0.5}, {1, 0}})
	rows := w.Rows()
	rows[0][0] = 9
	if w.Row(0)[0] != 0.5 {
		t.Error("Rows() aliases the matrix")
	}
}

func TestSeedFromSkeleton(t *testing.T) {
	sk := skeleton.Fallback(mathutil.Vec3{}, 1)
	positions := []mathutil.Vec3{{0.05, 0, 0.2}, {0.05, 0, 0.7}, {0.05, 0, 0.95}}
	wantDominant := []int{0, 1, 2}

	w := SeedFromSkeleton(positions, sk, DefaultConfig())
	for v := range positions {
		var sum float64
		for _, x := range w.Row(v) {
			sum += x
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d sums to %v", v, sum)
		}
		if d := w.Dominant(v); d != wantDominant[v] {
			t.Errorf("Dominant(%d) = %d, want %d", v, d, wantDominant[v])
		}
	}

	cfg := DefaultConfig()
	cfg.NearestSamples = 1
	one := SeedFromSkeleton(positions, sk, cfg)
	for v := range positions {
		if row := one.Row(v); row[wantDominant[v]] != 1 {
			t.Errorf("single-bone row %d = %v", v, row)
		}
	}
}
