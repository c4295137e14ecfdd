package hierarchy

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/skeleton"
	"mesh-autorig/internal/templates"
)

func randomHeads(rng *rand.Rand, n int) []mathutil.Vec3 {
	heads := make([]mathutil.Vec3, n)
	for i := range heads {
		heads[i] = mathutil.Vec3{rng.Float64()*4 - 2, rng.Float64()*4 - 2, rng.Float64() * 4}
	}
	return heads
}

func TestParentsPrecedeChildren(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, a := range templates.Archetypes() {
		tpl := templates.MustLookup(a)
		for trial := 0; trial < 25; trial++ {
			parents, _ := ResolveParents(tpl.Bones, randomHeads(rng, len(tpl.Bones)))
			if parents[0] != skeleton.NoParent {
				t.Fatalf("%s: parent[0] = %d, want NoParent", a, parents[0])
			}
			for i := 1; i < len(parents); i++ {
				if parents[i] < 0 || parents[i] >= i {
					t.Fatalf("%s trial %d: parent[%d] = %d, want in [0,%d)", a, trial, i, parents[i], i)
				}
			}
		}
	}
}

func TestBirdParents(t *testing.T) {
	tpl := templates.MustLookup(templates.Bird)
	heads := make([]mathutil.Vec3, len(tpl.Bones))
	for i := range heads {
		heads[i] = mathutil.Vec3{float64(i), 0, 0}
	}
	sk, err := Build(tpl.Bones, heads, Options{})
	if err != nil {
		t.Fatal(err)
	}
	_, sources := ResolveParents(tpl.Bones, heads)

	tests := []struct {
		bone, parent string
		source       Source
	}{
		{"Hips", "Root", SourceExplicit},
		{"Spine1", "Hips", SourceExplicit},
		{"Neck1", "Spine4", SourceExplicit},
		{"Head", "Neck2", SourceExplicit},
		{"Beak", "Head", SourceExplicit},
		{"LeftWingShoulder", "Spine4", SourceExplicit},
		{"RightWingFinger2", "RightWingFinger1", SourceExplicit},
		{"LeftWingFeather3", "LeftWingHand", SourcePattern},
		{"RightWingTip2", "RightWingFeather2", SourcePattern},
		{"LeftToe1", "LeftFoot", SourcePattern},
		{"RightClaw3", "RightToe3", SourcePattern},
		{"Tail1", "Hips", SourceExplicit},
		{"Tail5", "Tail4", SourceExplicit},
	}
	for _, tt := range tests {
		i := sk.Index(tt.bone)
		if i < 0 {
			t.Fatalf("missing %s", tt.bone)
		}
		p := sk.Joints[i].Parent
		if got := sk.Joints[p].Name; got != tt.parent {
			t.Errorf("parent(%s) = %s, want %s", tt.bone, got, tt.parent)
		}
		if sources[i] != tt.source {
			t.Errorf("source(%s) = %v, want %v", tt.bone, sources[i], tt.source)
		}
	}
}

func TestNearestFallback(t *testing.T) {
	names := []string{"Root", "Blob", "Thing", "Other"}
	heads := []mathutil.Vec3{{0, 0, 0}, {5, 0, 0}, {6, 0, 0}, {0.5, 0, 0}}
	parents, sources := ResolveParents(names, heads)
	want := []int{skeleton.NoParent, 0, 1, 0}
	for i := range want {
		if parents[i] != want[i] {
			t.Errorf("parent[%d] = %d, want %d", i, parents[i], want[i])
		}
	}
	if sources[0] != SourceRoot || sources[2] != SourceNearest {
		t.Errorf("sources = %v", sources)
	}
}

func TestNearestTieKeepsLowestIndex(t *testing.T) {
	names := []string{"Root", "A", "B"}
	heads := []mathutil.Vec3{{-1, 0, 0}, {1, 0, 0}, {0, 0, 0}}
	if parents, _ := ResolveParents(names, heads); parents[2] != 0 {
		t.Errorf("parent[2] = %d, want 0", parents[2])
	}
}

func TestTails(t *testing.T) {
	const scale = 0.5
	heads := []mathutil.Vec3{
		{0, 0, 0}, // 0 root, two children
		{0, 0, 2}, // 1 one child
		{0, 0, 3}, // 2 branch, two children
		{1, 0, 3}, // 3 leaf
		{0, 0, 3}, // 4 leaf coincident with parent
		{4, 0, 0}, // 5 leaf under root
	}
	parents := []int{-1, 0, 1, 2, 2, 0}
	tails := Tails(heads, parents, scale)

	want := []mathutil.Vec3{
		{0, 0, scale * 3}, // mean child distance (2+4)/2
		heads[2],
		{0, 0, 3.5},
		{1.5, 0, 3},
		{0, 0, 3.5},
		{4.5, 0, 0},
	}
	for i := range want {
		if !tails[i].ApproxEqual(want[i], 1e-12) {
			t.Errorf("tail[%d] = %v, want %v", i, tails[i], want[i])
		}
	}
}

func TestSingleChildTailMatchesChildHead(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for _, a := range templates.Archetypes() {
		tpl := templates.MustLookup(a)
		sk, err := Build(tpl.Bones, randomHeads(rng, len(tpl.Bones)), Options{})
		if err != nil {
			t.Fatalf("%s: %v", a, err)
		}
		for i, ch := range sk.Children() {
			if len(ch) == 1 && sk.Joints[i].Tail != sk.Joints[ch[0]].Head {
				t.Errorf("%s: tail(%s) = %v, want child head %v",
					a, sk.Joints[i].Name, sk.Joints[i].Tail, sk.Joints[ch[0]].Head)
			}
		}
	}
}

func TestBuildErrors(t *testing.T) {
	if _, err := Build([]string{"Root"}, nil, Options{}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("mismatch: err = %v, want ErrLengthMismatch", err)
	}
	if _, err := Build(nil, nil, Options{}); !errors.Is(err, skeleton.ErrEmpty) {
		t.Errorf("empty: err = %v, want ErrEmpty", err)
	}
	dup := []string{"Root", "Root"}
	if _, err := Build(dup, make([]mathutil.Vec3, 2), Options{}); !errors.Is(err, skeleton.ErrDuplicateName) {
		t.Errorf("duplicate: err = %v, want ErrDuplicateName", err)
	}
}

func TestDefaultExtrudeScale(t *testing.T) {
	heads := []mathutil.Vec3{{0, 0, 0}, {0, 3, 0}, {1, 0, 10}}
	if got := DefaultExtrudeScale(heads); math.Abs(got-1) > 1e-12 {
		t.Errorf("DefaultExtrudeScale = %v, want 1", got)
	}
	if got := DefaultExtrudeScale([]mathutil.Vec3{{1, 1, 1}}); got != 1e-3 {
		t.Errorf("DefaultExtrudeScale(point) = %v, want 1e-3", got)
	}
}
