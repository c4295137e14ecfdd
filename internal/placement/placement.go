// Package placement converts a skeleton template and a shape descriptor into
// joint head positions. Each bone name resolves to one placement rule:
// axis interpolation for the trunk, side offsets for paired limbs, a circle
// for numbered legs, a bounded scatter for generic layouts, and a jittered
// centroid for anything unrecognised.
package placement

import (
	"math/rand/v2"
	"regexp"
	"strconv"

	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/shape"
	"mesh-autorig/internal/templates"
)

// Options configures Place.
type Options struct {
	// Seed drives the jitter and generic scatter. Equal seeds give equal output.
	Seed uint64
}

// Rule places one bone.
type Rule interface {
	Place(l *Layout, bone string) mathutil.Vec3
}

// Layout carries the anchors shared by every rule for one placement pass.
type Layout struct {
	D      shape.Descriptor
	Axis   templates.MainAxis
	counts map[string]int // number of bones per numbered trunk family
	rng    *rand.Rand
}

var numberedRE = regexp.MustCompile(`^([A-Za-z]+?)(\d+)$`)

// splitNumber splits "Spine3" into ("Spine", 3). Unnumbered names return 1.
func splitNumber(name string) (string, int) {
	m := numberedRE.FindStringSubmatch(name)
	if m == nil {
		return name, 1
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return name, 1
	}
	return m[1], n
}

func newLayout(d shape.Descriptor, t templates.Template, opts Options) *Layout {
	l := &Layout{
		D:      d,
		Axis:   t.Axis,
		counts: make(map[string]int),
		rng:    rand.New(rand.NewPCG(opts.Seed, 0x9e3779b97f4a7c15)),
	}
	for _, b := range t.Bones {
		base, n := splitNumber(b)
		switch base {
		case "Spine", "Neck", "Tail":
			l.counts[base] = max(l.counts[base], n)
		}
	}
	return l
}

// Place returns one head position per template bone, in template order.
func Place(d shape.Descriptor, t templates.Template, opts Options) []mathutil.Vec3 {
	l := newLayout(d, t, opts)
	out := make([]mathutil.Vec3, len(t.Bones))
	for i, name := range t.Bones {
		out[i] = Resolve(t.Axis, name).Place(l, name)
	}
	return out
}

// Resolve picks the placement rule for a bone name under a layout axis.
func Resolve(axis templates.MainAxis, name string) Rule {
	switch axis {
	case templates.GenericAxis:
		if name == "Root" {
			return centroidRule{}
		}
		return scatterRule{}
	case templates.Horizontal:
		if legRE.MatchString(name) {
			return circleRule{}
		}
		if quadLimbRE.MatchString(name) {
			return sideRule{}
		}
	}
	if sideRE.MatchString(name) {
		return sideRule{}
	}
	base, _ := splitNumber(name)
	if _, ok := trunkFamilies[base]; ok {
		return axisRule{}
	}
	return defaultRule{}
}

// trunkFamilies are the bone families handled by axisRule.
var trunkFamilies = map[string]struct{}{
	"Root":  {},
	"Hips":  {},
	"Body":  {},
	"Spine": {},
	"Neck":  {},
	"Head":  {},
	"Beak":  {},
	"Tail":  {},
}

type centroidRule struct{}

func (centroidRule) Place(l *Layout, _ string) mathutil.Vec3 { return l.D.Centroid }

// defaultRule places unknown bones at the centroid plus jitter bounded by 5%
// of the largest extent.
type defaultRule struct{}

func (defaultRule) Place(l *Layout, _ string) mathutil.Vec3 {
	r := 0.05 * l.D.Extents.MaxComponent()
	var j mathutil.Vec3
	for k := range j {
		j[k] = (l.rng.Float64()*2 - 1) * r
	}
	return l.D.Centroid.Add(j)
}

// scatterRule places bones inside 80% of the bounding-box half extents.
type scatterRule struct{}

func (scatterRule) Place(l *Layout, _ string) mathutil.Vec3 {
	half := l.D.Extents.Scale(0.5 * 0.8)
	var off mathutil.Vec3
	for k := range off {
		off[k] = (l.rng.Float64()*2 - 1) * half[k]
	}
	return l.D.Centroid.Add(off)
}
