package placement

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/templates"
)

// Vertical layout heights as fractions of the bounding-box height.
const (
	hipsHeight     = 0.6
	neckHeight     = 0.8
	neckStep       = 0.05
	headHeight     = 0.9
	tailHeight     = 0.5
	beakForward    = 0.2
	tailStep       = 0.1
	lateralSpread  = 0.4
	horizHips      = 0.3
	horizNeck      = 0.8
	horizHead      = 0.9
	horizLimbX     = 0.2
	horizLimbY     = 0.3
	legRingRadius  = 0.4
	legRingSectors = 8
)

// axisRule interpolates trunk bones along the layout's main axis.
type axisRule struct{}

func (axisRule) Place(l *Layout, name string) mathutil.Vec3 {
	base, k := splitNumber(name)
	if l.Axis == templates.Horizontal {
		return horizontalTrunk(l, base, k)
	}
	return verticalTrunk(l, base, k)
}

func verticalTrunk(l *Layout, base string, k int) mathutil.Vec3 {
	d := l.D
	c := d.Centroid
	bottom, h := d.Min[2], d.Extents[2]
	at := func(frac float64) mathutil.Vec3 { return mathutil.Vec3{c[0], c[1], bottom + frac*h} }

	switch base {
	case "Root", "Hips":
		return at(hipsHeight)
	case "Body":
		return c
	case "Head":
		return at(headHeight)
	case "Neck":
		return at(neckHeight + neckStep*float64(k-1))
	case "Spine":
		n := max(l.counts["Spine"], 1)
		t := float64(k) / float64(n+1)
		return at(hipsHeight + (neckHeight-hipsHeight)*t)
	case "Beak":
		return at(headHeight).Add(mathutil.Vec3{0, beakForward * d.Extents[1], 0})
	case "Tail":
		p := at(tailHeight)
		p[0] = c[0] - tailStep*d.Extents[0]*float64(k)
		return p
	}
	return c
}

func horizontalTrunk(l *Layout, base string, k int) mathutil.Vec3 {
	d := l.D
	c := d.Centroid
	xmin, length := d.Min[0], d.Extents[0]
	at := func(frac float64) mathutil.Vec3 { return mathutil.Vec3{xmin + frac*length, c[1], c[2]} }

	switch base {
	case "Root", "Body":
		return c
	case "Hips":
		return at(horizHips)
	case "Head":
		return at(horizHead)
	case "Neck":
		return at(horizNeck)
	case "Spine":
		n := max(l.counts["Spine"], 1)
		t := float64(k) / float64(n+1)
		return at(horizHips + (horizNeck-horizHips)*t)
	case "Beak":
		return at(horizHead).Add(mathutil.Vec3{beakForward * length, 0, 0})
	case "Tail":
		return at(0).Sub(mathutil.Vec3{tailStep * length * float64(k), 0, 0})
	}
	return c
}

var (
	sideRE     = regexp.MustCompile(`^(Left|Right)`)
	quadLimbRE = regexp.MustCompile(`^(Front|Back)(Left|Right)`)
	legRE      = regexp.MustCompile(`^Leg(\d+)(Upper|Lower|Foot)?$`)
)

// zOffset pairs a sub-token with a height offset as a fraction of extent z.
type zOffset struct {
	tokens []string
	frac   float64
}

// verticalLimbZ is checked in order; the first token contained in the bone
// name wins, so the more specific tokens come first.
var verticalLimbZ = []zOffset{
	{[]string{"Feather"}, 0.05},
	{[]string{"Tip"}, 0.02},
	{[]string{"Finger"}, -0.15},
	{[]string{"Claw"}, -0.5},
	{[]string{"Toe"}, -0.45},
	{[]string{"Foot"}, -0.4},
	{[]string{"Hand", "Wrist"}, -0.1},
	{[]string{"Shoulder", "Wing"}, 0.1},
	{[]string{"UpLeg", "Leg"}, -0.2},
}

var horizontalLimbZ = []zOffset{
	{[]string{"Foot"}, -0.4},
	{[]string{"Lower"}, -0.2},
	{[]string{"Upper"}, 0},
}

func lookupZ(table []zOffset, name string) float64 {
	for _, e := range table {
		for _, tok := range e.tokens {
			if strings.Contains(name, tok) {
				return e.frac
			}
		}
	}
	return 0
}

// sideRule offsets Left/Right (and Front/Back) limb bones from the centroid.
type sideRule struct{}

func (sideRule) Place(l *Layout, name string) mathutil.Vec3 {
	d := l.D
	p := d.Centroid
	if l.Axis == templates.Horizontal {
		rest := name
		if m := quadLimbRE.FindStringSubmatch(name); m != nil {
			if m[1] == "Front" {
				p[0] += horizLimbX * d.Extents[0]
			} else {
				p[0] -= horizLimbX * d.Extents[0]
			}
			rest = strings.TrimPrefix(name, m[1])
		}
		if strings.HasPrefix(rest, "Left") {
			p[1] -= horizLimbY * d.Extents[1]
		} else {
			p[1] += horizLimbY * d.Extents[1]
		}
		p[2] += lookupZ(horizontalLimbZ, name) * d.Extents[2]
		return p
	}

	if strings.HasPrefix(name, "Left") {
		p[0] += lateralSpread * d.Extents[0]
	} else {
		p[0] -= lateralSpread * d.Extents[0]
	}
	p[2] += lookupZ(verticalLimbZ, name) * d.Extents[2]
	return p
}

// circleRule spreads numbered legs on a ring around the centroid.
type circleRule struct{}

func (circleRule) Place(l *Layout, name string) mathutil.Vec3 {
	d := l.D
	p := d.Centroid
	m := legRE.FindStringSubmatch(name)
	if m == nil {
		return p
	}
	n, _ := strconv.Atoi(m[1])
	r := legRingRadius * max(d.Extents[0], d.Extents[1])
	a := float64(n-1) * 2 * math.Pi / legRingSectors
	p[0] += r * math.Cos(a)
	p[1] += r * math.Sin(a)
	p[2] += lookupZ(horizontalLimbZ, m[2]) * d.Extents[2]
	return p
}
