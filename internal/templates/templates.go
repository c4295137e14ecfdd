// Package templates is the static skeleton template library: one ordered
// bone-name list per archetype. The table is built once at init and is
// read-only afterwards, so it is safe to share across goroutines.
package templates

import (
	"fmt"
	"strconv"
)

// Archetype is a coarse body-shape category.
type Archetype string

const (
	Humanoid    Archetype = "humanoid"
	Quadruped   Archetype = "quadruped"
	Bird        Archetype = "bird"
	MultiLimbed Archetype = "multi_limbed"
	Generic     Archetype = "generic"
)

// MainAxis selects the joint placement layout.
type MainAxis int

const (
	Vertical MainAxis = iota
	Horizontal
	GenericAxis
)

func (a MainAxis) String() string {
	switch a {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	case GenericAxis:
		return "generic"
	}
	return "MainAxis(" + strconv.Itoa(int(a)) + ")"
}

// Template is an ordered, duplicate-free bone-name list.
type Template struct {
	Archetype Archetype
	Bones     []string
	Symmetric bool
	Axis      MainAxis
}

var library = map[Archetype]Template{
	Humanoid: {
		Archetype: Humanoid,
		Bones:     humanoidBones(),
		Symmetric: true,
		Axis:      Vertical,
	},
	Quadruped: {
		Archetype: Quadruped,
		Bones:     quadrupedBones(),
		Symmetric: true,
		Axis:      Horizontal,
	},
	Bird: {
		Archetype: Bird,
		Bones:     birdBones(),
		Symmetric: true,
		Axis:      Vertical,
	},
	MultiLimbed: {
		Archetype: MultiLimbed,
		Bones:     multiLimbedBones(),
		Axis:      Horizontal,
	},
	Generic: {
		Archetype: Generic,
		Bones:     []string{"Root", "Body", "Spine", "Head", "LeftLimb", "RightLimb", "Tail"},
		Axis:      GenericAxis,
	},
}

// Archetypes lists the archetypes in a stable order.
func Archetypes() []Archetype {
	return []Archetype{Humanoid, Quadruped, Bird, MultiLimbed, Generic}
}

// Lookup returns a copy of the template for a. The copy may be modified
// freely by the caller.
func Lookup(a Archetype) (Template, bool) {
	t, ok := library[a]
	if !ok {
		return Template{}, false
	}
	t.Bones = append([]string(nil), t.Bones...)
	return t, true
}

// MustLookup is Lookup for archetypes known to exist.
func MustLookup(a Archetype) Template {
	t, ok := Lookup(a)
	if !ok {
		panic(fmt.Sprintf("templates: unknown archetype %q", a))
	}
	return t
}

func numbered(prefix string, from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, prefix+strconv.Itoa(i))
	}
	return out
}

func sided(parts ...string) []string {
	out := make([]string, 0, 2*len(parts))
	for _, side := range []string{"Left", "Right"} {
		for _, p := range parts {
			out = append(out, side+p)
		}
	}
	return out
}

func humanoidBones() []string {
	b := []string{"Root", "Hips"}
	b = append(b, numbered("Spine", 1, 3)...)
	b = append(b, "Neck", "Head")
	b = append(b, sided("Shoulder", "Arm", "ForeArm", "Hand")...)
	b = append(b, sided("UpLeg", "Leg", "Foot", "Toe")...)
	return b
}

func quadrupedBones() []string {
	b := []string{"Root", "Hips"}
	b = append(b, numbered("Spine", 1, 3)...)
	b = append(b, "Neck", "Head")
	b = append(b, numbered("Tail", 1, 3)...)
	for _, end := range []string{"Front", "Back"} {
		for _, side := range []string{"Left", "Right"} {
			for _, seg := range []string{"UpperLeg", "LowerLeg", "Foot"} {
				b = append(b, end+side+seg)
			}
		}
	}
	return b
}

func birdBones() []string {
	b := []string{"Root", "Hips"}
	b = append(b, numbered("Spine", 1, 4)...)
	b = append(b, numbered("Neck", 1, 2)...)
	b = append(b, "Head", "Beak")
	for _, side := range []string{"Left", "Right"} {
		b = append(b,
			side+"WingShoulder", side+"WingArm", side+"WingElbow", side+"WingHand")
		b = append(b, numbered(side+"WingFinger", 1, 2)...)
		b = append(b, numbered(side+"WingFeather", 1, 3)...)
		b = append(b, numbered(side+"WingTip", 1, 3)...)
	}
	for _, side := range []string{"Left", "Right"} {
		b = append(b, side+"UpLeg", side+"Leg", side+"Foot")
		b = append(b, numbered(side+"Toe", 1, 3)...)
		b = append(b, numbered(side+"Claw", 1, 3)...)
	}
	b = append(b, numbered("Tail", 1, 5)...)
	return b
}

func multiLimbedBones() []string {
	b := []string{"Root", "Body"}
	b = append(b, numbered("Spine", 1, 2)...)
	b = append(b, "Head")
	for i := 1; i <= 8; i++ {
		leg := "Leg" + strconv.Itoa(i)
		b = append(b, leg+"Upper", leg+"Lower", leg+"Foot")
	}
	return b
}
