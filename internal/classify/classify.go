// Package classify maps a shape descriptor to a skeleton archetype.
//
// The classifier is a coarse heuristic: a fixed threshold cascade on the
// bounding-box aspect ratios. It is deterministic but makes no correctness
// guarantee; callers that know the creature type should pick the template
// directly. The thresholds are empirically tuned constants kept for parity,
// not derived optima.
package classify

import (
	"mesh-autorig/internal/shape"
	"mesh-autorig/internal/templates"
)

// Rule identifies the cascade step that produced a classification.
type Rule int

const (
	RuleWingspan    Rule = iota + 1 // xy > 4 and yz <= 1
	RuleDeep                        // yz > 2, bird or humanoid by width/height
	RuleNarrow                      // yz < 0.5 and xy < 3
	RuleElongated                   // max(xy, xz) > 3
	RuleFallthrough                 // nothing matched
)

var ruleNames = map[Rule]string{
	RuleWingspan:    "wingspan",
	RuleDeep:        "deep",
	RuleNarrow:      "narrow",
	RuleElongated:   "elongated",
	RuleFallthrough: "fallthrough",
}

func (r Rule) String() string {
	if s, ok := ruleNames[r]; ok {
		return s
	}
	return "unknown"
}

const (
	wingspanXY   = 4.0
	wingspanYZ   = 1.0
	deepYZ       = 2.0
	deepWidthFac = 0.8
	narrowYZ     = 0.5
	narrowXY     = 3.0
	elongated    = 3.0
)

// Classify returns the archetype for d. First matching rule wins.
func Classify(d shape.Descriptor) templates.Archetype {
	a, _ := Explain(d)
	return a
}

// Explain is Classify plus the rule that fired.
func Explain(d shape.Descriptor) (templates.Archetype, Rule) {
	ar := d.Aspect
	switch {
	case ar.XY > wingspanXY && ar.YZ <= wingspanYZ:
		return templates.Bird, RuleWingspan
	case ar.YZ > deepYZ:
		if d.Width() > deepWidthFac*d.Height() {
			return templates.Bird, RuleDeep
		}
		return templates.Humanoid, RuleDeep
	case ar.YZ < narrowYZ && ar.XY < narrowXY:
		return templates.Quadruped, RuleNarrow
	case max(ar.XY, ar.XZ) > elongated:
		return templates.MultiLimbed, RuleElongated
	}
	return templates.Generic, RuleFallthrough
}
