package hierarchy

import (
	"regexp"
	"strconv"
	"strings"
)

// explicitParents maps a bone name to its preferred parents, most preferred
// first. A candidate only counts if it names an earlier joint.
var explicitParents = buildExplicitParents()

func buildExplicitParents() map[string][]string {
	r := map[string][]string{
		"Hips":  {"Root"},
		"Body":  {"Root"},
		"Spine": {"Body", "Hips", "Root"},
		"Neck":  {"Spine4", "Spine3", "Spine2", "Spine1", "Spine", "Body"},
		"Neck1": {"Spine4", "Spine3", "Spine2", "Spine1", "Spine", "Body"},
		"Neck2": {"Neck1"},
		"Head":  {"Neck2", "Neck1", "Neck", "Spine2", "Spine", "Body"},
		"Beak":  {"Head"},
		"Tail":  {"Hips", "Body", "Root"},
		"Tail1": {"Hips", "Body", "Root"},
	}
	r["Spine1"] = []string{"Hips", "Body", "Root"}
	for k := 2; k <= 4; k++ {
		r["Spine"+strconv.Itoa(k)] = []string{"Spine" + strconv.Itoa(k-1)}
	}
	for k := 2; k <= 5; k++ {
		r["Tail"+strconv.Itoa(k)] = []string{"Tail" + strconv.Itoa(k-1)}
	}

	chain := func(links ...string) {
		for i := 1; i < len(links); i++ {
			r[links[i]] = []string{links[i-1]}
		}
	}
	for _, s := range []string{"Left", "Right"} {
		r[s+"Shoulder"] = []string{"Spine3", "Spine2", "Spine1", "Spine"}
		chain(s+"Shoulder", s+"Arm", s+"ForeArm", s+"Hand")
		r[s+"UpLeg"] = []string{"Hips", "Root"}
		chain(s+"UpLeg", s+"Leg", s+"Foot")
		r[s+"Toe"] = []string{s + "Foot"}

		r[s+"WingShoulder"] = []string{"Spine4", "Spine3", "Spine2"}
		chain(s+"WingShoulder", s+"WingArm", s+"WingElbow", s+"WingHand",
			s+"WingFinger1", s+"WingFinger2")

		r[s+"Limb"] = []string{"Body", "Root"}

		r["Front"+s+"UpperLeg"] = []string{"Spine3", "Spine2", "Neck", "Spine1"}
		r["Back"+s+"UpperLeg"] = []string{"Hips", "Root"}
		for _, end := range []string{"Front", "Back"} {
			chain(end+s+"UpperLeg", end+s+"LowerLeg", end+s+"Foot")
		}
	}
	for n := 1; n <= 8; n++ {
		leg := "Leg" + strconv.Itoa(n)
		r[leg+"Upper"] = []string{"Body", "Root"}
		chain(leg+"Upper", leg+"Lower", leg+"Foot")
	}
	return r
}

var sideRE = regexp.MustCompile(`^((?:Front|Back)?(?:Left|Right))`)

func sideOf(name string) string {
	return sideRE.FindString(name)
}

var trailingNumberRE = regexp.MustCompile(`(\d+)$`)

func trailingNumber(name string) string {
	return trailingNumberRE.FindString(name)
}

// patternRule parents any bone containing token to an earlier same-side bone
// accepted by match.
type patternRule struct {
	token string
	match func(candidate string) bool
	// sameNumber prefers a candidate whose trailing number equals the bone's.
	sameNumber bool
}

var patternRules = []patternRule{
	{
		token: "Feather",
		match: func(c string) bool { return strings.Contains(c, "Wing") && strings.HasSuffix(c, "Hand") },
	},
	{
		token:      "Tip",
		match:      func(c string) bool { return strings.Contains(c, "WingFeather") },
		sameNumber: true,
	},
	{
		token: "Toe",
		match: func(c string) bool { return strings.HasSuffix(c, "Foot") },
	},
	{
		token:      "Claw",
		match:      func(c string) bool { return strings.Contains(c, "Toe") },
		sameNumber: true,
	},
}

// applyPattern returns the parent chosen by the first pattern rule whose token
// the bone contains, or -1. Among matching earlier joints a same-number match
// wins, otherwise the latest one.
func applyPattern(names []string, i int) int {
	name := names[i]
	side := sideOf(name)
	if side == "" {
		return -1
	}
	for _, rule := range patternRules {
		if !strings.Contains(name, rule.token) {
			continue
		}
		num := trailingNumber(name)
		best := -1
		for j := i - 1; j >= 0; j-- {
			c := names[j]
			if sideOf(c) != side || !rule.match(c) {
				continue
			}
			if rule.sameNumber && num != "" && trailingNumber(c) == num {
				return j
			}
			if best < 0 {
				best = j
			}
		}
		if best >= 0 {
			return best
		}
	}
	return -1
}
