package export

import (
	"encoding/json"
	"fmt"
	"os"

	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/skeleton"
	"mesh-autorig/internal/skinning"
)

// RigJoint is the JSON form of a skeleton joint.
type RigJoint struct {
	Name   string        `json:"name"`
	Parent int           `json:"parent"`
	Head   mathutil.Vec3 `json:"head"`
	Tail   mathutil.Vec3 `json:"tail"`
}

// RigInfluence is one joint weight on a vertex.
type RigInfluence struct {
	Joint  int     `json:"joint"`
	Weight float64 `json:"weight"`
}

// Rig is the JSON rig document.
type Rig struct {
	Name      string           `json:"name"`
	Archetype string           `json:"archetype"`
	Joints    []RigJoint       `json:"joints"`
	Weights   [][]RigInfluence `json:"weights,omitempty"`
}

// NewRig converts a skeleton and optional weights to the JSON form. Each
// vertex lists its non-zero influences, strongest first.
func NewRig(name, archetype string, sk *skeleton.Skeleton, w skinning.Weights) Rig {
	r := Rig{Name: name, Archetype: archetype, Joints: make([]RigJoint, sk.Len())}
	for i, j := range sk.Joints {
		r.Joints[i] = RigJoint{Name: j.Name, Parent: j.Parent, Head: j.Head, Tail: j.Tail}
	}
	if w.N > 0 {
		r.Weights = make([][]RigInfluence, w.N)
		for v := range r.Weights {
			inf := w.TopK(v, w.J)
			row := make([]RigInfluence, len(inf))
			for k, x := range inf {
				row[k] = RigInfluence{Joint: x.Joint, Weight: x.Weight}
			}
			r.Weights[v] = row
		}
	}
	return r
}

// WriteRigJSON writes r as indented JSON.
func WriteRigJSON(path string, r Rig) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("export: encode rig: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}
