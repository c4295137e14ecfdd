// Package skeleton defines the rig produced by the hierarchy builder: joints
// in topological order (every parent precedes its children) with head and
// tail positions.
package skeleton

import (
	"errors"
	"fmt"

	"mesh-autorig/internal/mathutil"
)

// NoParent marks the root joint.
const NoParent = -1

var (
	// ErrInvalidParent reports a parent index that breaks parent[i] < i.
	ErrInvalidParent = errors.New("skeleton: invalid parent index")
	// ErrDuplicateName reports two joints with the same name.
	ErrDuplicateName = errors.New("skeleton: duplicate joint name")
	// ErrEmpty reports a skeleton without joints.
	ErrEmpty = errors.New("skeleton: no joints")
)

// Joint is one bone: head position, derived tail and parent index.
type Joint struct {
	Name   string
	Head   mathutil.Vec3
	Tail   mathutil.Vec3
	Parent int // NoParent for the root
}

// Skeleton is immutable once built; callers must not modify Joints.
type Skeleton struct {
	Joints []Joint
}

// Len returns the number of joints.
func (s *Skeleton) Len() int { return len(s.Joints) }

// Parents returns the parent index of every joint.
func (s *Skeleton) Parents() []int {
	out := make([]int, len(s.Joints))
	for i, j := range s.Joints {
		out[i] = j.Parent
	}
	return out
}

// Names returns joint names in order.
func (s *Skeleton) Names() []string {
	out := make([]string, len(s.Joints))
	for i, j := range s.Joints {
		out[i] = j.Name
	}
	return out
}

// Index returns the index of the named joint, or -1.
func (s *Skeleton) Index(name string) int {
	for i, j := range s.Joints {
		if j.Name == name {
			return i
		}
	}
	return -1
}

// Children returns the child lists derived from the parent indices.
func (s *Skeleton) Children() [][]int {
	return ChildrenOf(s.Parents())
}

// ChildrenOf derives child lists from a parents array. Entries outside
// [0, len) are ignored.
func ChildrenOf(parents []int) [][]int {
	children := make([][]int, len(parents))
	for i, p := range parents {
		if p >= 0 && p < len(parents) {
			children[p] = append(children[p], i)
		}
	}
	return children
}

// ValidateParents checks the ordering invariant: parent[0] is NoParent and
// 0 <= parent[i] < i for every i > 0.
func ValidateParents(parents []int) error {
	if len(parents) == 0 {
		return ErrEmpty
	}
	if parents[0] != NoParent {
		return fmt.Errorf("joint 0 has parent %d: %w", parents[0], ErrInvalidParent)
	}
	for i := 1; i < len(parents); i++ {
		if p := parents[i]; p < 0 || p >= i {
			return fmt.Errorf("joint %d has parent %d: %w", i, p, ErrInvalidParent)
		}
	}
	return nil
}

// Validate checks parent ordering, name uniqueness and finite positions.
func (s *Skeleton) Validate() error {
	if err := ValidateParents(s.Parents()); err != nil {
		return err
	}
	seen := make(map[string]int, len(s.Joints))
	for i, j := range s.Joints {
		if prev, ok := seen[j.Name]; ok {
			return fmt.Errorf("joints %d and %d named %q: %w", prev, i, j.Name, ErrDuplicateName)
		}
		seen[j.Name] = i
		if !j.Head.IsFinite() || !j.Tail.IsFinite() {
			return fmt.Errorf("skeleton: joint %q has non-finite position", j.Name)
		}
	}
	return nil
}

// Fallback returns the minimal riggable chain Root -> Body -> Head standing
// on base with the given height (unit height when height <= 0).
func Fallback(base mathutil.Vec3, height float64) *Skeleton {
	if !(height > 0) {
		height = 1
	}
	up := func(f float64) mathutil.Vec3 { return base.Add(mathutil.Vec3{0, 0, f * height}) }
	return &Skeleton{Joints: []Joint{
		{Name: "Root", Head: up(0), Tail: up(0.5), Parent: NoParent},
		{Name: "Body", Head: up(0.5), Tail: up(0.9), Parent: 0},
		{Name: "Head", Head: up(0.9), Tail: up(1), Parent: 1},
	}}
}
