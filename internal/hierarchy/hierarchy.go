// Package hierarchy turns placed joint heads into a Skeleton: it assigns a
// parent to every joint and derives bone tails.
//
// Parents are resolved per joint from an explicit name table, then from
// same-side name patterns, then by the nearest earlier joint. Only earlier
// joints are ever considered, so parent[i] < i holds by construction.
package hierarchy

import (
	"errors"
	"fmt"
	"log/slog"

	"mesh-autorig/internal/logging"
	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/skeleton"
)

// Source records which rule chose a joint's parent.
type Source int

const (
	SourceRoot Source = iota
	SourceExplicit
	SourcePattern
	SourceNearest
)

func (s Source) String() string {
	switch s {
	case SourceRoot:
		return "root"
	case SourceExplicit:
		return "explicit"
	case SourcePattern:
		return "pattern"
	case SourceNearest:
		return "nearest"
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// ErrLengthMismatch reports names and heads of different lengths.
var ErrLengthMismatch = errors.New("hierarchy: names and heads differ in length")

// Options configures Build.
type Options struct {
	// ExtrudeScale is the length of extruded leaf and branch tails. Zero or
	// negative selects 10% of the largest extent of the joint cloud.
	ExtrudeScale float64
	Logger       *slog.Logger
}

// ResolveParents assigns a parent to every joint. heads are used only by the
// nearest-joint fallback.
func ResolveParents(names []string, heads []mathutil.Vec3) ([]int, []Source) {
	parents := make([]int, len(names))
	sources := make([]Source, len(names))
	if len(names) == 0 {
		return parents, sources
	}
	index := make(map[string]int, len(names))
	parents[0] = skeleton.NoParent
	sources[0] = SourceRoot
	index[names[0]] = 0

	for i := 1; i < len(names); i++ {
		name := names[i]
		parents[i], sources[i] = -1, SourceNearest

		for _, cand := range explicitParents[name] {
			if j, ok := index[cand]; ok {
				parents[i], sources[i] = j, SourceExplicit
				break
			}
		}
		if parents[i] < 0 {
			if j := applyPattern(names, i); j >= 0 {
				parents[i], sources[i] = j, SourcePattern
			}
		}
		if parents[i] < 0 {
			parents[i] = nearestEarlier(heads, i)
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return parents, sources
}

// nearestEarlier returns the index < i closest to heads[i]; ties keep the
// lowest index.
func nearestEarlier(heads []mathutil.Vec3, i int) int {
	best, bestDist := 0, -1.0
	for j := 0; j < i; j++ {
		d := heads[j].Dist(heads[i])
		if bestDist < 0 || d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

// DefaultExtrudeScale is 10% of the largest extent of heads, at least 1e-3.
func DefaultExtrudeScale(heads []mathutil.Vec3) float64 {
	lo, hi := mathutil.Bounds(heads)
	return max(0.1*hi.Sub(lo).MaxComponent(), 1e-3)
}

// Tails derives the tail of every joint:
//   - leaf: head extruded away from the parent head
//   - one child: the child's head
//   - several children: root extrudes up by scale × mean child distance,
//     others extrude away from their parent like a leaf
func Tails(heads []mathutil.Vec3, parents []int, scale float64) []mathutil.Vec3 {
	children := skeleton.ChildrenOf(parents)
	up := mathutil.Vec3{0, 0, 1}
	tails := make([]mathutil.Vec3, len(heads))

	extrude := func(i int) mathutil.Vec3 {
		p := parents[i]
		if p < 0 {
			return heads[i].Add(up.Scale(scale))
		}
		dir := heads[i].Sub(heads[p]).Normalize()
		if dir == (mathutil.Vec3{}) {
			dir = up
		}
		return heads[i].Add(dir.Scale(scale))
	}

	for i := range heads {
		switch n := len(children[i]); {
		case n == 0:
			tails[i] = extrude(i)
		case n == 1:
			tails[i] = heads[children[i][0]]
		case n > 1 && parents[i] < 0:
			var sum float64
			for _, c := range children[i] {
				sum += heads[c].Dist(heads[i])
			}
			avg := sum / float64(n)
			tails[i] = heads[i].Add(mathutil.Vec3{0, 0, scale * avg})
		case n > 1:
			tails[i] = extrude(i)
		default:
			tails[i] = heads[i].Add(mathutil.Vec3{0, 0, scale})
		}
	}
	return tails
}

// Build resolves parents and tails and returns a validated skeleton.
func Build(names []string, heads []mathutil.Vec3, opts Options) (*skeleton.Skeleton, error) {
	if len(names) != len(heads) {
		return nil, fmt.Errorf("%w: %d names, %d heads", ErrLengthMismatch, len(names), len(heads))
	}
	if len(names) == 0 {
		return nil, skeleton.ErrEmpty
	}
	log := logging.OrNop(opts.Logger)

	scale := opts.ExtrudeScale
	if scale <= 0 {
		scale = DefaultExtrudeScale(heads)
	}
	parents, sources := ResolveParents(names, heads)
	tails := Tails(heads, parents, scale)

	sk := &skeleton.Skeleton{Joints: make([]skeleton.Joint, len(names))}
	counts := make(map[Source]int, 4)
	for i := range names {
		sk.Joints[i] = skeleton.Joint{
			Name:   names[i],
			Head:   heads[i],
			Tail:   tails[i],
			Parent: parents[i],
		}
		counts[sources[i]]++
	}
	if err := sk.Validate(); err != nil {
		return nil, fmt.Errorf("hierarchy: %w", err)
	}
	log.Debug("hierarchy built",
		"joints", len(names),
		"explicit", counts[SourceExplicit],
		"pattern", counts[SourcePattern],
		"nearest", counts[SourceNearest],
		"extrude", scale)
	return sk, nil
}
