package skinning

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"mesh-autorig/internal/mathutil"
)

// samplePoint is a kd-tree point that remembers its sample row.
type samplePoint struct {
	r3.Vec
	index int
}

func (p samplePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(samplePoint)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	default:
		return p.Z - q.Z
	}
}

func (p samplePoint) Dims() int { return 3 }

// Distance is the squared Euclidean distance, as kdtree expects.
func (p samplePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(samplePoint)
	return r3.Norm2(r3.Sub(p.Vec, q.Vec))
}

type samplePoints []samplePoint

func (p samplePoints) Index(i int) kdtree.Comparable { return p[i] }
func (p samplePoints) Len() int                      { return len(p) }
func (p samplePoints) Pivot(d kdtree.Dim) int        { return plane{Dim: d, samplePoints: p}.Pivot() }
func (p samplePoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

type plane struct {
	kdtree.Dim
	samplePoints
}

func (p plane) Less(i, j int) bool {
	return p.samplePoints[i].Compare(p.samplePoints[j], p.Dim) < 0
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.samplePoints = p.samplePoints[start:end]
	return p
}
func (p plane) Swap(i, j int) {
	p.samplePoints[i], p.samplePoints[j] = p.samplePoints[j], p.samplePoints[i]
}

func toR3(v mathutil.Vec3) r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

// neighbour is a sample row and its Euclidean distance to a query.
type neighbour struct {
	index int
	dist  float64
}

// sampleIndex answers k-nearest queries over sample positions.
type sampleIndex struct {
	tree *kdtree.Tree
	n    int
}

func newSampleIndex(samples []mathutil.Vec3) *sampleIndex {
	pts := make(samplePoints, len(samples))
	for i, s := range samples {
		pts[i] = samplePoint{Vec: toR3(s), index: i}
	}
	return &sampleIndex{tree: kdtree.New(pts, false), n: len(samples)}
}

// nearest returns up to k samples closest to q, nearest first; equal
// distances keep the lower sample index first.
func (s *sampleIndex) nearest(q mathutil.Vec3, k int) []neighbour {
	k = min(max(k, 1), s.n)
	keep := kdtree.NewNKeeper(k)
	s.tree.NearestSet(keep, samplePoint{Vec: toR3(q), index: -1})

	out := make([]neighbour, 0, k)
	for _, c := range keep.Heap {
		p, ok := c.Comparable.(samplePoint)
		if !ok {
			continue
		}
		out = append(out, neighbour{index: p.index, dist: math.Sqrt(c.Dist)})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].dist != out[b].dist {
			return out[a].dist < out[b].dist
		}
		return out[a].index < out[b].index
	})
	return out
}
