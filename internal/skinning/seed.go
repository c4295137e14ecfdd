package skinning

import (
	"math"
	"sort"

	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/skeleton"
)

// SeedFromSkeleton builds a sampled weight matrix from bone geometry alone,
// for use when no learned predictor is available. Every position is bound to
// its cfg.NearestSamples nearest bone segments with inverse-distance falloff
// raised to cfg.Alpha.
func SeedFromSkeleton(positions []mathutil.Vec3, sk *skeleton.Skeleton, cfg Config) Weights {
	j := sk.Len()
	w := NewWeights(len(positions), j)
	if j == 0 {
		return w
	}
	type cand struct {
		joint int
		dist  float64
	}
	keep := min(max(cfg.NearestSamples, 1), j)
	cands := make([]cand, j)
	for v, p := range positions {
		for b, jt := range sk.Joints {
			cands[b] = cand{joint: b, dist: segmentDistance(p, jt.Head, jt.Tail)}
		}
		sort.SliceStable(cands, func(a, b int) bool { return cands[a].dist < cands[b].dist })

		row := w.Row(v)
		var sum float64
		for _, c := range cands[:keep] {
			x := 1 / math.Pow(max(c.dist, epsDistance), cfg.Alpha)
			row[c.joint] = x
			sum += x
		}
		for b := range row {
			row[b] /= max(sum, epsSum)
		}
	}
	return w
}

// segmentDistance is the distance from p to the segment ab.
func segmentDistance(p, a, b mathutil.Vec3) float64 {
	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den < mathutil.EpsDistance {
		return p.Dist(a)
	}
	t := max(0, min(1, p.Sub(a).Dot(ab)/den))
	return p.Dist(a.Add(ab.Scale(t)))
}
