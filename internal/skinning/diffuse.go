package skinning

import (
	"log/slog"

	"mesh-autorig/internal/logging"
	"mesh-autorig/internal/mesh"
	"mesh-autorig/internal/skeleton"
)

// Diffuse smooths weights over mesh connectivity for steps iterations.
//
// Each iteration works on fresh buffers, never in place:
//  1. heat accumulation: every joint's column absorbs its descendants'
//     columns, so a column holds the weight of the whole subtree;
//  2. neighbour averaging of the accumulated columns over each vertex and
//     its one-ring;
//  3. subtraction: each joint keeps its diffused subtree weight minus its
//     children's diffused subtree weights, clamped at zero.
//
// Step 3 is load-bearing: it turns the smoothed subtree totals back into
// per-joint weights, so influence flows along the bone hierarchy and not
// only across space.
func Diffuse(w Weights, faces [][3]int, parents []int, steps int) Weights {
	if steps <= 0 || w.N == 0 || w.J == 0 {
		return w.Clone()
	}
	adj := mesh.Adjacency(w.N, faces)
	children := skeleton.ChildrenOf(parents)

	cur := w.Clone()
	for it := 0; it < steps; it++ {
		heat := accumulate(cur, parents)
		smooth := neighbourAverage(heat, adj)
		cur = subtractChildren(smooth, children)
	}
	return cur
}

func accumulate(w Weights, parents []int) Weights {
	heat := w.Clone()
	// Children have higher indices than their parents, so walking down from
	// the last joint finishes every subtree before it is added upward.
	for j := w.J - 1; j >= 1; j-- {
		p := parents[j]
		if p < 0 {
			continue
		}
		for v := 0; v < w.N; v++ {
			row := heat.Row(v)
			row[p] += row[j]
		}
	}
	return heat
}

func neighbourAverage(heat Weights, adj [][]int) Weights {
	out := NewWeights(heat.N, heat.J)
	for v := 0; v < heat.N; v++ {
		dst := out.Row(v)
		copy(dst, heat.Row(v))
		for _, n := range adj[v] {
			src := heat.Row(n)
			for j := range dst {
				dst[j] += src[j]
			}
		}
		inv := 1 / float64(1+len(adj[v]))
		for j := range dst {
			dst[j] *= inv
		}
	}
	return out
}

func subtractChildren(smooth Weights, children [][]int) Weights {
	out := NewWeights(smooth.N, smooth.J)
	for v := 0; v < smooth.N; v++ {
		src, dst := smooth.Row(v), out.Row(v)
		for j := range dst {
			x := src[j]
			for _, c := range children[j] {
				x -= src[c]
			}
			if x < 0 {
				x = 0
			}
			dst[j] = x
		}
	}
	return out
}

// Finalize zeroes weights below threshold and renormalises every row. A row
// left with (near) zero total is bound entirely to joint 0; those vertices
// are returned and logged, since their original influences are lost.
func Finalize(w Weights, threshold float64, log *slog.Logger) (Weights, []int) {
	log = logging.OrNop(log)
	out := w.Clone()
	var zero []int
	for v := 0; v < out.N; v++ {
		row := out.Row(v)
		var sum float64
		for j, x := range row {
			if x < threshold {
				row[j] = 0
				continue
			}
			sum += x
		}
		if sum < epsSum {
			for j := range row {
				row[j] = 0
			}
			if len(row) > 0 {
				row[0] = 1
			}
			zero = append(zero, v)
			continue
		}
		for j := range row {
			row[j] /= max(sum, epsSum)
		}
	}

	const detailed = 10
	for i, v := range zero {
		if i == detailed {
			break
		}
		log.Warn("vertex has no weight above threshold, bound to root", "vertex", v, "threshold", threshold)
	}
	if len(zero) > detailed {
		log.Warn("zero-weight vertices bound to root", "count", len(zero))
	}
	return out, zero
}
