package skinning

import (
	"fmt"
	"math"

	"mesh-autorig/internal/mathutil"
)

// Transfer maps sampled weights onto targets. For each target the
// NearestSamples closest samples are blended according to SampleMethod; with
// a single neighbour every method copies that sample's row exactly.
func Transfer(samples []mathutil.Vec3, weights Weights, targets []mathutil.Vec3, cfg Config) (Weights, error) {
	if len(samples) == 0 {
		return Weights{}, ErrNoSamples
	}
	if weights.N != len(samples) {
		return Weights{}, fmt.Errorf("%w: %d samples, %d weight rows", ErrShapeMismatch, len(samples), weights.N)
	}
	method := cfg.SampleMethod
	if method == "" {
		method = MethodInverseDistance
	}
	if !method.Valid() {
		return Weights{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	k := cfg.NearestSamples
	if method == MethodNearest {
		k = 1
	}
	idx := newSampleIndex(samples)
	out := NewWeights(len(targets), weights.J)
	coef := make([]float64, 0, max(k, 1))

	for v, t := range targets {
		nb := idx.nearest(t, k)
		coef = blend(coef[:0], nb, method, cfg.Alpha)
		var total float64
		for _, c := range coef {
			total += c
		}
		total = max(total, epsSum)

		row := out.Row(v)
		for i, n := range nb {
			c := coef[i] / total
			src := weights.Row(n.index)
			for j := range row {
				row[j] += c * src[j]
			}
		}
	}
	return out, nil
}

// blend appends one aggregation coefficient per neighbour.
func blend(dst []float64, nb []neighbour, method Method, alpha float64) []float64 {
	if len(nb) == 1 {
		return append(dst, 1)
	}
	switch method {
	case MethodInverseDistance:
		// Coefficients are relative to the nearest neighbour and stay in (0, 1].
		near := max(nb[0].dist, epsDistance)
		for _, n := range nb {
			dst = append(dst, math.Pow(near/max(n.dist, epsDistance), alpha))
		}
	case MethodGaussian:
		var mean float64
		for _, n := range nb {
			mean += n.dist
		}
		sigma := max(mean/float64(len(nb)), epsSigma)
		for _, n := range nb {
			r := n.dist / sigma
			dst = append(dst, math.Exp(-r*r))
		}
	default:
		for range nb {
			dst = append(dst, 1)
		}
	}
	return dst
}
