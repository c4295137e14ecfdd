// Package skinning computes per-vertex joint weights. A sampled weight
// matrix (from a predictor or from SeedFromSkeleton) is transferred onto the
// full-resolution mesh by nearest-neighbour aggregation, smoothed across mesh
// connectivity along the joint hierarchy, thresholded and renormalised.
package skinning

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
)

var (
	// ErrShapeMismatch reports inconsistent matrix dimensions.
	ErrShapeMismatch = errors.New("skinning: shape mismatch")
	// ErrNoSamples reports an empty sample set.
	ErrNoSamples = errors.New("skinning: no samples")
	// ErrUnknownMethod reports an unsupported sample method.
	ErrUnknownMethod = errors.New("skinning: unknown sample method")
	// ErrNonFinite reports a NaN or infinite coordinate, or a sampled weight
	// that is not a finite non-negative number.
	ErrNonFinite = errors.New("skinning: non-finite input")
	// ErrInvalidThreshold reports a negative or non-finite threshold.
	ErrInvalidThreshold = errors.New("skinning: invalid threshold")
)

// Method selects how the nearest samples are aggregated.
type Method string

const (
	MethodNearest         Method = "nearest"
	MethodInverseDistance Method = "inverse_distance"
	MethodGaussian        Method = "gaussian"
	MethodAverage         Method = "average"
)

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	switch m {
	case MethodNearest, MethodInverseDistance, MethodGaussian, MethodAverage:
		return true
	}
	return false
}

// Config carries every tunable of the weight pipeline. It is passed
// explicitly; nothing here is process-wide.
type Config struct {
	SampleMethod   Method
	NearestSamples int
	IterSteps      int
	Threshold      float64
	Alpha          float64
	Logger         *slog.Logger
}

// DefaultConfig returns nearest_samples=7, iter_steps=1, threshold=0.01,
// alpha=2 with inverse-distance aggregation.
func DefaultConfig() Config {
	return Config{
		SampleMethod:   MethodInverseDistance,
		NearestSamples: 7,
		IterSteps:      1,
		Threshold:      0.01,
		Alpha:          2.0,
	}
}

const (
	epsDistance = 1e-9
	epsSigma    = 1e-6
	epsSum      = 1e-9
)

// Weights is an N×J row-major matrix of non-negative joint weights.
type Weights struct {
	N, J int
	Data []float64
}

// NewWeights allocates a zero N×J matrix.
func NewWeights(n, j int) Weights {
	return Weights{N: n, J: j, Data: make([]float64, n*j)}
}

// FromRows copies a ragged-checked [][]float64 into a Weights matrix.
func FromRows(rows [][]float64) (Weights, error) {
	if len(rows) == 0 {
		return Weights{}, nil
	}
	j := len(rows[0])
	w := NewWeights(len(rows), j)
	for v, r := range rows {
		if len(r) != j {
			return Weights{}, errors.Join(ErrShapeMismatch,
				errors.New("ragged weight rows"))
		}
		copy(w.Row(v), r)
	}
	return w, nil
}

// check rejects NaN, infinite and negative entries.
func (w Weights) check() error {
	for i, x := range w.Data {
		if !(x >= 0) || math.IsInf(x, 1) {
			return fmt.Errorf("%w: weight row %d column %d is %v", ErrNonFinite, i/w.J, i%w.J, x)
		}
	}
	return nil
}

// Row returns vertex v's weights; the slice aliases the matrix.
func (w Weights) Row(v int) []float64 {
	return w.Data[v*w.J : (v+1)*w.J]
}

// Rows returns a copy as one slice per vertex.
func (w Weights) Rows() [][]float64 {
	out := make([][]float64, w.N)
	for v := range out {
		out[v] = append([]float64(nil), w.Row(v)...)
	}
	return out
}

// Clone returns a deep copy.
func (w Weights) Clone() Weights {
	return Weights{N: w.N, J: w.J, Data: append([]float64(nil), w.Data...)}
}

// Dominant returns the joint with the largest weight for vertex v (lowest
// index on ties).
func (w Weights) Dominant(v int) int {
	row := w.Row(v)
	best := 0
	for j := 1; j < len(row); j++ {
		if row[j] > row[best] {
			best = j
		}
	}
	return best
}

// Influence is one joint's weight on a vertex.
type Influence struct {
	Joint  int
	Weight float64
}

// TopK returns up to k non-zero influences of vertex v, strongest first,
// renormalised to sum to 1. Ties keep the lower joint index first.
func (w Weights) TopK(v, k int) []Influence {
	row := w.Row(v)
	inf := make([]Influence, 0, len(row))
	for j, x := range row {
		if x > 0 {
			inf = append(inf, Influence{Joint: j, Weight: x})
		}
	}
	sort.SliceStable(inf, func(a, b int) bool { return inf[a].Weight > inf[b].Weight })
	if len(inf) > k {
		inf = inf[:k]
	}
	var sum float64
	for _, x := range inf {
		sum += x.Weight
	}
	if sum > epsSum {
		for i := range inf {
			inf[i].Weight /= sum
		}
	}
	return inf
}
