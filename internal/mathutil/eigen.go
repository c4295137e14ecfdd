package mathutil

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrEigenFailed is returned when the symmetric eigen solver does not converge
// or the input contains non-finite values.
var ErrEigenFailed = errors.New("mathutil: symmetric eigendecomposition failed")

// EigenSym3 decomposes a symmetric 3×3 matrix. Eigenvalues are returned in
// descending order with their unit eigenvectors.
func EigenSym3(m Mat3) ([3]float64, [3]Vec3, error) {
	var vals [3]float64
	var vecs [3]Vec3
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return vals, vecs, ErrEigenFailed
		}
	}

	sym := mat.NewSymDense(3, []float64{
		m[0], m[1], m[2],
		m[1], m[4], m[5],
		m[2], m[5], m[8],
	})
	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return vals, vecs, ErrEigenFailed
	}
	values := es.Values(nil)
	var ev mat.Dense
	es.VectorsTo(&ev)

	// gonum returns ascending eigenvalues; re-order descending.
	order := []int{0, 1, 2}
	sort.SliceStable(order, func(i, j int) bool { return values[order[i]] > values[order[j]] })
	for i, col := range order {
		vals[i] = values[col]
		vecs[i] = Vec3{ev.At(0, col), ev.At(1, col), ev.At(2, col)}.Normalize()
	}
	return vals, vecs, nil
}
