package skinning

import (
	"fmt"
	"math"

	"mesh-autorig/internal/logging"
	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/skeleton"
)

// Input is everything the weight pipeline consumes.
type Input struct {
	Vertices       []mathutil.Vec3
	Faces          [][3]int
	Parents        []int
	SamplePoints   []mathutil.Vec3
	SampledWeights Weights
}

// Result carries the final weights plus the vertices that fell back to the
// root joint because nothing survived thresholding.
type Result struct {
	Weights            Weights
	ZeroWeightVertices []int
}

// Run transfers, diffuses and finalises skin weights.
func Run(in Input, cfg Config) (Result, error) {
	log := logging.OrNop(cfg.Logger)
	j := len(in.Parents)
	if in.SampledWeights.J != j {
		return Result{}, fmt.Errorf("%w: %d weight columns, %d joints", ErrShapeMismatch, in.SampledWeights.J, j)
	}
	if err := skeleton.ValidateParents(in.Parents); err != nil {
		return Result{}, fmt.Errorf("skinning: parents: %w", err)
	}
	for i, f := range in.Faces {
		for _, v := range f {
			if v < 0 || v >= len(in.Vertices) {
				return Result{}, fmt.Errorf("%w: face %d references vertex %d of %d", ErrShapeMismatch, i, v, len(in.Vertices))
			}
		}
	}
	if !(cfg.Threshold >= 0) || math.IsInf(cfg.Threshold, 0) {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidThreshold, cfg.Threshold)
	}
	if err := checkPoints("vertex", in.Vertices); err != nil {
		return Result{}, err
	}
	if err := checkPoints("sample", in.SamplePoints); err != nil {
		return Result{}, err
	}
	if err := in.SampledWeights.check(); err != nil {
		return Result{}, err
	}
	if len(in.Vertices) == 0 {
		return Result{Weights: NewWeights(0, j)}, nil
	}

	w, err := Transfer(in.SamplePoints, in.SampledWeights, in.Vertices, cfg)
	if err != nil {
		return Result{}, err
	}
	w = Diffuse(w, in.Faces, in.Parents, cfg.IterSteps)
	w, zero := Finalize(w, cfg.Threshold, log)

	log.Debug("skin weights computed",
		"vertices", w.N, "joints", w.J, "samples", len(in.SamplePoints),
		"method", string(cfg.SampleMethod), "iterations", cfg.IterSteps,
		"zero_weight_vertices", len(zero))
	return Result{Weights: w, ZeroWeightVertices: zero}, nil
}

func checkPoints(kind string, pts []mathutil.Vec3) error {
	for i, p := range pts {
		if !p.IsFinite() {
			return fmt.Errorf("%w: %s %d is %v", ErrNonFinite, kind, i, p)
		}
	}
	return nil
}
