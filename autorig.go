// Package autorig builds an animation skeleton and skin weights for an
// arbitrary triangle mesh.
//
// SynthesizeSkeleton analyses the mesh shape, picks a creature archetype,
// places the archetype's template joints and links them into a hierarchy.
// DiffuseSkinWeights transfers sparsely sampled weights onto every vertex and
// smooths them along mesh connectivity and the joint hierarchy.
//
// Both operations are pure given their inputs; the only shared state is the
// read-only template table.
package autorig

import (
	"errors"
	"fmt"
	"log/slog"

	"mesh-autorig/internal/classify"
	"mesh-autorig/internal/hierarchy"
	"mesh-autorig/internal/logging"
	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/mesh"
	"mesh-autorig/internal/placement"
	"mesh-autorig/internal/shape"
	"mesh-autorig/internal/skeleton"
	"mesh-autorig/internal/skinning"
	"mesh-autorig/internal/templates"
)

type (
	Vec3           = mathutil.Vec3
	Mesh           = mesh.Mesh
	Skeleton       = skeleton.Skeleton
	Joint          = skeleton.Joint
	Descriptor     = shape.Descriptor
	Archetype      = templates.Archetype
	SkinWeights    = skinning.Weights
	DiffuseConfig  = skinning.Config
	SampleMethod   = skinning.Method
	SkinResult     = skinning.Result
	ClassifierRule = classify.Rule
)

// NoParent is the parent index of the root joint.
const NoParent = skeleton.NoParent

// DefaultDiffuseConfig returns the documented diffusion defaults.
func DefaultDiffuseConfig() DiffuseConfig { return skinning.DefaultConfig() }

// SkeletonOptions configures SynthesizeSkeleton.
type SkeletonOptions struct {
	// TargetBones is advisory and currently ignored; the template decides the
	// joint count.
	TargetBones int
	// ExtrudeScale sets leaf tail length; zero picks 10% of the joint spread.
	ExtrudeScale float64
	// Seed drives placement jitter.
	Seed   uint64
	Logger *slog.Logger
}

// Rig is the full outcome of skeleton synthesis.
type Rig struct {
	Skeleton   *Skeleton
	Descriptor Descriptor
	Archetype  Archetype
	Rule       ClassifierRule
	// Fallback is set when the minimal Root/Body/Head chain was returned.
	Fallback bool
}

// SynthesizeSkeleton returns a skeleton for m. Only malformed input (a face
// index out of range or a non-finite coordinate) is an error; every other
// failure yields the fallback Root -> Body -> Head chain.
func SynthesizeSkeleton(m *Mesh, opts SkeletonOptions) (*Skeleton, error) {
	rig, err := Synthesize(m, opts)
	if err != nil {
		return nil, err
	}
	return rig.Skeleton, nil
}

// Synthesize is SynthesizeSkeleton with the intermediate analysis attached.
func Synthesize(m *Mesh, opts SkeletonOptions) (Rig, error) {
	log := logging.OrNop(opts.Logger)
	if err := m.Validate(); err != nil {
		return Rig{}, fmt.Errorf("autorig: validate mesh %q: %w", m.Name, err)
	}

	d, err := shape.Analyze(m, shape.Options{Logger: log})
	if err != nil {
		var ae *shape.AnalysisError
		if errors.As(err, &ae) && ae.Reason == shape.EmptyMesh {
			log.Warn("empty mesh, using fallback skeleton", "mesh", m.Name)
			return fallbackRig(d, log), nil
		}
		// Degenerate shapes keep their defaulted descriptor and continue as
		// generic.
		log.Debug("continuing with degraded descriptor", "mesh", m.Name, "err", err)
	}

	arch, rule := classify.Explain(d)
	d.Archetype = string(arch)
	t, ok := templates.Lookup(arch)
	if !ok {
		log.Warn("no template for archetype, using fallback skeleton", "archetype", arch)
		return fallbackRig(d, log), nil
	}

	heads := placement.Place(d, t, placement.Options{Seed: opts.Seed})
	sk, err := hierarchy.Build(t.Bones, heads, hierarchy.Options{
		ExtrudeScale: opts.ExtrudeScale,
		Logger:       log,
	})
	if err != nil {
		log.Warn("hierarchy build failed, using fallback skeleton", "archetype", arch, "err", err)
		return fallbackRig(d, log), nil
	}

	log.Debug("skeleton synthesized",
		"mesh", m.Name,
		"archetype", string(arch),
		"rule", rule.String(),
		"joints", sk.Len())
	return Rig{Skeleton: sk, Descriptor: d, Archetype: arch, Rule: rule}, nil
}

func fallbackRig(d Descriptor, log *slog.Logger) Rig {
	base := Vec3{d.Centroid[0], d.Centroid[1], d.Min[2]}
	sk := skeleton.Fallback(base, d.Height())
	log.Debug("fallback skeleton", "base", base, "height", d.Height())
	return Rig{
		Skeleton:   sk,
		Descriptor: d,
		Archetype:  templates.Generic,
		Rule:       classify.RuleFallthrough,
		Fallback:   true,
	}
}

// DiffuseInput bundles the arrays consumed by DiffuseSkinWeights.
type DiffuseInput struct {
	SampledVertices []Vec3
	SampledWeights  [][]float64 // one row per sample, one column per joint
	TargetVertices  []Vec3
	TargetFaces     [][3]int
	Parents         []int
}

// DiffuseSkinWeights produces one normalised weight row per target vertex.
func DiffuseSkinWeights(in DiffuseInput, cfg DiffuseConfig) (SkinWeights, error) {
	res, err := Skin(in, cfg)
	if err != nil {
		return SkinWeights{}, err
	}
	return res.Weights, nil
}

// Skin is DiffuseSkinWeights plus the list of vertices bound to the root
// because no weight survived thresholding.
func Skin(in DiffuseInput, cfg DiffuseConfig) (SkinResult, error) {
	if len(in.SampledVertices) == 0 {
		return SkinResult{}, fmt.Errorf("autorig: diffuse: %w", skinning.ErrNoSamples)
	}
	if len(in.SampledWeights) != len(in.SampledVertices) {
		return SkinResult{}, fmt.Errorf("autorig: diffuse: %d samples, %d weight rows: %w",
			len(in.SampledVertices), len(in.SampledWeights), skinning.ErrShapeMismatch)
	}
	w, err := skinning.FromRows(in.SampledWeights)
	if err != nil {
		return SkinResult{}, fmt.Errorf("autorig: diffuse: %w", err)
	}
	res, err := skinning.Run(skinning.Input{
		Vertices:       in.TargetVertices,
		Faces:          in.TargetFaces,
		Parents:        in.Parents,
		SamplePoints:   in.SampledVertices,
		SampledWeights: w,
	}, cfg)
	if err != nil {
		return SkinResult{}, fmt.Errorf("autorig: diffuse: %w", err)
	}
	return res, nil
}
