// Package shape computes geometric descriptors of a mesh: bounds, principal
// axes, aspect ratios, closedness and constriction hints used to place joints.
package shape

import (
	"errors"
	"fmt"
	"log/slog"

	"mesh-autorig/internal/logging"
	"mesh-autorig/internal/mathutil"
	"mesh-autorig/internal/mesh"
)

// Bands is the number of slices used for joint-region detection.
const Bands = 20

// KindConstriction labels joint regions found by cross-section changes.
const KindConstriction = "constriction"

// AspectRatios of the axis-aligned extents, denominators floored at 1e-6.
type AspectRatios struct {
	XY float64
	XZ float64
	YZ float64
}

// JointRegion is a candidate joint location along the dominant axis.
type JointRegion struct {
	Position mathutil.Vec3
	Strength float64 // in [0, 1]
	Kind     string
}

// Descriptor summarises the gross shape of a mesh.
type Descriptor struct {
	Min, Max     mathutil.Vec3
	Centroid     mathutil.Vec3
	Extents      mathutil.Vec3
	Axes         [3]mathutil.Vec3 // principal axes, descending variance
	Variances    [3]float64
	Aspect       AspectRatios
	DominantAxis int
	Watertight   bool
	SurfaceArea  float64
	Volume       float64
	Archetype    string // filled in by the caller after classification
	Regions      []JointRegion
	VertexCount  int
	FaceCount    int
	Components   int
}

// Height is the vertical (Z) extent.
func (d *Descriptor) Height() float64 { return d.Extents[2] }

// Width is the larger horizontal extent.
func (d *Descriptor) Width() float64 { return max(d.Extents[0], d.Extents[1]) }

// Reason classifies analysis failures.
type Reason int

const (
	EmptyMesh Reason = iota + 1
	DegenerateCovariance
)

func (r Reason) String() string {
	switch r {
	case EmptyMesh:
		return "empty mesh"
	case DegenerateCovariance:
		return "degenerate covariance"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// AnalysisError reports a mesh the analyzer could not fully describe. The
// descriptor returned alongside it is still usable (defaults filled in).
type AnalysisError struct {
	Reason Reason
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("shape: %s: %v", e.Reason, e.Err)
	}
	return "shape: " + e.Reason.String()
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Options configures Analyze.
type Options struct {
	Logger *slog.Logger
}

// Default returns the descriptor used when a mesh cannot be analysed:
// identity axes, unit aspect ratios, generic archetype.
func Default() Descriptor {
	return Descriptor{
		Axes:      [3]mathutil.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		Aspect:    AspectRatios{XY: 1, XZ: 1, YZ: 1},
		Archetype: "generic",
	}
}

// Analyze computes the descriptor of m. Faces must already be validated.
// A non-nil error is always an *AnalysisError and the returned descriptor is
// the best available fallback.
func Analyze(m *mesh.Mesh, opts Options) (Descriptor, error) {
	log := logging.OrNop(opts.Logger)

	d := Default()
	if m.Empty() {
		return d, &AnalysisError{Reason: EmptyMesh}
	}

	d.VertexCount = len(m.Vertices)
	d.FaceCount = len(m.Faces)
	d.Min, d.Max = mathutil.Bounds(m.Vertices)
	d.Centroid = mathutil.Centroid(m.Vertices)
	d.Extents = d.Max.Sub(d.Min)
	d.DominantAxis = d.Extents.ArgMax()
	d.Aspect = aspectRatios(d.Extents)
	d.SurfaceArea = m.SurfaceArea()
	d.Watertight = m.Watertight()
	if d.Watertight {
		vol := m.SignedVolume()
		if vol < 0 {
			vol = -vol
		}
		d.Volume = vol
	}
	_, d.Components = m.Components()

	cov := mathutil.Covariance(m.Vertices, d.Centroid)
	vals, vecs, err := mathutil.EigenSym3(cov)
	if err != nil || vals[0] <= 0 {
		if err == nil {
			err = errors.New("zero variance")
		}
		// Unit aspect ratios route the classifier to generic.
		d.Aspect = Default().Aspect
		log.Warn("shape analysis degraded", "reason", DegenerateCovariance.String(), "err", err)
		return d, &AnalysisError{Reason: DegenerateCovariance, Err: err}
	}
	d.Axes = vecs
	d.Variances = vals

	d.Regions = detectJointRegions(m.Vertices, d)
	log.Debug("shape analysed",
		"vertices", d.VertexCount,
		"faces", d.FaceCount,
		"extents", d.Extents,
		"watertight", d.Watertight,
		"regions", len(d.Regions))
	return d, nil
}

func aspectRatios(e mathutil.Vec3) AspectRatios {
	floor := func(v float64) float64 { return max(v, mathutil.EpsRatio) }
	return AspectRatios{
		XY: e[0] / floor(e[1]),
		XZ: e[0] / floor(e[2]),
		YZ: e[1] / floor(e[2]),
	}
}
