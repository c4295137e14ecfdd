package shape

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"mesh-autorig/internal/mathutil"
)

// BandAreas slices verts into Bands bands along axis and returns the convex
// hull area of each band's projection onto the other two axes. A band with
// fewer than 4 vertices has area 0. Vertices within half a band width of the
// band centre belong to the band.
func BandAreas(verts []mathutil.Vec3, axis int, lo, hi float64) []float64 {
	areas := make([]float64, Bands)
	width := (hi - lo) / Bands
	if !(width > 0) {
		return areas
	}
	u, w := (axis+1)%3, (axis+2)%3
	half := width / 2

	proj := make([]mathutil.Vec2, 0, len(verts)/Bands+4)
	for b := 0; b < Bands; b++ {
		center := lo + (float64(b)+0.5)*width
		proj = proj[:0]
		for _, v := range verts {
			if math.Abs(v[axis]-center) <= half {
				proj = append(proj, mathutil.Vec2{v[u], v[w]})
			}
		}
		if len(proj) < 4 {
			continue
		}
		areas[b] = mathutil.HullArea2(proj)
	}
	return areas
}

// detectJointRegions flags band boundaries whose cross-section change is an
// outlier (above mean + 2σ of all changes). Degenerate input yields nil.
func detectJointRegions(verts []mathutil.Vec3, d Descriptor) []JointRegion {
	axis := d.DominantAxis
	lo, hi := d.Min[axis], d.Max[axis]
	if !(hi-lo > 0) {
		return nil
	}
	areas := BandAreas(verts, axis, lo, hi)

	changes := make([]float64, len(areas)-1)
	maxChange := 0.0
	for i := range changes {
		changes[i] = math.Abs(areas[i+1] - areas[i])
		maxChange = max(maxChange, changes[i])
	}
	if maxChange <= 0 {
		return nil
	}
	mean, std := stat.PopMeanStdDev(changes, nil)
	if math.IsNaN(mean) || math.IsNaN(std) {
		return nil
	}
	threshold := mean + 2*std

	width := (hi - lo) / Bands
	var regions []JointRegion
	for i, c := range changes {
		if c <= threshold {
			continue
		}
		pos := d.Centroid
		pos[axis] = lo + float64(i+1)*width
		regions = append(regions, JointRegion{
			Position: pos,
			Strength: c / maxChange,
			Kind:     KindConstriction,
		})
	}
	return regions
}
