package raster

import (
	"math"

	"mesh-autorig/internal/mathutil"
)

// LightConfig is a two-light rig for weight previews: a key light from the
// upper front and a dim fill from below behind, plus a sky/ground hemisphere.
type LightConfig struct {
	KeyDir   mathutil.Vec3
	FillDir  mathutil.Vec3
	Ambient  float64
	Sky      float64 // hemisphere term for normals facing +Y in view space
	Key      float64
	Fill     float64
	Exposure float64
	InvGamma float64
}

// DefaultLightConfig keeps weight colours close to their palette values on
// faces turned toward the camera.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		KeyDir:   mathutil.Vec3{0.45, 0.65, 0.6}.Normalize(),
		FillDir:  mathutil.Vec3{-0.5, -0.4, -0.75}.Normalize(),
		Ambient:  0.6,
		Sky:      0.35,
		Key:      1.2,
		Fill:     0.4,
		Exposure: 1.0,
		InvGamma: 1.0 / 2.2,
	}
}

// ComputeShade returns the light scalar for a unit face normal. Winding is
// not trusted, so both Lambert terms use |n·l|.
func (lc *LightConfig) ComputeShade(n mathutil.Vec3) float64 {
	sky := 0.5 + 0.5*n[1]
	return lc.Ambient +
		lc.Sky*sky +
		lc.Key*math.Abs(n.Dot(lc.KeyDir)) +
		lc.Fill*math.Abs(n.Dot(lc.FillDir))
}

// srgbToLinear maps an 8-bit sRGB channel to linear light.
var srgbToLinear [256]float64

func init() {
	for i := range srgbToLinear {
		srgbToLinear[i] = math.Pow(float64(i)/255, 2.2)
	}
}

// ACESTonemap is the fitted ACES filmic curve.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}
