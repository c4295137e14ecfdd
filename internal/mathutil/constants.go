package mathutil

import "math"

// Preview camera matrices. Meshes are Z-up; the view space used by the
// rasterizer is X right, Y up, depth toward the viewer.
var (
	// ZUpToView looks at the mesh from -Y (front view).
	ZUpToView = Mat3{
		1, 0, 0,
		0, 0, 1,
		0, -1, 0,
	}

	// PreviewTilt is a slight three-quarter view: pitch -15°, then yaw 12°.
	PreviewTilt = tilt(-15, 12)

	// PreviewView = PreviewTilt @ ZUpToView
	PreviewView = Mat3Mul(PreviewTilt, ZUpToView)
)

// tilt returns Rx(pitch) @ Ry(yaw), angles in degrees.
func tilt(pitch, yaw float64) Mat3 {
	cp, sp := math.Cos(pitch*math.Pi/180), math.Sin(pitch*math.Pi/180)
	cy, sy := math.Cos(yaw*math.Pi/180), math.Sin(yaw*math.Pi/180)
	rx := Mat3{
		1, 0, 0,
		0, cp, -sp,
		0, sp, cp,
	}
	ry := Mat3{
		cy, 0, sy,
		0, 1, 0,
		-sy, 0, cy,
	}
	return Mat3Mul(rx, ry)
}

// Epsilon floors used to keep divisions finite.
const (
	EpsDistance = 1e-9
	EpsRatio    = 1e-6
)
