package mathutil

// Mat3 is a 3×3 matrix stored row-major: [r0c0, r0c1, r0c2, r1c0, ...].
// Value type for zero heap allocation.
type Mat3 [9]float64

func Mat3Identity() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Mat3Mul returns a × b.
func Mat3Mul(a, b Mat3) Mat3 {
	var m Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m[r*3+c] = a[r*3+0]*b[0*3+c] + a[r*3+1]*b[1*3+c] + a[r*3+2]*b[2*3+c]
		}
	}
	return m
}

// MulVec3 returns M × v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

// Covariance returns the population covariance matrix of pts about mean.
func Covariance(pts []Vec3, mean Vec3) Mat3 {
	var m Mat3
	if len(pts) == 0 {
		return m
	}
	for _, p := range pts {
		d := p.Sub(mean)
		for r := 0; r < 3; r++ {
			for c := r; c < 3; c++ {
				m[r*3+c] += d[r] * d[c]
			}
		}
	}
	inv := 1 / float64(len(pts))
	for r := 0; r < 3; r++ {
		for c := r; c < 3; c++ {
			m[r*3+c] *= inv
			m[c*3+r] = m[r*3+c]
		}
	}
	return m
}
