package skeleton

import "mesh-autorig/internal/mathutil"

// LocalMatrices returns each joint's rest transform relative to its parent.
// Joints carry no rotation, so locals are translations between heads.
func (s *Skeleton) LocalMatrices() []mathutil.Mat4 {
	locals := make([]mathutil.Mat4, len(s.Joints))
	for i, j := range s.Joints {
		t := j.Head
		if j.Parent >= 0 && j.Parent < i {
			t = t.Sub(s.Joints[j.Parent].Head)
		}
		locals[i] = mathutil.Translation(t)
	}
	return locals
}

// WorldMatrices chains the local transforms down the hierarchy. The parent
// ordering invariant lets this run in a single forward pass.
func (s *Skeleton) WorldMatrices() []mathutil.Mat4 {
	locals := s.LocalMatrices()
	worlds := make([]mathutil.Mat4, len(locals))
	for i, j := range s.Joints {
		if j.Parent >= 0 && j.Parent < i {
			worlds[i] = mathutil.Mat4Mul(worlds[j.Parent], locals[i])
		} else {
			worlds[i] = locals[i]
		}
	}
	return worlds
}

// InverseBindMatrices returns the inverse of every world matrix. With
// translation-only joints the inverse is the negated head translation.
func (s *Skeleton) InverseBindMatrices() []mathutil.Mat4 {
	worlds := s.WorldMatrices()
	inv := make([]mathutil.Mat4, len(worlds))
	for i, w := range worlds {
		inv[i] = mathutil.Translation(mathutil.Vec3{-w[3], -w[7], -w[11]})
	}
	return inv
}
