package rigid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Frame is an orientation relative to the inertial frame, stored as a
// unit quaternion that rotates body-frame vectors into inertial ones.
type Frame struct {
	q mgl64.Quat
}

func IdentityFrame() Frame { return Frame{q: mgl64.QuatIdent()} }

// FrameFromEuler builds a frame from 3-2-1 Euler angles: yaw ψ about z,
// then pitch θ about y, then roll φ about x.
func FrameFromEuler(phi, theta, psi float64) Frame {
	q := mgl64.QuatRotate(psi, mgl64.Vec3{0, 0, 1}).
		Mul(mgl64.QuatRotate(theta, mgl64.Vec3{0, 1, 0})).
		Mul(mgl64.QuatRotate(phi, mgl64.Vec3{1, 0, 0}))
	return Frame{q: q.Normalize()}
}

// FrameOf returns the frame described by the attitude part of a state.
func FrameOf(state []float64) Frame {
	return FrameFromEuler(state[Phi], state[Theta], state[Psi])
}

func (f Frame) Quat() mgl64.Quat { return f.q }

// ToInertial rotates a body-frame vector into the inertial frame.
func (f Frame) ToInertial(v mgl64.Vec3) mgl64.Vec3 { return f.q.Rotate(v) }

// ToBody rotates an inertial vector into the body frame.
func (f Frame) ToBody(v mgl64.Vec3) mgl64.Vec3 { return f.q.Conjugate().Rotate(v) }

// Rotate applies an additional body-axis rotation (roll, pitch, yaw).
func (f Frame) Rotate(dphi, dtheta, dpsi float64) Frame {
	return Frame{q: f.q.Mul(FrameFromEuler(dphi, dtheta, dpsi).q).Normalize()}
}

// Euler returns the 3-2-1 Euler angles (φ, θ, ψ) of the frame.
func (f Frame) Euler() (phi, theta, psi float64) {
	w, x, y, z := f.q.W, f.q.V[0], f.q.V[1], f.q.V[2]

	phi = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	s := 2 * (w*y - z*x)
	switch {
	case s >= 1:
		theta = math.Pi / 2
	case s <= -1:
		theta = -math.Pi / 2
	default:
		theta = math.Asin(s)
	}

	psi = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return phi, theta, psi
}
