// Package force implements the force laws acting on rigid bodies.
package force

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/c-bruce/rocketsim/internal/rigid"
)

const (
	// G is the Newtonian constant of gravitation in m³/(kg·s²).
	G = 6.67430e-11
	// G0 is standard gravity in m/s², used to convert specific impulse.
	G0 = 9.80665
)

// Gravity returns the force exerted on body 1 by body 2. Coincident bodies
// exert no force on each other.
func Gravity(m1 float64, p1 mgl64.Vec3, m2 float64, p2 mgl64.Vec3) mgl64.Vec3 {
	r := p2.Sub(p1)
	d2 := r.Dot(r)
	if d2 == 0 {
		return mgl64.Vec3{}
	}
	return r.Mul(G * m1 * m2 / (d2 * math.Sqrt(d2)))
}

// PotentialEnergy returns the gravitational potential energy of a pair.
func PotentialEnergy(m1 float64, p1 mgl64.Vec3, m2 float64, p2 mgl64.Vec3) float64 {
	d := p2.Sub(p1).Len()
	if d == 0 {
		return 0
	}
	return -G * m1 * m2 / d
}

// Thrust returns the inertial force and body-frame moment produced by an
// engine of the given magnitude. The engine pushes along body +x,
// deflected by the gimbal angles (pitch about y, yaw about z), and acts
// at lever relative to the centre of mass.
func Thrust(magnitude float64, frame rigid.Frame, gimbalPitch, gimbalYaw float64, lever mgl64.Vec3) (f, m mgl64.Vec3) {
	if magnitude == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	dir := rigid.FrameFromEuler(0, gimbalPitch, gimbalYaw).ToInertial(mgl64.Vec3{1, 0, 0})
	fBody := dir.Mul(magnitude)
	return frame.ToInertial(fBody), lever.Cross(fBody)
}

// MassFlow returns the propellant consumption rate of an engine in kg/s.
func MassFlow(thrust, isp float64) float64 {
	if isp <= 0 {
		return 0
	}
	return thrust / (isp * G0)
}
