package control

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/sim"
)

// AttitudeHold drives the Euler angles of a rigid body to Target with one
// PID loop per axis. Output moments are clamped to ±Limit when Limit > 0.
type AttitudeHold struct {
	Target mgl64.Vec3
	Limit  float64
	loops  [3]*PID
	prevT  float64
	first  bool
}

func NewAttitudeHold(target mgl64.Vec3, kp, ki, kd float64) *AttitudeHold {
	return &AttitudeHold{
		Target: target,
		loops:  [3]*PID{NewPID(kp, ki, kd), NewPID(kp, ki, kd), NewPID(kp, ki, kd)},
		first:  true,
	}
}

// Moments returns the body moments for the given state after dt seconds.
func (a *AttitudeHold) Moments(x sim.State, dt float64) mgl64.Vec3 {
	att := rigid.Attitude(x)
	var m mgl64.Vec3
	for i, loop := range a.loops {
		m[i] = a.clamp(loop.Update(wrapAngle(a.Target[i]-att[i]), dt))
	}
	return m
}

func (a *AttitudeHold) Compute(x sim.State, t float64) sim.Control {
	dt := 0.0
	if !a.first {
		dt = t - a.prevT
	}
	a.first = false
	a.prevT = t

	m := a.Moments(x, dt)
	return sim.Control{0, 0, 0, m[0], m[1], m[2]}
}

func (a *AttitudeHold) Reset() {
	for _, loop := range a.loops {
		loop.Reset()
	}
	a.first = true
}

func (a *AttitudeHold) clamp(v float64) float64 {
	if a.Limit <= 0 {
		return v
	}
	return math.Max(-a.Limit, math.Min(a.Limit, v))
}

// wrapAngle maps an angle into (-π, π].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
