// Package ephem seeds Earth and Moon initial conditions from an analytic
// lunar theory. Positions are in metres in the ecliptic frame of date.
package ephem

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
)

const (
	EarthMass   = 5.972e24
	EarthRadius = 6.371e6
	MoonMass    = 7.348e22
	MoonRadius  = 1.737e6

	// SiderealDay is the Earth's rotation period in seconds.
	SiderealDay = 23*60*60 + 56*60 + 4

	// deltaT approximates TT - UT in seconds.
	deltaT = 69.2
)

// EarthSpin is the Earth's rotation rate about its z axis in rad/s.
var EarthSpin = 2 * math.Pi / SiderealDay

// JDE returns the Julian ephemeris day of t.
func JDE(t time.Time) float64 {
	return julian.TimeToJD(t.UTC()) + deltaT/86400
}

// MoonGeocentric returns the Moon's position relative to the Earth.
func MoonGeocentric(t time.Time) mgl64.Vec3 {
	l, b, d := moonposition.Position(JDE(t))
	r := d * 1000

	sB, cB := math.Sincos(b.Rad())
	sL, cL := math.Sincos(l.Rad())
	return mgl64.Vec3{r * cB * cL, r * cB * sL, r * sB}
}

// MoonState returns the Moon's geocentric position and a velocity taken as
// the one-second finite difference of positions.
func MoonState(t time.Time) (pos, vel mgl64.Vec3) {
	pos = MoonGeocentric(t)
	vel = MoonGeocentric(t.Add(time.Second)).Sub(pos)
	return pos, vel
}

// BodyState is a position and velocity pair.
type BodyState struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
}

// EarthMoon returns the Earth and Moon states relative to their common
// barycentre.
func EarthMoon(t time.Time, earthMass, moonMass float64) (earth, moon BodyState) {
	r, v := MoonState(t)
	k := moonMass / (earthMass + moonMass)

	earth = BodyState{Position: r.Mul(-k), Velocity: v.Mul(-k)}
	moon = BodyState{Position: r.Mul(1 - k), Velocity: v.Mul(1 - k)}
	return earth, moon
}
