package body

import "github.com/c-bruce/rocketsim/internal/rigid"

// CelestialBody is a uniform sphere of fixed mass. Bodies built with
// NewRigidBody carry explicit inertia instead.
type CelestialBody struct {
	Body
	Mass    float64
	Radius  float64
	Parent  string
	Texture string
	inertia *[3]float64
}

// NewCelestialBody returns a body at rest at the origin. parent names the
// body it orbits and may be empty.
func NewCelestialBody(name string, mass, radius float64, parent string) *CelestialBody {
	return &CelestialBody{
		Body:   newBody(name),
		Mass:   mass,
		Radius: radius,
		Parent: parent,
	}
}

// NewRigidBody returns a passive body with the given mass properties.
func NewRigidBody(name string, mp rigid.MassProperties) *CelestialBody {
	c := NewCelestialBody(name, mp.Mass, 0, "")
	c.inertia = &[3]float64{mp.Ix, mp.Iy, mp.Iz}
	return c
}

func (c *CelestialBody) Kind() Kind {
	if c.inertia != nil {
		return KindRigid
	}
	return KindCelestial
}

func (c *CelestialBody) SetTexture(path string) { c.Texture = path }

func (c *CelestialBody) MassProperties() rigid.MassProperties {
	if c.inertia != nil {
		return rigid.MassProperties{Mass: c.Mass, Ix: c.inertia[0], Iy: c.inertia[1], Iz: c.inertia[2]}
	}
	i := 0.4 * c.Mass * c.Radius * c.Radius
	return rigid.MassProperties{Mass: c.Mass, Ix: i, Iy: i, Iz: i}
}

// Snapshot returns a copy of c holding only its current state.
func (c *CelestialBody) Snapshot() *CelestialBody {
	out := *c
	out.Body = c.Body.snapshot()
	return &out
}
