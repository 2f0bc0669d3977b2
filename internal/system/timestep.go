package system

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/c-bruce/rocketsim/internal/body"
	"github.com/c-bruce/rocketsim/internal/force"
	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/storage"
)

var (
	ErrDuplicateBody = errors.New("system: duplicate body name")
	ErrUnknownBody   = errors.New("system: unknown body")
	ErrNoBodies      = errors.New("system: no bodies to simulate")
)

// Object is a simulated body of either kind.
type Object interface {
	rigid.Object
	Kind() body.Kind
	Position() mgl64.Vec3
	Velocity() mgl64.Vec3
	ClearForces()
	AddForce(mgl64.Vec3)
	AddMoment(mgl64.Vec3)
	Truncate()
}

// Timestep is the state of every body at one simulation time.
type Timestep struct {
	Step            int
	Time            float64
	CelestialBodies map[string]*body.CelestialBody
	Vessels         map[string]*body.Vessel
}

func NewTimestep() *Timestep {
	return &Timestep{
		CelestialBodies: make(map[string]*body.CelestialBody),
		Vessels:         make(map[string]*body.Vessel),
	}
}

func (ts *Timestep) has(name string) bool {
	_, c := ts.CelestialBodies[name]
	_, v := ts.Vessels[name]
	return c || v
}

func (ts *Timestep) AddCelestialBody(c *body.CelestialBody) error {
	if ts.has(c.Name) {
		return fmt.Errorf("%w: %q", ErrDuplicateBody, c.Name)
	}
	ts.CelestialBodies[c.Name] = c
	return nil
}

func (ts *Timestep) AddVessel(v *body.Vessel) error {
	if ts.has(v.Name) {
		return fmt.Errorf("%w: %q", ErrDuplicateBody, v.Name)
	}
	ts.Vessels[v.Name] = v
	return nil
}

// Names returns every body name, celestial bodies first, each group sorted.
func (ts *Timestep) Names() []string {
	names := make([]string, 0, len(ts.CelestialBodies)+len(ts.Vessels))
	for name := range ts.CelestialBodies {
		names = append(names, name)
	}
	sort.Strings(names)
	n := len(names)
	for name := range ts.Vessels {
		names = append(names, name)
	}
	sort.Strings(names[n:])
	return names
}

// Object returns the named body.
func (ts *Timestep) Object(name string) (Object, error) {
	if c, ok := ts.CelestialBodies[name]; ok {
		return c, nil
	}
	if v, ok := ts.Vessels[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBody, name)
}

func (ts *Timestep) objects() []Object {
	names := ts.Names()
	objs := make([]Object, 0, len(names))
	for _, name := range names {
		if c, ok := ts.CelestialBodies[name]; ok {
			objs = append(objs, c)
			continue
		}
		objs = append(objs, ts.Vessels[name])
	}
	return objs
}

// Clone returns a snapshot holding only the current state of each body.
func (ts *Timestep) Clone() *Timestep {
	out := NewTimestep()
	out.Step, out.Time = ts.Step, ts.Time

	for name, c := range ts.CelestialBodies {
		out.CelestialBodies[name] = c.Snapshot()
	}
	for name, v := range ts.Vessels {
		out.Vessels[name] = v.Snapshot()
	}
	return out
}

func objectName(o Object) string {
	switch b := o.(type) {
	case *body.CelestialBody:
		return b.Name
	case *body.Vessel:
		return b.Name
	}
	return ""
}

// Records flattens the timestep for storage.
func (ts *Timestep) Records(index int) []storage.Record {
	objs := ts.objects()
	records := make([]storage.Record, 0, len(objs))
	for _, o := range objs {
		r := storage.Record{
			Index: index,
			Time:  ts.Time,
			Body:  objectName(o),
			Kind:  o.Kind(),
			Mass:  o.MassProperties(),
			State: o.State().Clone(),
			U:     o.U().Clone(),
		}
		if v, ok := o.(*body.Vessel); ok {
			r.Stages = len(v.Stages)
			if s := v.ActiveStage(); s != nil {
				r.Propellant = s.PropellantMass
			}
		}
		records = append(records, r)
	}
	return records
}

// Energy returns the total kinetic energy (translational and rotational)
// and the gravitational potential energy of all pairs.
func (ts *Timestep) Energy() (kinetic, potential float64) {
	objs := ts.objects()
	for i, o := range objs {
		mp := o.MassProperties()
		x := o.State()
		v := o.Velocity()
		kinetic += 0.5 * mp.Mass * v.Dot(v)
		kinetic += 0.5 * (mp.Ix*x[rigid.PhiDot]*x[rigid.PhiDot] + mp.Iy*x[rigid.ThetaDot]*x[rigid.ThetaDot] + mp.Iz*x[rigid.PsiDot]*x[rigid.PsiDot])
		for _, other := range objs[i+1:] {
			potential += force.PotentialEnergy(mp.Mass, o.Position(), other.MassProperties().Mass, other.Position())
		}
	}
	return kinetic, potential
}

// Momentum returns the total linear momentum.
func (ts *Timestep) Momentum() mgl64.Vec3 {
	var p mgl64.Vec3
	for _, o := range ts.objects() {
		p = p.Add(o.Velocity().Mul(o.MassProperties().Mass))
	}
	return p
}
