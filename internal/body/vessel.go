package body

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/c-bruce/rocketsim/internal/force"
	"github.com/c-bruce/rocketsim/internal/rigid"
)

var ErrLastStage = errors.New("body: cannot separate the last stage")

// Stage is one section of a vessel. Stages are cylinders stacked along
// the body x axis; the first stage is the active one.
type Stage struct {
	Name           string  `json:"name" yaml:"name"`
	DryMass        float64 `json:"dry_mass" yaml:"dry_mass"`
	PropellantMass float64 `json:"propellant_mass" yaml:"propellant_mass"`
	Thrust         float64 `json:"thrust" yaml:"thrust"`
	Isp            float64 `json:"isp" yaml:"isp"`
	Length         float64 `json:"length" yaml:"length"`
	Radius         float64 `json:"radius" yaml:"radius"`
}

func (s *Stage) Mass() float64 { return s.DryMass + s.PropellantMass }

// Vessel is a stack of stages driven by a throttle and gimballed engine.
type Vessel struct {
	Body
	Stages      []*Stage
	Throttle    float64
	GimbalPitch float64
	GimbalYaw   float64
}

func NewVessel(name string, stages ...*Stage) *Vessel {
	return &Vessel{Body: newBody(name), Stages: stages}
}

func (v *Vessel) Kind() Kind { return KindVessel }

func (v *Vessel) Mass() float64 {
	m := 0.0
	for _, s := range v.Stages {
		m += s.Mass()
	}
	return m
}

// Length is the height of the stage stack.
func (v *Vessel) Length() float64 {
	l := 0.0
	for _, s := range v.Stages {
		l += s.Length
	}
	return l
}

func (v *Vessel) radius() float64 {
	r := 0.0
	for _, s := range v.Stages {
		r = math.Max(r, s.Radius)
	}
	return r
}

// MassProperties treats the vessel as a solid cylinder along body x.
func (v *Vessel) MassProperties() rigid.MassProperties {
	m, r, l := v.Mass(), v.radius(), v.Length()
	lateral := m * (3*r*r + l*l) / 12
	return rigid.MassProperties{Mass: m, Ix: 0.5 * m * r * r, Iy: lateral, Iz: lateral}
}

func (v *Vessel) ActiveStage() *Stage {
	if len(v.Stages) == 0 {
		return nil
	}
	return v.Stages[0]
}

// Burn consumes propellant from the active stage for dt seconds at the
// current throttle and returns the mean thrust delivered.
func (v *Vessel) Burn(dt float64) float64 {
	s := v.ActiveStage()
	throttle := math.Max(0, math.Min(1, v.Throttle))
	if s == nil || throttle == 0 || s.PropellantMass <= 0 {
		return 0
	}

	thrust := s.Thrust * throttle
	used := force.MassFlow(thrust, s.Isp) * dt
	if used > s.PropellantMass {
		thrust *= s.PropellantMass / used
		used = s.PropellantMass
	}
	s.PropellantMass -= used
	return thrust
}

// ThrustLever is the engine position relative to the centre of mass,
// taken as the aft end of the stack.
func (v *Vessel) ThrustLever() mgl64.Vec3 {
	return mgl64.Vec3{-v.Length() / 2, 0, 0}
}

// Snapshot returns a copy of v with its own stages, holding only the
// current state.
func (v *Vessel) Snapshot() *Vessel {
	out := *v
	out.Body = v.Body.snapshot()
	out.Stages = make([]*Stage, len(v.Stages))
	for i, s := range v.Stages {
		sc := *s
		out.Stages[i] = &sc
	}
	return &out
}

// Separate drops the active stage.
func (v *Vessel) Separate() error {
	if len(v.Stages) <= 1 {
		return ErrLastStage
	}
	v.Stages = v.Stages[1:]
	return nil
}
