package system

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/c-bruce/rocketsim/internal/body"
	"github.com/c-bruce/rocketsim/internal/config"
	"github.com/c-bruce/rocketsim/internal/control"
	"github.com/c-bruce/rocketsim/internal/ephem"
	"github.com/c-bruce/rocketsim/internal/integrators"
)

// FromScenario builds a system ready to simulate. Options are applied
// after the scenario settings and may override them.
func FromScenario(sc *config.Scenario, opts ...Option) (*System, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	epoch, err := sc.EpochTime()
	if err != nil {
		return nil, err
	}
	scheme, err := integrators.Scheme(sc.Scheme)
	if err != nil {
		return nil, err
	}

	s := New(sc.Name, append([]Option{WithScheme(sc.Scheme, scheme), WithEpoch(epoch)}, opts...)...)
	s.SetDt(sc.Dt)
	s.SetEndTime(sc.EndTime)
	s.SetSaveInterval(sc.SaveInterval)

	seeds := ephemerisSeeds(sc)
	r := &resolver{kin: make(map[string]config.Kinematics), done: make(map[string][2]mgl64.Vec3), seeds: seeds}
	for _, c := range sc.CelestialBodies {
		r.kin[c.Name] = c.Kinematics
	}
	for _, v := range sc.Vessels {
		r.kin[v.Name] = v.Kinematics
	}

	for _, c := range sc.CelestialBodies {
		cb := body.NewCelestialBody(c.Name, c.Mass, c.Radius, c.Parent)
		cb.SetTexture(c.Texture)
		if err := r.place(&cb.Body, c.Name); err != nil {
			return nil, err
		}
		if err := s.Current.AddCelestialBody(cb); err != nil {
			return nil, err
		}
	}

	for _, vc := range sc.Vessels {
		stages := make([]*body.Stage, len(vc.Stages))
		for i := range vc.Stages {
			st := vc.Stages[i]
			stages[i] = &st
		}
		v := body.NewVessel(vc.Name, stages...)
		v.Throttle = vc.Throttle
		if len(vc.Gimbal) == 2 {
			v.GimbalPitch, v.GimbalYaw = vc.Gimbal[0], vc.Gimbal[1]
		}
		if err := r.place(&v.Body, vc.Name); err != nil {
			return nil, err
		}
		if err := s.Current.AddVessel(v); err != nil {
			return nil, err
		}
		if g := vc.Guidance; g != nil {
			hold := control.NewAttitudeHold(vec(g.Target), g.Kp, g.Ki, g.Kd)
			hold.Limit = g.Limit
			if err := s.SetGuidance(vc.Name, hold); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// ephemerisSeeds computes barycentric Earth and Moon states at the
// scenario epoch for bodies that request them.
func ephemerisSeeds(sc *config.Scenario) map[string]ephem.BodyState {
	earthMass, moonMass := ephem.EarthMass, ephem.MoonMass
	var earthName, moonName string
	for _, c := range sc.CelestialBodies {
		switch c.Ephemeris {
		case "earth":
			earthName, earthMass = c.Name, c.Mass
		case "moon":
			moonName, moonMass = c.Name, c.Mass
		}
	}
	if earthName == "" && moonName == "" {
		return nil
	}

	epoch, _ := sc.EpochTime()
	e, m := ephem.EarthMoon(epoch, earthMass, moonMass)
	seeds := make(map[string]ephem.BodyState)
	if earthName != "" {
		seeds[earthName] = e
	}
	if moonName != "" {
		seeds[moonName] = m
	}
	return seeds
}

type resolver struct {
	kin   map[string]config.Kinematics
	seeds map[string]ephem.BodyState
	done  map[string][2]mgl64.Vec3
	stack []string
}

// resolve returns the inertial position and velocity of name, following
// relative_to references.
func (r *resolver) resolve(name string) (pos, vel mgl64.Vec3, err error) {
	if pv, ok := r.done[name]; ok {
		return pv[0], pv[1], nil
	}
	for _, n := range r.stack {
		if n == name {
			return pos, vel, fmt.Errorf("%w: relative_to cycle through %q", config.ErrInvalidScenario, name)
		}
	}
	k, ok := r.kin[name]
	if !ok {
		return pos, vel, fmt.Errorf("%w: %q", ErrUnknownBody, name)
	}

	r.stack = append(r.stack, name)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	pos, vel = vec(k.Position), vec(k.Velocity)
	if seed, ok := r.seeds[name]; ok {
		pos, vel = seed.Position.Add(pos), seed.Velocity.Add(vel)
	}
	if k.RelativeTo != "" {
		p0, v0, err := r.resolve(k.RelativeTo)
		if err != nil {
			return pos, vel, err
		}
		pos, vel = pos.Add(p0), vel.Add(v0)
	}
	r.done[name] = [2]mgl64.Vec3{pos, vel}
	return pos, vel, nil
}

func (r *resolver) place(b *body.Body, name string) error {
	pos, vel, err := r.resolve(name)
	if err != nil {
		return err
	}
	k := r.kin[name]
	b.SetPosition(pos)
	b.SetVelocity(vel)
	b.SetAttitude(vec(k.Attitude))
	b.SetAttitudeDot(vec(k.AttitudeDot))
	return nil
}

func vec(v []float64) mgl64.Vec3 {
	if len(v) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0], v[1], v[2]}
}
