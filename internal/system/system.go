// Package system advances a set of celestial bodies and vessels under
// mutual gravity and vessel thrust, saving snapshots at a fixed interval.
package system

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/c-bruce/rocketsim/internal/body"
	"github.com/c-bruce/rocketsim/internal/control"
	"github.com/c-bruce/rocketsim/internal/force"
	"github.com/c-bruce/rocketsim/internal/integrators"
	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/sim"
	"github.com/c-bruce/rocketsim/internal/storage"
)

type System struct {
	Name      string
	Current   *Timestep
	Timesteps map[int]*Timestep
	Bodies    []storage.BodyInfo

	dt           float64
	endTime      float64
	saveInterval int
	schemeName   string
	scheme       sim.Scheme
	epoch        time.Time
	guidance     map[string]*control.AttitudeHold
	store        *storage.Store
	logger       log.Logger
	workers      int
	runID        string
}

type Option func(*System)

// WithStore makes Simulate stream saved timesteps to st.
func WithStore(st *storage.Store) Option {
	return func(s *System) { s.store = st }
}

func WithLogger(l log.Logger) Option {
	return func(s *System) { s.logger = log.With(l, "subsys", "system") }
}

// WithScheme selects the update scheme by name.
func WithScheme(name string, scheme sim.Scheme) Option {
	return func(s *System) { s.schemeName, s.scheme = name, scheme }
}

// WithWorkers sets the number of goroutines used for force evaluation.
func WithWorkers(n int) Option {
	return func(s *System) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithEpoch(t time.Time) Option {
	return func(s *System) { s.epoch = t }
}

func New(name string, opts ...Option) *System {
	s := &System{
		Name:         name,
		Current:      NewTimestep(),
		Timesteps:    make(map[int]*Timestep),
		dt:           1,
		endTime:      1,
		saveInterval: 1,
		schemeName:   "euler",
		scheme:       integrators.EulerScheme,
		guidance:     make(map[string]*control.AttitudeHold),
		logger:       log.NewNopLogger(),
		workers:      runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *System) SetDt(dt float64)          { s.dt = dt }
func (s *System) SetEndTime(t float64)      { s.endTime = t }
func (s *System) SetSaveInterval(steps int) { s.saveInterval = steps }
func (s *System) Dt() float64               { return s.dt }
func (s *System) EndTime() float64          { return s.endTime }
func (s *System) SaveInterval() int         { return s.saveInterval }
func (s *System) RunID() string             { return s.runID }
func (s *System) SchemeName() string        { return s.schemeName }

// Steps is the number of integration steps needed to reach the end time
// from the current timestep.
func (s *System) Steps() int {
	return sim.Config{Dt: s.dt, Duration: s.endTime - s.Current.Time}.Steps()
}

// SetGuidance attaches an attitude hold loop to a vessel.
func (s *System) SetGuidance(vessel string, hold *control.AttitudeHold) error {
	if _, ok := s.Current.Vessels[vessel]; !ok {
		return fmt.Errorf("%w: vessel %q", ErrUnknownBody, vessel)
	}
	s.guidance[vessel] = hold
	return nil
}

func (s *System) validate() error {
	switch {
	case s.dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", sim.ErrInvalidConfig, s.dt)
	case s.endTime <= 0:
		return fmt.Errorf("%w: end time must be positive, got %g", sim.ErrInvalidConfig, s.endTime)
	case s.endTime <= s.Current.Time:
		return fmt.Errorf("%w: end time %g is not after the current time %g", sim.ErrInvalidConfig, s.endTime, s.Current.Time)
	case s.saveInterval < 1:
		return fmt.Errorf("%w: save interval must be at least 1, got %d", sim.ErrInvalidConfig, s.saveInterval)
	case len(s.Current.CelestialBodies)+len(s.Current.Vessels) == 0:
		return ErrNoBodies
	}
	return nil
}

// Summary reports conservation diagnostics of a run.
type Summary struct {
	RunID       string
	Steps       int
	Saved       int
	Elapsed     time.Duration
	EnergyDrift float64
	Momentum    [2]mgl64.Vec3
}

// Simulate integrates from the current timestep to the end time. Every
// saveInterval steps the state of all bodies is added to Timesteps and,
// when a store is configured, written to disk. On cancellation the
// timesteps saved so far are kept and ctx.Err() is returned.
func (s *System) Simulate(ctx context.Context) (*Summary, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	steps := s.Steps()
	start := time.Now()
	s.Timesteps = make(map[int]*Timestep)
	s.Bodies = s.bodyInfo()

	var w *storage.Writer
	meta := &storage.RunMetadata{
		Name:         s.Name,
		Timestamp:    start,
		Epoch:        s.epoch,
		Dt:           s.dt,
		EndTime:      s.endTime,
		SaveInterval: s.saveInterval,
		Scheme:       s.schemeName,
		Bodies:       s.Bodies,
		Metrics:      make(map[string]float64),
	}
	if s.store != nil {
		var err error
		if w, err = s.store.Create(meta); err != nil {
			return nil, fmt.Errorf("create run: %w", err)
		}
		s.runID = w.ID()
	}

	ke0, pe0 := s.Current.Energy()
	summary := &Summary{RunID: s.runID}
	summary.Momentum[0] = s.Current.Momentum()

	level.Info(s.logger).Log("msg", "simulating", "name", s.Name, "bodies", len(s.Bodies), "steps", steps, "dt", s.dt, "scheme", s.schemeName)

	save := func() {
		index := len(s.Timesteps)
		s.Timesteps[index] = s.Current.Clone()
		if w != nil {
			w.Write(s.Current.Records(index))
		}
		for _, o := range s.Current.objects() {
			o.Truncate()
		}
	}

	base := s.Current.Step
	t0 := s.Current.Time
	save()

	var runErr error
	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			level.Warn(s.logger).Log("msg", "simulation interrupted", "step", i, "err", runErr)
			break
		}

		if err := s.step(); err != nil {
			runErr = sim.SimError{Time: s.Current.Time, Step: base + i, Message: err.Error(), Wrapped: err}
			level.Error(s.logger).Log("msg", "step failed", "step", base+i, "err", err)
			break
		}
		s.Current.Step = base + i
		s.Current.Time = t0 + float64(i)*s.dt

		if i%s.saveInterval == 0 {
			save()
			level.Debug(s.logger).Log("msg", "saved", "index", len(s.Timesteps)-1, "time", s.Current.Time)
		}
		summary.Steps = i
	}

	ke1, pe1 := s.Current.Energy()
	if e0 := ke0 + pe0; e0 != 0 {
		summary.EnergyDrift = math.Abs((ke1+pe1)-e0) / math.Abs(e0)
	}
	summary.Momentum[1] = s.Current.Momentum()
	summary.Saved = len(s.Timesteps)
	summary.Elapsed = time.Since(start)

	if w != nil {
		meta.Steps = summary.Steps
		meta.Saved = summary.Saved
		meta.Complete = runErr == nil
		meta.Metrics["energy_drift"] = summary.EnergyDrift
		meta.Metrics["momentum_change"] = summary.Momentum[1].Sub(summary.Momentum[0]).Len()
		if err := w.Close(); err != nil && runErr == nil {
			runErr = fmt.Errorf("write run: %w", err)
		}
	}

	level.Info(s.logger).Log("msg", "finished", "steps", summary.Steps, "saved", summary.Saved, "energy_drift", summary.EnergyDrift, "elapsed", summary.Elapsed)
	return summary, runErr
}

// step applies forces to every body and advances each by one dt.
func (s *System) step() error {
	objs := s.Current.objects()
	n := len(objs)

	masses := make([]float64, n)
	positions := make([]mgl64.Vec3, n)
	for i, o := range objs {
		masses[i] = o.MassProperties().Mass
		positions[i] = o.Position()
	}

	gravity := make([]mgl64.Vec3, n)
	parallel.WithNumGoroutines(s.workers).For(n, func(i, _ int) {
		var f mgl64.Vec3
		for j := 0; j < n; j++ {
			if j != i {
				f = f.Add(force.Gravity(masses[i], positions[i], masses[j], positions[j]))
			}
		}
		gravity[i] = f
	})

	for i, o := range objs {
		o.ClearForces()
		o.AddForce(gravity[i])
		if v, ok := o.(*body.Vessel); ok {
			s.propel(v)
		}
	}

	next := make([]sim.State, n)
	for i, o := range objs {
		x, err := rigid.Step(o, s.scheme, s.dt)
		if err != nil {
			return fmt.Errorf("%s: %w", objectName(o), err)
		}
		next[i] = x
	}
	for i, o := range objs {
		o.AppendState(next[i])
	}
	return nil
}

func (s *System) propel(v *body.Vessel) {
	if st := v.ActiveStage(); st != nil && st.PropellantMass <= 0 && v.Throttle > 0 && len(v.Stages) > 1 {
		if err := v.Separate(); err == nil {
			level.Info(s.logger).Log("msg", "stage separation", "vessel", v.Name, "time", s.Current.Time, "remaining", len(v.Stages))
		}
	}

	thrust := v.Burn(s.dt)
	f, m := force.Thrust(thrust, v.Frame(), v.GimbalPitch, v.GimbalYaw, v.ThrustLever())
	v.AddForce(f)
	v.AddMoment(m)

	if hold, ok := s.guidance[v.Name]; ok {
		v.AddMoment(hold.Moments(v.State(), s.dt))
	}
}

func (s *System) bodyInfo() []storage.BodyInfo {
	var out []storage.BodyInfo
	for _, name := range s.Current.Names() {
		if c, ok := s.Current.CelestialBodies[name]; ok {
			out = append(out, storage.BodyInfo{Name: name, Kind: c.Kind(), Radius: c.Radius, Parent: c.Parent, Texture: c.Texture})
			continue
		}
		v := s.Current.Vessels[name]
		stages := make([]body.Stage, len(v.Stages))
		for i, st := range v.Stages {
			stages[i] = *st
		}
		out = append(out, storage.BodyInfo{Name: name, Kind: body.KindVessel, Stages: stages})
	}
	return out
}

// SortedTimesteps returns the saved timestep indices in order.
func (s *System) SortedTimesteps() []int {
	keys := make([]int, 0, len(s.Timesteps))
	for k := range s.Timesteps {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
