package system

import (
	"fmt"

	"github.com/go-kit/log/level"

	"github.com/c-bruce/rocketsim/internal/body"
	"github.com/c-bruce/rocketsim/internal/integrators"
	"github.com/c-bruce/rocketsim/internal/storage"
)

// Load rebuilds the saved timesteps of a run. The last saved timestep
// becomes the current one so that the run can be continued with the same
// scheme. Runs made by a standalone integrator continue with the scheme
// given in opts, euler by default.
func Load(st *storage.Store, runID string, opts ...Option) (*System, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	records, err := st.LoadRecords(runID)
	if err != nil {
		return nil, err
	}

	s := New(meta.Name, opts...)
	s.dt, s.endTime, s.saveInterval = meta.Dt, meta.EndTime, meta.SaveInterval
	s.epoch, s.runID, s.Bodies = meta.Epoch, meta.ID, meta.Bodies
	if meta.Scheme != "" {
		if scheme, err := integrators.Scheme(meta.Scheme); err == nil {
			s.schemeName, s.scheme = meta.Scheme, scheme
		} else {
			level.Warn(s.logger).Log("msg", "saved scheme cannot be resumed", "run", meta.ID, "scheme", meta.Scheme, "using", s.schemeName)
		}
	}

	info := make(map[string]storage.BodyInfo, len(meta.Bodies))
	for _, b := range meta.Bodies {
		info[b.Name] = b
	}

	for _, r := range records {
		ts, ok := s.Timesteps[r.Index]
		if !ok {
			ts = NewTimestep()
			ts.Time = r.Time
			if s.dt > 0 {
				ts.Step = int(r.Time/s.dt + 0.5)
			}
			s.Timesteps[r.Index] = ts
		}
		if err := addRecord(ts, r, info[r.Body]); err != nil {
			return nil, fmt.Errorf("run %s timestep %d: %w", meta.ID, r.Index, err)
		}
	}

	if keys := s.SortedTimesteps(); len(keys) > 0 {
		s.Current = s.Timesteps[keys[len(keys)-1]].Clone()
	}
	return s, nil
}

func addRecord(ts *Timestep, r storage.Record, info storage.BodyInfo) error {
	switch r.Kind {
	case body.KindVessel:
		n := r.Stages
		if n > len(info.Stages) {
			n = len(info.Stages)
		}
		stages := make([]*body.Stage, 0, n)
		for _, s := range info.Stages[len(info.Stages)-n:] {
			sc := s
			stages = append(stages, &sc)
		}
		if len(stages) > 0 {
			stages[0].PropellantMass = r.Propellant
		}
		v := body.NewVessel(r.Body, stages...)
		if err := v.SetState(r.State); err != nil {
			return err
		}
		if err := v.SetU(r.U); err != nil {
			return err
		}
		return ts.AddVessel(v)
	default:
		var c *body.CelestialBody
		if r.Kind == body.KindRigid {
			c = body.NewRigidBody(r.Body, r.Mass)
		} else {
			c = body.NewCelestialBody(r.Body, r.Mass.Mass, info.Radius, info.Parent)
			c.Texture = info.Texture
		}
		if err := c.SetState(r.State); err != nil {
			return err
		}
		if err := c.SetU(r.U); err != nil {
			return err
		}
		return ts.AddCelestialBody(c)
	}
}
