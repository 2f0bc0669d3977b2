package storage

import (
	"time"

	"github.com/c-bruce/rocketsim/internal/body"
	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/sim"
)

// SaveResult stores a single rigid-body run as a one-body timestep table.
// Every saveInterval-th state is kept, plus the final one.
func (s *Store) SaveResult(meta *RunMetadata, bodyName string, mp rigid.MassProperties, result *sim.Result) (string, error) {
	if meta.SaveInterval < 1 {
		meta.SaveInterval = 1
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Bodies = []BodyInfo{{Name: bodyName, Kind: body.KindRigid}}
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics

	w, err := s.Create(meta)
	if err != nil {
		return "", err
	}

	last := len(result.States) - 1
	saved := 0
	for i, x := range result.States {
		if i%meta.SaveInterval != 0 && i != last {
			continue
		}
		u := make(sim.Control, rigid.ControlDim)
		if i < len(result.Controls) {
			copy(u, result.Controls[i])
		}
		w.Write([]Record{{Index: saved, Time: result.Times[i], Body: bodyName, Kind: body.KindRigid, Mass: mp, State: x, U: u}})
		saved++
	}

	meta.Saved = saved
	meta.Complete = true
	return meta.ID, w.Close()
}
