package viz

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/c-bruce/rocketsim/internal/body"
	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/storage"
)

// BodyFrame is one body at one saved time.
type BodyFrame struct {
	Name     string
	Kind     body.Kind
	Radius   float64
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Attitude mgl64.Vec3
}

// Frame holds every body of one saved timestep, in a stable order.
type Frame struct {
	Index  int
	Time   float64
	Bodies []BodyFrame
}

// Find returns the named body or false.
func (f Frame) Find(name string) (BodyFrame, bool) {
	for _, b := range f.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return BodyFrame{}, false
}

// Frames groups records by timestep index. Radii come from info.
func Frames(records []storage.Record, info []storage.BodyInfo) []Frame {
	radius := make(map[string]float64, len(info))
	for _, b := range info {
		radius[b.Name] = b.Radius
	}

	byIndex := make(map[int]*Frame)
	for _, r := range records {
		f, ok := byIndex[r.Index]
		if !ok {
			f = &Frame{Index: r.Index, Time: r.Time}
			byIndex[r.Index] = f
		}
		f.Bodies = append(f.Bodies, BodyFrame{
			Name:     r.Body,
			Kind:     r.Kind,
			Radius:   radius[r.Body],
			Position: rigid.Position(r.State),
			Velocity: rigid.Velocity(r.State),
			Attitude: rigid.Attitude(r.State),
		})
	}

	frames := make([]Frame, 0, len(byIndex))
	for _, f := range byIndex {
		sort.Slice(f.Bodies, func(i, j int) bool { return f.Bodies[i].Name < f.Bodies[j].Name })
		frames = append(frames, *f)
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].Index < frames[j].Index })
	return frames
}

// Names lists the bodies present in any frame.
func Names(frames []Frame) []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range frames {
		for _, b := range f.Bodies {
			if !seen[b.Name] {
				seen[b.Name] = true
				names = append(names, b.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Relative returns the position of name relative to origin in each frame.
// An empty origin means the inertial origin. Frames where either body is
// missing are skipped.
func Relative(frames []Frame, name, origin string) (times []float64, pos []mgl64.Vec3) {
	for _, f := range frames {
		b, ok := f.Find(name)
		if !ok {
			continue
		}
		p := b.Position
		if origin != "" {
			o, ok := f.Find(origin)
			if !ok {
				continue
			}
			p = p.Sub(o.Position)
		}
		times = append(times, f.Time)
		pos = append(pos, p)
	}
	return times, pos
}
