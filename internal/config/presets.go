package config

import (
	"math"
	"sort"

	"github.com/c-bruce/rocketsim/internal/body"
	"github.com/c-bruce/rocketsim/internal/ephem"
)

const earthMu = 3.986004418e14

func earth() CelestialConfig {
	return CelestialConfig{
		Name:       "Earth",
		Mass:       ephem.EarthMass,
		Radius:     ephem.EarthRadius,
		Texture:    "resources/earth.jpg",
		Kinematics: Kinematics{AttitudeDot: []float64{0, 0, ephem.EarthSpin}},
	}
}

func falcon() []body.Stage {
	return []body.Stage{
		{Name: "first", DryMass: 22200, PropellantMass: 410900, Thrust: 7.6e6, Isp: 282, Length: 42, Radius: 1.83},
		{Name: "second", DryMass: 4000, PropellantMass: 107500, Thrust: 9.34e5, Isp: 348, Length: 14, Radius: 1.83},
	}
}

var presets = map[string]func() *Scenario{
	// Earth and Moon seeded from the lunar ephemeris, 27.3 days.
	"earth-moon": func() *Scenario {
		e := earth()
		e.Ephemeris = "earth"
		return &Scenario{
			Name: "EarthMoon", Scheme: "euler", Dt: 60, EndTime: 2358720, SaveInterval: 100,
			Epoch: "2019-01-27T00:00:00Z",
			CelestialBodies: []CelestialConfig{
				e,
				{Name: "Moon", Mass: ephem.MoonMass, Radius: ephem.MoonRadius, Parent: "Earth", Texture: "resources/moon.jpg", Ephemeris: "moon"},
			},
		}
	},
	// One coasting orbit at 400 km altitude.
	"leo": func() *Scenario {
		r := ephem.EarthRadius + 400e3
		v := math.Sqrt(earthMu / r)
		return &Scenario{
			Name: "LEO", Scheme: "symplectic", Dt: 1, EndTime: math.Round(2 * math.Pi * math.Sqrt(r*r*r/earthMu)), SaveInterval: 10,
			CelestialBodies: []CelestialConfig{earth()},
			Vessels: []VesselConfig{{
				Name:   "Capsule",
				Stages: []body.Stage{{Name: "capsule", DryMass: 9500, Length: 8, Radius: 2}},
				Kinematics: Kinematics{
					Position:   []float64{r, 0, 0},
					Velocity:   []float64{0, v, 0},
					RelativeTo: "Earth",
				},
			}},
		}
	},
	// Vertical ascent from the surface under full thrust with attitude hold.
	"launch": func() *Scenario {
		return &Scenario{
			Name: "Launch", Scheme: "euler", Dt: 0.1, EndTime: 150, SaveInterval: 10,
			CelestialBodies: []CelestialConfig{earth()},
			Vessels: []VesselConfig{{
				Name:     "Falcon",
				Stages:   falcon(),
				Throttle: 1,
				Guidance: &GuidanceConfig{Target: []float64{0, 0, 0}, Kp: 2e6, Kd: 8e6, Limit: 5e6},
				Kinematics: Kinematics{
					Position:   []float64{ephem.EarthRadius + 30, 0, 0},
					RelativeTo: "Earth",
				},
			}},
		}
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Scenario {
	mk, ok := presets[name]
	if !ok {
		return nil
	}
	return mk()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
