package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c-bruce/rocketsim/internal/body"
)

const (
	DefaultDt           = 60.0
	DefaultEndTime      = 86400.0
	DefaultSaveInterval = 10
	DefaultScheme       = "euler"
)

var ErrInvalidScenario = errors.New("config: invalid scenario")

// Scenario describes a complete multi-body simulation.
type Scenario struct {
	Name            string            `yaml:"name"`
	Scheme          string            `yaml:"scheme"`
	Dt              float64           `yaml:"dt"`
	EndTime         float64           `yaml:"end_time"`
	SaveInterval    int               `yaml:"save_interval"`
	Epoch           string            `yaml:"epoch,omitempty"`
	CelestialBodies []CelestialConfig `yaml:"celestial_bodies"`
	Vessels         []VesselConfig    `yaml:"vessels,omitempty"`
}

// Kinematics is the initial state of a body. Vectors have three elements
// or are omitted. Position and velocity are relative to RelativeTo when set.
type Kinematics struct {
	Position    []float64 `yaml:"position,flow,omitempty"`
	Velocity    []float64 `yaml:"velocity,flow,omitempty"`
	Attitude    []float64 `yaml:"attitude,flow,omitempty"`
	AttitudeDot []float64 `yaml:"attitude_dot,flow,omitempty"`
	RelativeTo  string    `yaml:"relative_to,omitempty"`
}

type CelestialConfig struct {
	Name       string  `yaml:"name"`
	Mass       float64 `yaml:"mass"`
	Radius     float64 `yaml:"radius"`
	Parent     string  `yaml:"parent,omitempty"`
	Texture    string  `yaml:"texture,omitempty"`
	Ephemeris  string  `yaml:"ephemeris,omitempty"`
	Kinematics `yaml:",inline"`
}

type VesselConfig struct {
	Name       string          `yaml:"name"`
	Stages     []body.Stage    `yaml:"stages"`
	Throttle   float64         `yaml:"throttle"`
	Gimbal     []float64       `yaml:"gimbal,flow,omitempty"`
	Guidance   *GuidanceConfig `yaml:"guidance,omitempty"`
	Kinematics `yaml:",inline"`
}

// GuidanceConfig configures the attitude hold loop of a vessel.
type GuidanceConfig struct {
	Target []float64 `yaml:"target,flow"`
	Kp     float64   `yaml:"kp"`
	Ki     float64   `yaml:"ki"`
	Kd     float64   `yaml:"kd"`
	Limit  float64   `yaml:"limit,omitempty"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Name:         "scenario",
		Scheme:       DefaultScheme,
		Dt:           DefaultDt,
		EndTime:      DefaultEndTime,
		SaveInterval: DefaultSaveInterval,
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := DefaultScenario()
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return sc, sc.Validate()
}

func Save(path string, sc *Scenario) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, sc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes sc as YAML.
func Encode(w io.Writer, sc *Scenario) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sc); err != nil {
		return err
	}
	return enc.Close()
}

// EpochTime parses Epoch as RFC 3339. An empty epoch means now.
func (s *Scenario) EpochTime() (time.Time, error) {
	if s.Epoch == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: epoch: %v", ErrInvalidScenario, err)
	}
	return t.UTC(), nil
}

func (s *Scenario) Validate() error {
	var errs []error
	if s.Dt <= 0 {
		errs = append(errs, fmt.Errorf("dt must be positive, got %g", s.Dt))
	}
	if s.EndTime <= 0 {
		errs = append(errs, fmt.Errorf("end_time must be positive, got %g", s.EndTime))
	}
	if s.SaveInterval < 1 {
		errs = append(errs, fmt.Errorf("save_interval must be at least 1, got %d", s.SaveInterval))
	}
	if len(s.CelestialBodies)+len(s.Vessels) == 0 {
		errs = append(errs, errors.New("no bodies defined"))
	}
	if _, err := s.EpochTime(); err != nil {
		errs = append(errs, err)
	}

	names := make(map[string]bool)
	check := func(name string, k Kinematics) {
		if name == "" {
			errs = append(errs, errors.New("body without a name"))
		} else if names[name] {
			errs = append(errs, fmt.Errorf("duplicate body %q", name))
		}
		names[name] = true
		for field, v := range map[string][]float64{
			"position": k.Position, "velocity": k.Velocity,
			"attitude": k.Attitude, "attitude_dot": k.AttitudeDot,
		} {
			if len(v) != 0 && len(v) != 3 {
				errs = append(errs, fmt.Errorf("%s: %s needs 3 elements, got %d", name, field, len(v)))
			}
		}
	}

	for _, c := range s.CelestialBodies {
		check(c.Name, c.Kinematics)
		if c.Mass <= 0 || c.Radius <= 0 {
			errs = append(errs, fmt.Errorf("%s: mass and radius must be positive", c.Name))
		}
		switch c.Ephemeris {
		case "", "earth", "moon":
		default:
			errs = append(errs, fmt.Errorf("%s: unknown ephemeris %q", c.Name, c.Ephemeris))
		}
	}
	for _, v := range s.Vessels {
		check(v.Name, v.Kinematics)
		if len(v.Stages) == 0 {
			errs = append(errs, fmt.Errorf("%s: vessel needs at least one stage", v.Name))
		}
		for i, st := range v.Stages {
			if err := validateStage(st); err != nil {
				errs = append(errs, fmt.Errorf("%s: stage %d: %w", v.Name, i, err))
			}
		}
		if v.Guidance != nil && len(v.Guidance.Target) != 3 {
			errs = append(errs, fmt.Errorf("%s: guidance target needs 3 elements", v.Name))
		}
		if len(v.Gimbal) != 0 && len(v.Gimbal) != 2 {
			errs = append(errs, fmt.Errorf("%s: gimbal needs pitch and yaw", v.Name))
		}
	}

	all := func(k Kinematics) {
		if k.RelativeTo != "" && !names[k.RelativeTo] {
			errs = append(errs, fmt.Errorf("relative_to references unknown body %q", k.RelativeTo))
		}
	}
	for _, c := range s.CelestialBodies {
		all(c.Kinematics)
	}
	for _, v := range s.Vessels {
		all(v.Kinematics)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(errs...))
	}
	return nil
}

// validateStage checks that a stage keeps positive mass properties even
// after its propellant is spent.
func validateStage(st body.Stage) error {
	switch {
	case st.DryMass <= 0:
		return fmt.Errorf("dry_mass must be positive, got %g", st.DryMass)
	case st.Radius <= 0:
		return fmt.Errorf("radius must be positive, got %g", st.Radius)
	case st.Length < 0:
		return fmt.Errorf("length must not be negative, got %g", st.Length)
	case st.PropellantMass < 0:
		return fmt.Errorf("propellant_mass must not be negative, got %g", st.PropellantMass)
	case st.Thrust < 0:
		return fmt.Errorf("thrust must not be negative, got %g", st.Thrust)
	case st.Thrust > 0 && st.Isp <= 0:
		return fmt.Errorf("isp must be positive for a stage with thrust, got %g", st.Isp)
	}
	return nil
}
