package integrators

import (
	"fmt"
	"sort"

	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/sim"
)

var integrators = map[string]func() sim.Integrator{
	"euler": func() sim.Integrator { return NewEuler() },
	"rk4":   func() sim.Integrator { return NewRK4() },
	"exact": func() sim.Integrator { return rigid.NewExact() },
}

var schemes = map[string]sim.Scheme{
	"euler":      EulerScheme,
	"symplectic": rigid.SemiImplicitEuler,
}

// New returns a fresh integrator by name.
func New(name string) (sim.Integrator, error) {
	mk, ok := integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator %q (available: %v)", name, Names())
	}
	return mk(), nil
}

// Scheme returns an update scheme by name.
func Scheme(name string) (sim.Scheme, error) {
	s, ok := schemes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scheme %q (available: %v)", name, SchemeNames())
	}
	return s, nil
}

func Names() []string {
	names := make([]string, 0, len(integrators))
	for n := range integrators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func SchemeNames() []string {
	names := make([]string, 0, len(schemes))
	for n := range schemes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
