package integrators

import "testing"

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		integ, err := New(name)
		if err != nil || integ == nil {
			t.Errorf("New(%q) = %v, %v", name, integ, err)
		}
	}
	for _, name := range SchemeNames() {
		if s, err := Scheme(name); err != nil || s == nil {
			t.Errorf("Scheme(%q) failed: %v", name, err)
		}
	}

	if _, err := New("rk45"); err == nil {
		t.Error("expected error for unknown integrator")
	}
	if _, err := Scheme("leapfrog"); err == nil {
		t.Error("expected error for unknown scheme")
	}
}
