package sim

import (
	"context"
	"errors"
	"math"
	"testing"
)

type decay struct{}

func (d *decay) Derivative(x State, u Control, time float64) State {
	return State{-x[0] + u[0]}
}

func (d *decay) StateDim() int   { return 1 }
func (d *decay) ControlDim() int { return 1 }

type explicitEuler struct{}

func (e *explicitEuler) Step(dyn Dynamics, x State, u Control, time float64, dt float64) State {
	dx := dyn.Derivative(x, u, time)
	return State{x[0] + dt*dx[0]}
}

type zeroInput struct{}

func (z *zeroInput) Compute(x State, time float64) Control {
	return Control{0}
}

func TestSimulatorRun(t *testing.T) {
	sim := New(&decay{}, &explicitEuler{}, &zeroInput{})

	cfg := Config{
		Dt:       0.1,
		Duration: 1.0,
	}

	result, err := sim.Run(context.Background(), State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 {
		t.Errorf("expected 11 states, got %d", len(result.States))
	}

	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}

	if got := result.Times[10]; math.Abs(got-1.0) > 1e-12 {
		t.Errorf("expected final time 1.0, got %v", got)
	}

	finalState := result.Final()[0]
	expected := math.Pow(0.9, 10)
	if math.Abs(finalState-expected) > 1e-12 {
		t.Errorf("expected final state %.6f, got %.6f", expected, finalState)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&decay{}, &explicitEuler{}, &zeroInput{})

	tests := []struct {
		name string
		x0   State
		cfg  Config
		want error
	}{
		{"zero dt", State{1}, Config{Dt: 0, Duration: 1.0}, ErrInvalidConfig},
		{"negative dt", State{1}, Config{Dt: -0.1, Duration: 1.0}, ErrInvalidConfig},
		{"zero duration", State{1}, Config{Dt: 0.1, Duration: 0}, ErrInvalidConfig},
		{"negative duration", State{1}, Config{Dt: 0.1, Duration: -1.0}, ErrInvalidConfig},
		{"wrong state length", State{1, 2}, Config{Dt: 0.1, Duration: 1.0}, ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.x0, tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

type meanMetric struct {
	count int
	sum   float64
}

func (m *meanMetric) Name() string { return "mean" }
func (m *meanMetric) Observe(x State, u Control, time float64) {
	m.count++
	m.sum += x[0]
}
func (m *meanMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *meanMetric) Reset() {
	m.count = 0
	m.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(&decay{}, &explicitEuler{}, &zeroInput{})

	metric := &meanMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["mean"]; !ok {
		t.Error("metric not found in result")
	}

	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
}

func TestSimulatorNilControllerUsesZeroInput(t *testing.T) {
	sim := New(&decay{}, &explicitEuler{}, nil)

	result, err := sim.Run(context.Background(), State{2.0}, Config{Dt: 0.5, Duration: 0.5})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := result.Final()[0]; got != 1.0 {
		t.Errorf("expected 1.0, got %v", got)
	}
}

type blowUp struct{}

func (b *blowUp) Step(dyn Dynamics, x State, u Control, time float64, dt float64) State {
	return State{math.Inf(1)}
}

func TestSimulatorStopsOnInvalidState(t *testing.T) {
	sim := New(&decay{}, &blowUp{}, &zeroInput{})

	cfg := Config{Dt: 0.1, Duration: 1.0, ValidateState: true}
	result, err := sim.Run(context.Background(), State{1.0}, cfg)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	var simErr SimError
	if !errors.As(err, &simErr) || simErr.Step != 0 {
		t.Errorf("expected SimError at step 0, got %v", err)
	}
	if result.StepsTaken != 0 {
		t.Errorf("expected no steps taken, got %d", result.StepsTaken)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := New(&decay{}, &explicitEuler{}, &zeroInput{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Run(ctx, State{1.0}, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type recorder struct {
	times []float64
}

func (r *recorder) OnStep(x State, u Control, time float64) { r.times = append(r.times, time) }

func TestRunNotifiesObservers(t *testing.T) {
	sim := New(&decay{}, &explicitEuler{}, &zeroInput{})
	rec := &recorder{}
	sim.AddObserver(rec)

	if _, err := sim.Run(context.Background(), State{1.0}, Config{Dt: 0.25, Duration: 1.0}); err != nil {
		t.Fatal(err)
	}
	if len(rec.times) != 4 || rec.times[0] != 0 || rec.times[3] != 0.75 {
		t.Errorf("observer saw times %v, want 0 .. 0.75", rec.times)
	}
}

func TestRunWithCallbackStopsEarly(t *testing.T) {
	sim := New(&decay{}, &explicitEuler{}, &zeroInput{})

	calls := 0
	err := sim.RunWithCallback(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 1.0}, func(x State, u Control, time float64) bool {
		calls++
		return calls < 3
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 callbacks, got %d", calls)
	}
}
