package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/c-bruce/rocketsim/internal/config"
	"github.com/c-bruce/rocketsim/internal/control"
	"github.com/c-bruce/rocketsim/internal/integrators"
	"github.com/c-bruce/rocketsim/internal/logging"
	"github.com/c-bruce/rocketsim/internal/metrics"
	"github.com/c-bruce/rocketsim/internal/rigid"
	"github.com/c-bruce/rocketsim/internal/sim"
	"github.com/c-bruce/rocketsim/internal/storage"
	"github.com/c-bruce/rocketsim/internal/system"
	"github.com/c-bruce/rocketsim/internal/viz"
)

// loadScenario resolves the scenario from a file argument or --preset and
// applies the flags that were set explicitly.
func loadScenario(cmd *cobra.Command, args []string) (*config.Scenario, error) {
	var sc *config.Scenario
	switch {
	case len(args) == 1 && scenarioPreset != "":
		return nil, fmt.Errorf("give a scenario file or --preset, not both")
	case len(args) == 1:
		var err error
		if sc, err = config.Load(args[0]); err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
	case scenarioPreset != "":
		if sc = config.GetPreset(scenarioPreset); sc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", scenarioPreset, config.ListPresets())
		}
	default:
		return nil, fmt.Errorf("a scenario file or --preset is required")
	}

	if cmd.Flags().Changed("scheme") {
		sc.Scheme = scheme
	}
	if cmd.Flags().Changed("dt") {
		sc.Dt = dt
	}
	if cmd.Flags().Changed("end-time") {
		sc.EndTime = endTime
	}
	if cmd.Flags().Changed("save-interval") {
		sc.SaveInterval = saveInterval
	}
	return sc, sc.Validate()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args)
	if err != nil {
		return err
	}
	_, err = simulate(sc)
	return err
}

func runExample(cmd *cobra.Command, args []string) error {
	name := "earth-moon"
	if len(args) == 1 {
		name = args[0]
	}
	scenarioPreset = name
	sc, err := loadScenario(cmd, nil)
	if err != nil {
		return err
	}

	s, err := simulate(sc)
	if err != nil {
		return err
	}

	keys := s.SortedTimesteps()
	frames := make([]viz.Frame, 0, len(keys))
	for _, k := range keys {
		frames = append(frames, timestepFrame(k, s.Timesteps[k], s.Bodies))
	}
	ref := ""
	if names := viz.Names(frames); len(names) > 1 {
		ref = names[0]
	}
	for _, name := range viz.Names(frames) {
		if name == ref {
			continue
		}
		_, pos := viz.Relative(frames, name, ref)
		fmt.Println()
		fmt.Println(viz.Chart(fmt.Sprintf("%s distance from %s (km)", name, ref), 10, 80, scale(viz.Distances(pos), 1e-3)))
	}
	return nil
}

func timestepFrame(index int, ts *system.Timestep, info []storage.BodyInfo) viz.Frame {
	return viz.Frames(ts.Records(index), info)[0]
}

func simulate(sc *config.Scenario) (*system.System, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}

	opts := []system.Option{system.WithStore(st), system.WithLogger(logger)}
	if workers > 0 {
		opts = append(opts, system.WithWorkers(workers))
	}
	s, err := system.FromScenario(sc, opts...)
	if err != nil {
		return nil, err
	}

	ctx, stop := signalContext()
	defer stop()

	fmt.Printf("running %s: %d steps of %gs, saving every %d\n", sc.Name, s.Steps(), sc.Dt, sc.SaveInterval)
	summary, err := s.Simulate(ctx)
	if summary != nil {
		fmt.Printf("run id: %s\n", summary.RunID)
		fmt.Printf("steps: %d  saved: %d  elapsed: %v\n", summary.Steps, summary.Saved, summary.Elapsed.Round(time.Millisecond))
		fmt.Printf("energy drift: %.3e\n", summary.EnergyDrift)
		fmt.Printf("momentum change: %.3e kg m/s\n", summary.Momentum[1].Sub(summary.Momentum[0]).Len())
	}
	return s, err
}

func rigidSetup() (rigid.MassProperties, sim.State, sim.Control, error) {
	in, err := vec3("inertia", inertia)
	if err != nil {
		return rigid.MassProperties{}, nil, nil, err
	}
	f, err := vec3("force", force)
	if err != nil {
		return rigid.MassProperties{}, nil, nil, err
	}
	m, err := vec3("moment", moment)
	if err != nil {
		return rigid.MassProperties{}, nil, nil, err
	}
	w, err := vec3("rate", rate)
	if err != nil {
		return rigid.MassProperties{}, nil, nil, err
	}

	mp := rigid.MassProperties{Mass: mass, Ix: in[0], Iy: in[1], Iz: in[2]}
	if err := mp.Validate(); err != nil {
		return mp, nil, nil, err
	}
	x0 := make(sim.State, rigid.StateDim)
	copy(x0[rigid.PhiDot:], w[:])
	u := sim.Control{f[0], f[1], f[2], m[0], m[1], m[2]}
	return mp, x0, u, nil
}

func rigidController(mp rigid.MassProperties, u sim.Control) (sim.Controller, error) {
	switch controller {
	case "none":
		return control.NewNone(rigid.ControlDim), nil
	case "constant":
		return control.NewConstant(u), nil
	case "attitude", "feedback":
		tgt, err := vec3("target", target)
		if err != nil {
			return nil, err
		}
		if controller == "attitude" {
			return control.NewAttitudeHold(tgt, kp, ki, kd), nil
		}
		return control.NewAttitudeFeedback(mp, tgt, kp, kd), nil
	}
	return nil, fmt.Errorf("unknown controller: %s", controller)
}

func runRigid(cmd *cobra.Command, args []string) error {
	mp, x0, u, err := rigidSetup()
	if err != nil {
		return err
	}
	model, err := rigid.NewModel(mp)
	if err != nil {
		return err
	}
	integ, err := integrators.New(integrator)
	if err != nil {
		return err
	}
	ctrl, err := rigidController(mp, u)
	if err != nil {
		return err
	}

	simulator := sim.New(model, integ, ctrl)
	simulator.AddMetric(metrics.NewControlEffort())
	simulator.AddMetric(metrics.NewImpulse())
	simulator.AddMetric(metrics.NewEnergy(mp))
	simulator.AddMetric(metrics.NewEnergyDrift(metrics.KineticEnergy{Props: mp}))
	simulator.AddMetric(metrics.NewStability(0.01))

	ctx, stop := signalContext()
	defer stop()

	log := logging.Subsystem(logger, "rigid")
	level.Info(log).Log("msg", "simulating", "integrator", integrator, "controller", controller, "dt", dt, "time", endTime)

	cfg := sim.Config{Dt: dt, Duration: endTime, ValidateState: true}
	simulator.AddObserver(logging.NewProgress(log, cfg.Steps()/10))
	result, err := simulator.Run(ctx, x0, cfg)
	if err != nil && result == nil {
		return err
	}

	st, serr := openStore()
	if serr != nil {
		return serr
	}
	meta := &storage.RunMetadata{
		Name:         "rigid",
		Dt:           dt,
		EndTime:      endTime,
		SaveInterval: max(1, saveInterval),
		Scheme:       integrator,
		Controller:   controller,
	}
	runID, serr := st.SaveResult(meta, "body", mp, result)
	if serr != nil {
		return serr
	}

	final := result.Final()
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("position: %v\n", rigid.Position(final))
	fmt.Printf("attitude: %v\n", rigid.Attitude(final))
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return err
}

// settleTime runs the controlled body until every attitude error and
// angular rate is within tol of rest at tgt. It reports false when the
// body has not settled by the end time.
func settleTime(ctx context.Context, simulator *sim.Simulator, x0 sim.State, cfg sim.Config, tgt [3]float64, tol float64) (float64, bool, error) {
	settled := -1.0
	err := simulator.RunWithCallback(ctx, x0, cfg, func(x sim.State, _ sim.Control, t float64) bool {
		att, w := rigid.Attitude(x), rigid.AngularRate(x)
		for i := 0; i < 3; i++ {
			if math.Abs(att[i]-tgt[i]) > tol || math.Abs(w[i]) > tol {
				return true
			}
		}
		settled = t
		return false
	})
	return settled, settled >= 0, err
}

func settleRigid(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("controller") {
		controller = "feedback"
	}
	mp, x0, u, err := rigidSetup()
	if err != nil {
		return err
	}
	att, err := vec3("attitude", attitude)
	if err != nil {
		return err
	}
	copy(x0[rigid.Phi:], att[:])
	tgt, err := vec3("target", target)
	if err != nil {
		return err
	}

	model, err := rigid.NewModel(mp)
	if err != nil {
		return err
	}
	integ, err := integrators.New(integrator)
	if err != nil {
		return err
	}
	ctrl, err := rigidController(mp, u)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	cfg := sim.Config{Dt: dt, Duration: endTime, ValidateState: true}
	t, ok, err := settleTime(ctx, sim.New(model, integ, ctrl), x0, cfg, tgt, tolerance)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Printf("%s controller did not settle within %gs (tolerance %g)\n", controller, endTime, tolerance)
		return nil
	}
	fmt.Printf("%s controller settled after %.2fs (tolerance %g)\n", controller, t, tolerance)
	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	mp, x0, u, err := rigidSetup()
	if err != nil {
		return err
	}
	model, err := rigid.NewModel(mp)
	if err != nil {
		return err
	}
	cfg := sim.Config{Dt: dt, Duration: endTime, ValidateState: true}
	ctx, stop := signalContext()
	defer stop()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tSTEPS\tPOSITION ERR\tATTITUDE ERR\tMAX STATE ERR")
	for _, name := range names {
		integ, err := integrators.New(name)
		if err != nil {
			return err
		}
		result, err := sim.New(model, integ, control.NewConstant(u)).Run(ctx, x0, cfg)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		final := result.Final()
		exact, err := rigid.Propagate(mp, x0, u, result.Times[len(result.Times)-1])
		if err != nil {
			return err
		}

		diff := make([]float64, len(final))
		floats.SubTo(diff, final, exact)
		fmt.Fprintf(w, "%s\t%d\t%.3e\t%.3e\t%.3e\n",
			name,
			result.StepsTaken,
			floats.Norm(diff[rigid.X:rigid.X+3], 2),
			floats.Norm(diff[rigid.Phi:rigid.Phi+3], 2),
			floats.Norm(diff, math.Inf(1)),
		)
	}
	return w.Flush()
}

func scale(xs []float64, k float64) []float64 {
	out := make([]float64, len(xs))
	floats.ScaleTo(out, k, xs)
	return out
}
