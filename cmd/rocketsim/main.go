package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/c-bruce/rocketsim/internal/config"
	"github.com/c-bruce/rocketsim/internal/logging"
	"github.com/c-bruce/rocketsim/internal/storage"
)

var (
	v        *viper.Viper
	settings config.Settings
	logger   log.Logger = logging.Nop()

	// run / example
	scenarioPreset string
	scheme         string
	dt             float64
	endTime        float64
	saveInterval   int
	workers        int

	// rigid / compare
	integrator string
	controller string
	mass       float64
	inertia    []float64
	force      []float64
	moment     []float64
	rate       []float64
	target     []float64
	kp, ki, kd float64
	attitude   []float64
	tolerance  float64

	// plot / export
	bodyName   string
	origin     string
	component  string
	pngPath    string
	seriesPath string
	plane      string
	outPath    string
	writePath  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v = config.NewViper()

	rootCmd := &cobra.Command{
		Use:           "rocketsim",
		Short:         "rigid-body orbital mechanics simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if settings, err = config.LoadSettings(v); err != nil {
				return fmt.Errorf("settings: %w", err)
			}
			logger, err = logging.New(os.Stderr, settings.LogFormat, settings.LogLevel)
			return err
		},
		// Without a subcommand, browse saved runs.
		RunE: func(cmd *cobra.Command, args []string) error {
			return viewRun(cmd, nil)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String("data", "runs", "data directory")
	pf.String("log-level", "info", "log level (debug, info, warn, error, none)")
	pf.String("log-format", "logfmt", "log format (logfmt, json)")
	_ = v.BindPFlag("data_dir", pf.Lookup("data"))
	_ = v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log_format", pf.Lookup("log-format"))

	runCmd := &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "simulate a scenario file or preset",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&scenarioPreset, "preset", "", "use a preset scenario")
	addSystemFlags(runCmd)

	exampleCmd := &cobra.Command{
		Use:   "example [name]",
		Short: "run a bundled example and plot it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExample,
	}
	addSystemFlags(exampleCmd)

	rigidCmd := &cobra.Command{
		Use:   "rigid",
		Short: "simulate a single rigid body under a constant or controlled load",
		RunE:  runRigid,
	}
	addRigidFlags(rigidCmd)
	addControlFlags(rigidCmd)
	rigidCmd.Flags().IntVar(&saveInterval, "save-interval", 1, "save every n steps")

	settleCmd := &cobra.Command{
		Use:   "settle",
		Short: "time how long an attitude controller takes to bring a body to rest",
		RunE:  settleRigid,
	}
	addRigidFlags(settleCmd)
	addControlFlags(settleCmd)
	settleCmd.Flags().Float64SliceVar(&attitude, "attitude", []float64{0.3, -0.2, 0.1}, "initial attitude (rad)")
	settleCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-3, "largest attitude error (rad) and rate (rad/s) counted as settled")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators against the closed-form solution",
		RunE:  compareIntegrators,
	}
	addRigidFlags(compareCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a body of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&bodyName, "body", "", "body to plot (default: every body but the origin)")
	plotCmd.Flags().StringVar(&origin, "origin", "", "plot positions relative to this body")
	plotCmd.Flags().StringVar(&component, "component", "distance", "series (x, y, z, distance, speed)")
	plotCmd.Flags().StringVar(&pngPath, "png", "", "also write a trajectory plot to this file")
	plotCmd.Flags().StringVar(&plane, "plane", "xy", "trajectory plane (xy, xz, yz)")
	plotCmd.Flags().StringVar(&seriesPath, "series-png", "", "also write the plotted series against time to this file")

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "replay a run in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  viewRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run timesteps to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}
	presetsCmd.Flags().StringVar(&writePath, "write", "", "write the preset to this file")

	rootCmd.AddCommand(runCmd, exampleCmd, rigidCmd, settleCmd, compareCmd, listCmd, plotCmd, viewCmd, exportCmd, exportCSVCmd, presetsCmd)
	return rootCmd
}

func addSystemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&scheme, "scheme", "", "update scheme (euler, symplectic)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep in seconds")
	cmd.Flags().Float64Var(&endTime, "end-time", 0, "simulated duration in seconds")
	cmd.Flags().IntVar(&saveInterval, "save-interval", 0, "save every n steps")
	cmd.Flags().IntVar(&workers, "workers", 0, "goroutines for force evaluation (default GOMAXPROCS)")
}

func addControlFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&integrator, "integrator", "euler", "integrator (euler, rk4, exact)")
	cmd.Flags().StringVar(&controller, "controller", "constant", "controller (none, constant, attitude, feedback)")
	cmd.Flags().Float64SliceVar(&target, "target", []float64{0, 0, 0}, "attitude target (rad)")
	cmd.Flags().Float64Var(&kp, "kp", 10, "attitude kp")
	cmd.Flags().Float64Var(&ki, "ki", 0, "attitude ki")
	cmd.Flags().Float64Var(&kd, "kd", 5, "attitude kd")
}

func addRigidFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&mass, "mass", 1000, "mass (kg)")
	cmd.Flags().Float64SliceVar(&inertia, "inertia", []float64{100, 200, 300}, "principal moments of inertia Ix,Iy,Iz")
	cmd.Flags().Float64SliceVar(&force, "force", []float64{10, 0, 0}, "constant force Fx,Fy,Fz (N)")
	cmd.Flags().Float64SliceVar(&moment, "moment", []float64{0, 0, 1}, "constant moment Mx,My,Mz (N m)")
	cmd.Flags().Float64SliceVar(&rate, "rate", []float64{0, 0, 0}, "initial angular rate (rad/s)")
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	cmd.Flags().Float64Var(&endTime, "time", 10, "duration")
}

func openStore() (*storage.Store, error) {
	st := storage.New(settings.DataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func vec3(name string, v []float64) ([3]float64, error) {
	if len(v) != 3 {
		return [3]float64{}, fmt.Errorf("--%s needs 3 values, got %d", name, len(v))
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}
