package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/c-bruce/rocketsim/internal/config"
	"github.com/c-bruce/rocketsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tEND TIME\tDT\tSCHEME\tBODIES\tSAVED\tDONE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%gs\t%s\t%d\t%d\t%v\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			viz.FormatElapsed(run.EndTime),
			run.Dt,
			run.Scheme,
			len(run.Bodies),
			run.Saved,
			run.Complete,
		)
	}
	return w.Flush()
}

func loadFrames(runID string) ([]viz.Frame, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	records, err := st.LoadRecords(runID)
	if err != nil {
		return nil, err
	}
	return viz.Frames(records, meta.Bodies), nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	frames, err := loadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to plot")
	}

	names := []string{bodyName}
	if bodyName == "" {
		names = names[:0]
		for _, n := range viz.Names(frames) {
			if n != origin {
				names = append(names, n)
			}
		}
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("timesteps: %d\n\n", len(frames))

	var (
		seriesTimes []float64
		series      = make(map[string][]float64, len(names))
		unit        string
	)
	for _, name := range names {
		times, pos := viz.Relative(frames, name, origin)
		if len(times) == 0 {
			return fmt.Errorf("body %q not found in run", name)
		}

		var data []float64
		caption := name + " " + component
		switch component {
		case "x", "y", "z":
			x, y, z := viz.Components(pos)
			data = map[string][]float64{"x": x, "y": y, "z": z}[component]
			unit = "(m)"
		case "distance":
			data = viz.Distances(pos)
			unit = "(m)"
		case "speed":
			for _, f := range frames {
				if b, ok := f.Find(name); ok {
					data = append(data, b.Velocity.Len())
				}
			}
			unit = "(m/s)"
		default:
			return fmt.Errorf("unknown component %q (x, y, z, distance, speed)", component)
		}
		caption += " " + unit
		if origin != "" {
			caption += " relative to " + origin
		}

		if seriesTimes == nil {
			seriesTimes = times
		}
		series[name] = data

		fmt.Println(viz.Chart(caption, 10, 80, data))
		fmt.Printf("t = %s .. %s\n\n", viz.FormatElapsed(times[0]), viz.FormatElapsed(times[len(times)-1]))
	}

	if seriesPath != "" {
		if err := viz.SaveSeriesPNG(seriesPath, runID, component+" "+unit, seriesTimes, series, names); err != nil {
			return err
		}
		fmt.Printf("%s plot written to %s\n", component, seriesPath)
	}
	if pngPath != "" {
		if err := viz.SavePNG(pngPath, runID, frames, origin, plane); err != nil {
			return err
		}
		fmt.Printf("trajectory plot written to %s\n", pngPath)
	}
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		frames, err := loadFrames(args[0])
		if err != nil {
			return err
		}
		return viz.RunReplay(args[0], frames)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}
	return viz.RunBrowser(runs, loadFrames)
}

func output() (io.WriteCloser, error) {
	if outPath == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outPath)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	if err := st.ExportJSON(args[0], w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	if err := st.ExportCSV(args[0], w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("presets:")
		for _, name := range config.ListPresets() {
			sc := config.GetPreset(name)
			fmt.Printf("  %-12s %d bodies, %s\n", name, len(sc.CelestialBodies)+len(sc.Vessels), viz.FormatElapsed(sc.EndTime))
		}
		return nil
	}

	sc := config.GetPreset(args[0])
	if sc == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
	}
	if writePath != "" {
		if err := config.Save(writePath, sc); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", writePath)
		return nil
	}
	return config.Encode(os.Stdout, sc)
}
