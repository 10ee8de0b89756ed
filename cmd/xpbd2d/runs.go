package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/xpbd2d/internal/analysis"
	"github.com/san-kum/xpbd2d/internal/config"
	"github.com/san-kum/xpbd2d/internal/scene"
	"github.com/san-kum/xpbd2d/internal/sim"
	"github.com/san-kum/xpbd2d/internal/storage"
	"github.com/spf13/cobra"
)

var componentNames = []string{"x", "y", "theta"}

func parseComponent(s string) (int, error) {
	for i, name := range componentNames {
		if s == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown component: %q (want x, y or theta)", s)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tDT\tSUBSTEPS\tPIPELINE\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%s\t%.4f\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Substeps,
			run.Pipeline,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if bodyIndex < 0 || bodyIndex >= meta.Bodies {
		return fmt.Errorf("body %d out of range (run has %d)", bodyIndex, meta.Bodies)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(frames))

	energy := make([]float64, len(frames))
	residual := make([]float64, len(frames))
	for i, f := range frames {
		energy[i] = f.Energy
		residual[i] = f.Residual
	}

	plots := []struct {
		data    []float64
		caption string
	}{
		{energy, "total energy"},
		{residual, "constraint residual"},
		{analysis.Series(frames, bodyIndex, 1), fmt.Sprintf("body %d y", bodyIndex)},
		{analysis.Series(frames, bodyIndex, 2), fmt.Sprintf("body %d theta", bodyIndex)},
	}
	for _, p := range plots {
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	fmt.Printf("body %d path:\n", bodyIndex)
	fmt.Print(analysis.TrajectoryToASCII(analysis.ExtractTrajectory(frames, bodyIndex), 60, 20))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	comp, err := parseComponent(component)
	if err != nil {
		return err
	}
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(frames) < 2 {
		return fmt.Errorf("need at least two frames")
	}

	data := analysis.Series(frames, bodyIndex, comp)
	if len(data) < 2 {
		return fmt.Errorf("body %d out of range (run has %d)", bodyIndex, meta.Bodies)
	}
	spacing := frames[1].Time - frames[0].Time

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s, body %d %s\n\n", meta.Scene, bodyIndex, component)

	s := analysis.Summarize(data)
	fmt.Printf("min %.4f  max %.4f  mean %.4f  std %.4f\n\n", s.Min, s.Max, s.Mean, s.Std)

	ps := analysis.PowerSpectrum(data)
	if len(ps) >= 4 {
		graph := asciigraph.Plot(ps[:len(ps)/2],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", component)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	freq := analysis.DominantFrequency(data, spacing)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outFile == "" {
		return st.Export(os.Stdout, args[0])
	}
	if err := st.ExportFile(outFile, args[0]); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], outFile)
	return nil
}

func listScenes(cmd *cobra.Command, args []string) error {
	registry := scene.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENE\tPRESETS\tDESCRIPTION")
	for _, name := range registry.List() {
		fmt.Fprintf(w, "%s\t%v\t%s\n", name, config.ListPresets(name), registry.Describe(name))
	}
	return w.Flush()
}

func saveScene(cmd *cobra.Command, args []string) error {
	w, err := scene.NewRegistry().Build(args[0])
	if err != nil {
		return err
	}
	if err := scene.Save(args[1], w); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bodies, %d constraints, %d forces) to %s\n",
		args[0], len(w.Bodies), len(w.Constraints), len(w.Forces), args[1])
	return nil
}
