package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/xpbd2d/internal/analysis"
	"github.com/san-kum/xpbd2d/internal/automation"
	"github.com/san-kum/xpbd2d/internal/export"
	"github.com/san-kum/xpbd2d/internal/optim"
	"github.com/san-kum/xpbd2d/internal/scene"
	"github.com/san-kum/xpbd2d/internal/sim"
	"github.com/san-kum/xpbd2d/internal/storage"
	"github.com/spf13/cobra"
)

var (
	svgWidth  int
	svgHeight int
	trails    bool

	tuneMetric string
	tuneGrid   []string

	trials        int
	perturbation  float64
	angleJitter   float64
	residualLimit float64
	seed          int64
)

func addToolCommands(root *cobra.Command) {
	svgCmd := &cobra.Command{
		Use:   "svg [run_id] [file]",
		Short: "render a run's final world and body paths as SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  renderSVG,
	}
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	svgCmd.Flags().BoolVar(&trails, "trails", true, "draw every body's path")

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid search step parameters for the lowest metric",
		Long: `Each --grid flag names one parameter and its values, for example
  --grid substeps=2,5,10 --grid contact_compliance=0,1e-5,1e-4

Parameters: substeps, dt, damping, gravity, spring_stiffness, contact_compliance.`,
		Args: cobra.MaximumNArgs(1),
		RunE: tuneScene,
	}
	addStepFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "residual_max", "metric to minimise")
	tuneCmd.Flags().StringArrayVar(&tuneGrid, "grid", nil, "name=v1,v2,... (repeatable)")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run and store every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	mcCmd := &cobra.Command{
		Use:   "montecarlo [scene]",
		Short: "count stable runs under random pose jitter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addStepFlags(mcCmd)
	mcCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	mcCmd.Flags().Float64Var(&perturbation, "jitter", 0.02, "position jitter in metres")
	mcCmd.Flags().Float64Var(&angleJitter, "angle-jitter", 0.05, "angle jitter in radians")
	mcCmd.Flags().Float64Var(&residualLimit, "residual-limit", 1.0, "largest residual a stable trial may reach")
	mcCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")

	root.AddCommand(svgCmd, tuneCmd, batchCmd, mcCmd)
}

func renderSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	w, err := st.LoadScene(args[0])
	if err != nil {
		return err
	}

	var paths [][]analysis.Point
	if trails {
		frames, err := st.LoadStates(args[0])
		if err != nil {
			return err
		}
		for i := range w.Bodies {
			paths = append(paths, analysis.ExtractTrajectory(frames, i))
		}
	}

	if err := export.WriteFile(args[1], export.WorldToSVG(w, paths, svgWidth, svgHeight)); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[1])
	return nil
}

func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, s := range specs {
		name, values, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, nil, fmt.Errorf("grid %q: want name=v1,v2", s)
		}
		vs, err := parseFloats(values, ",")
		if err != nil {
			return nil, nil, fmt.Errorf("grid %q: %w", s, err)
		}
		names = append(names, name)
		ranges = append(ranges, vs)
	}
	return names, ranges, nil
}

func tuneScene(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(tuneGrid)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no --grid given")
	}

	eval := func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := *base
		if err := optim.ApplyParams(&cfg, params); err != nil {
			return 0, err
		}
		w, err := buildWorld(&cfg)
		if err != nil {
			return 0, err
		}
		sc, err := simConfig(&cfg)
		if err != nil {
			return 0, err
		}
		sc.RecordEvery = cfg.Steps() + 1

		s := sim.New()
		for _, m := range newMetrics(cfg.Dt) {
			s.AddMetric(m)
		}
		result, runErr := s.Run(ctx, w, sc)
		return optim.MetricScore(result, runErr, tuneMetric)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("tuning %s for lowest %s\n\n", base.Scene, tuneMetric)
	best, bestValue, results, err := optim.NewGridSearch(names, ranges).Search(ctx, eval)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(tuneMetric))
	for _, r := range results {
		for _, n := range names {
			fmt.Fprintf(tw, "%g\t", r.Params[n])
		}
		if r.Err != nil {
			fmt.Fprintf(tw, "failed: %v\n", r.Err)
			continue
		}
		fmt.Fprintf(tw, "%.6g\n", r.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if best == nil {
		return fmt.Errorf("every grid point failed")
	}
	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, best[k])
	}
	fmt.Printf("\nbest: %s (%s %.6g)\n", strings.Join(parts, " "), tuneMetric, bestValue)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	r := &automation.Runner{
		Registry: scene.NewRegistry(),
		Store:    storage.New(dataDir),
		Metrics:  newMetrics,
		Progress: os.Stdout,
	}
	if scenario.Name != "" {
		fmt.Printf("scenario: %s\n", scenario.Name)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := r.RunScenario(ctx, scenario)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nLABEL\tRUN ID\tSTEPS\tDRIFT\tRESIDUAL MAX")
	for _, res := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.6f\t%.3e\n",
			res.Label, res.RunID, res.Result.StepsTaken, res.Result.EnergyDrift, res.Result.MaxResidual())
	}
	if flushErr := tw.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	if trials < 1 {
		return fmt.Errorf("trials must be at least 1")
	}

	r := &automation.Runner{Registry: scene.NewRegistry(), Progress: os.Stdout}
	mc := &automation.MonteCarloConfig{
		Config:        cfg,
		Perturbation:  perturbation,
		AngleJitter:   angleJitter,
		NumTrials:     trials,
		ResidualLimit: residualLimit,
		Seed:          seed,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("monte carlo on %s: %d trials, jitter %.3fm / %.3frad\n", cfg.Scene, trials, perturbation, angleJitter)
	results, err := r.RunMonteCarlo(ctx, mc)
	if err != nil {
		return err
	}

	residuals := make([]float64, len(results))
	for i, res := range results {
		residuals[i] = res.MaxResidual
	}
	stable, unstable := automation.MonteCarloStats(results)
	s := analysis.Summarize(residuals)

	fmt.Printf("\nstable: %d  unstable: %d\n", stable, unstable)
	fmt.Printf("max residual: min %.3e  mean %.3e  max %.3e\n", s.Min, s.Mean, s.Max)
	return nil
}
