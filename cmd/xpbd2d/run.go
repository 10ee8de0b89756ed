package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/xpbd2d/internal/config"
	"github.com/san-kum/xpbd2d/internal/metrics"
	"github.com/san-kum/xpbd2d/internal/scene"
	"github.com/san-kum/xpbd2d/internal/sim"
	"github.com/san-kum/xpbd2d/internal/storage"
	"github.com/san-kum/xpbd2d/internal/viz"
	"github.com/san-kum/xpbd2d/internal/world"
	"github.com/spf13/cobra"
)

// resolveConfig layers preset, config file and explicitly set flags, in that
// order. The scene argument, when given, names the scene.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.Scene = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.Scene, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Scene))
		}
		p.Scene = cfg.Scene
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if len(args) > 0 {
			loaded.Scene = args[0]
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if f.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if f.Changed("damping") {
		cfg.Damping = damping
	}
	if f.Changed("spring-stiffness") {
		cfg.SpringStiffness = springStiffness
	}
	if f.Changed("pipeline") {
		cfg.Pipeline = pipeline
	}
	if f.Changed("contact-compliance") {
		cfg.ContactCompliance = contactCompliance
	}
	if f.Changed("collisions") {
		cfg.Collisions = collisions
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildWorld loads the scene file when one was given, otherwise builds the
// named scene, then applies the contact settings.
func buildWorld(cfg *config.Config) (*world.World, error) {
	var (
		w   *world.World
		err error
	)
	if sceneFile != "" {
		w, err = scene.Load(sceneFile)
	} else {
		w, err = scene.NewRegistry().Build(cfg.Scene)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(w); err != nil {
		return nil, err
	}
	return w, nil
}

func simConfig(cfg *config.Config) (sim.Config, error) {
	p, err := cfg.Params()
	if err != nil {
		return sim.Config{}, err
	}
	sc := sim.DefaultConfig()
	sc.Dt = cfg.Dt
	sc.Duration = cfg.Duration
	sc.Params = p
	return sc, nil
}

func newMetrics(dt float64) []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergyDrift(),
		metrics.NewEnergyIncreases(1e-9),
		metrics.NewResidualMax(),
		metrics.NewPenetration(),
		metrics.NewConstraintForce(dt),
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	w, err := buildWorld(cfg)
	if err != nil {
		return err
	}
	sc, err := simConfig(cfg)
	if err != nil {
		return err
	}
	sc.RecordEvery = recordEvery

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s := sim.New()
	for _, m := range newMetrics(cfg.Dt) {
		s.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %d bodies, %d constraints, %d steps\n",
		cfg.Scene, len(w.Bodies), len(w.Constraints), cfg.Steps())
	start := time.Now()

	result, runErr := s.Run(ctx, w, sc)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, w, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("energy drift: %.6f\n", result.EnergyDrift)
	fmt.Printf("max residual: %.3e\n", result.MaxResidual())
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	if runErr != nil {
		return fmt.Errorf("run stopped early (partial result saved): %w", runErr)
	}
	return nil
}

func watchScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	w, err := buildWorld(cfg)
	if err != nil {
		return err
	}
	p, err := cfg.Params()
	if err != nil {
		return err
	}

	name := cfg.Scene
	if sceneFile != "" {
		name = sceneFile
	}
	prog := tea.NewProgram(viz.NewModel(name, w, p, cfg.Dt), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = prog.Run()
	return err
}

func compareSubsteps(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	counts := make([]int, 0, len(args)-1)
	for _, a := range args[1:] {
		n, err := strconv.Atoi(a)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid substep count: %q", a)
		}
		counts = append(counts, n)
	}

	w, err := buildWorld(cfg)
	if err != nil {
		return err
	}
	sc, err := simConfig(cfg)
	if err != nil {
		return err
	}
	sc.RecordEvery = cfg.Steps() + 1

	fmt.Printf("comparing substeps on %s (%.2fs at dt=%.4f)\n\n", cfg.Scene, cfg.Duration, cfg.Dt)

	start := time.Now()
	results, err := sim.NewSweep(w, counts, func() []sim.Metric { return newMetrics(cfg.Dt) }).
		Run(context.Background(), sc)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	// divergence is measured against the run with the most substeps
	ref := 0
	for i, n := range counts {
		if n > counts[ref] {
			ref = i
		}
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBSTEPS\tDRIFT\tRESIDUAL MAX\tPENETRATION\tENERGY UPS\tFINAL ENERGY\tDIVERGENCE")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%.6f\t%.3e\t%.4f\t%.0f\t%.4f\t%.4g\n",
			counts[i],
			r.EnergyDrift,
			r.Metrics["residual_max"],
			r.Metrics["penetration_max"],
			r.Metrics["energy_increases"],
			r.FinalEnergy(),
			r.Divergence(results[ref]),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nwall time: %v\n", elapsed)
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	name := args[0]
	registry := scene.NewRegistry()

	fmt.Printf("benchmarking %s (%s)\n\n", name, pipeline)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBSTEPS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range []int{1, 5, 10, 20, 50} {
		w, err := registry.Build(name)
		if err != nil {
			return err
		}
		cfg := config.DefaultConfig()
		cfg.Scene = name
		cfg.Substeps = n
		cfg.Duration = 2
		cfg.Pipeline = pipeline
		sc, err := simConfig(cfg)
		if err != nil {
			return err
		}
		sc.RecordEvery = cfg.Steps() + 1

		start := time.Now()
		result, err := sim.New().Run(context.Background(), w, sc)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(tw, "%d\t%d\t%v\t%.0f\n",
			n, result.StepsTaken, elapsed, float64(result.StepsTaken)/elapsed.Seconds())
	}

	return tw.Flush()
}
