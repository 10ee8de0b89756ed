package main

import (
	"fmt"
	"os"

	"github.com/san-kum/xpbd2d/internal/config"
	"github.com/san-kum/xpbd2d/internal/world"
	"github.com/spf13/cobra"
)

var (
	dataDir string

	dt                float64
	duration          float64
	substeps          int
	gravity           float64
	damping           float64
	springStiffness   float64
	pipeline          string
	contactCompliance float64
	collisions        bool
	recordEvery       int

	configFile string
	preset     string
	sceneFile  string

	bodyIndex int
	component string
	outFile   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "xpbd2d",
		Short:        "2d xpbd rigid body lab",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".xpbd2d", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene headless and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addStepFlags(runCmd)
	runCmd.Flags().IntVar(&recordEvery, "record-every", 1, "keep one pose frame every n steps")

	watchCmd := &cobra.Command{
		Use:   "watch [scene]",
		Short: "step a scene live in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchScene,
	}
	addStepFlags(watchCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [scene] [substeps...]",
		Short: "run one scene under several substep counts",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareSubsteps,
	}
	addStepFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "measure step throughput",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScene,
	}
	benchCmd.Flags().StringVar(&pipeline, "pipeline", "gjk", "narrow phase (gjk, sat)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy, residual and one body's pose",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&bodyIndex, "body", 0, "body index")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of one pose component",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bodyIndex, "body", 0, "body index")
	analyzeCmd.Flags().StringVar(&component, "component", "y", "pose component (x, y, theta)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list built-in scenes",
		RunE:  listScenes,
	}

	saveSceneCmd := &cobra.Command{
		Use:   "save-scene [scene] [file]",
		Short: "write a built-in scene as JSON",
		Args:  cobra.ExactArgs(2),
		RunE:  saveScene,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scene: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	probeCmd := &cobra.Command{
		Use:   "probe [shape_a] [shape_b]",
		Short: "run the narrow phase on two shapes",
		Long: `Shapes are written kind:size@x,y[,theta], for example
  disc:0.5@0,0
  rect:1x0.5@0.8,0.1,0.3
  poly:0,0;1,0;0,1@0.2,0.2`,
		Args: cobra.ExactArgs(2),
		RunE: probeShapes,
	}

	rootCmd.AddCommand(runCmd, watchCmd, compareCmd, benchCmd, listCmd, plotCmd, analyzeCmd,
		exportCmd, scenesCmd, saveSceneCmd, presetsCmd, probeCmd)
	addToolCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addStepFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&dt, "dt", config.DefaultDt, "frame timestep")
	f.Float64Var(&duration, "time", config.DefaultDuration, "duration")
	f.IntVar(&substeps, "substeps", world.DefaultSubsteps, "substeps per frame")
	f.Float64Var(&gravity, "gravity", world.DefaultGravity, "gravity magnitude")
	f.Float64Var(&damping, "damping", world.DefaultDamping, "velocity damping")
	f.Float64Var(&springStiffness, "spring-stiffness", world.DefaultSpringStiffness, "spring joint stiffness")
	f.StringVar(&pipeline, "pipeline", config.DefaultPipeline, "narrow phase (gjk, sat)")
	f.Float64Var(&contactCompliance, "contact-compliance", 0, "compliance of collision constraints")
	f.BoolVar(&collisions, "collisions", false, "collide every body pair")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.StringVar(&sceneFile, "from", "", "load the world from a scene JSON file")
}
