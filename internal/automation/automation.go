package automation

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/xpbd2d/internal/config"
	"github.com/san-kum/xpbd2d/internal/scene"
	"github.com/san-kum/xpbd2d/internal/sim"
	"github.com/san-kum/xpbd2d/internal/storage"
	"github.com/san-kum/xpbd2d/internal/vec"
	"github.com/san-kum/xpbd2d/internal/world"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted batch of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Preset is applied first, then the inline
// Overrides; unset override fields keep the preset or default value.
type ScenarioStep struct {
	Scene     string    `yaml:"scene"`
	Preset    string    `yaml:"preset"`
	Overrides yaml.Node `yaml:"config"`
	SaveAs    string    `yaml:"save_as"`

	config *config.Config
}

// Runner carries what every scripted run shares. Store may be nil to skip
// saving; Progress may be nil to run quietly.
type Runner struct {
	Registry *scene.Registry
	Store    *storage.Store
	Metrics  func(dt float64) []sim.Metric
	Progress io.Writer
}

// StepResult pairs a finished run with where it was saved.
type StepResult struct {
	Label  string
	RunID  string
	Config *config.Config
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file and resolves every step's
// config.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	for i := range scenario.Steps {
		if _, err := scenario.Steps[i].Config(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &scenario, nil
}

// Config resolves the step's effective run config.
func (s *ScenarioStep) Config() (*config.Config, error) {
	if s.config != nil {
		return s.config, nil
	}
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Scene, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s for scene %s", s.Preset, s.Scene)
		}
	}
	if !s.Overrides.IsZero() {
		if err := s.Overrides.Decode(cfg); err != nil {
			return nil, err
		}
	}
	if s.Scene != "" {
		cfg.Scene = s.Scene
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s.config = cfg
	return cfg, nil
}

func (r *Runner) logf(format string, args ...any) {
	if r.Progress != nil {
		fmt.Fprintf(r.Progress, format, args...)
	}
}

func (r *Runner) build(cfg *config.Config) (*world.World, error) {
	w, err := r.Registry.Build(cfg.Scene)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *Runner) simulate(ctx context.Context, w *world.World, cfg *config.Config) (*sim.Result, error) {
	p, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	sc := sim.DefaultConfig()
	sc.Dt = cfg.Dt
	sc.Duration = cfg.Duration
	sc.Params = p

	s := sim.New()
	if r.Metrics != nil {
		for _, m := range r.Metrics(cfg.Dt) {
			s.AddMetric(m)
		}
	}
	return s.Run(ctx, w, sc)
}

// RunScenario executes every step in order and stops at the first failure.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		label := step.SaveAs
		if label == "" {
			label = cfg.Scene
		}
		r.logf("running step %d/%d: %s\n", i+1, len(scenario.Steps), label)

		w, err := r.build(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		result, err := r.simulate(ctx, w, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Label: label, Config: cfg, Result: result}
		if r.Store != nil {
			if sr.RunID, err = r.Store.Save(cfg, w, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig jitters every body's starting pose by up to Perturbation
// metres and AngleJitter radians per trial. A trial is stable when it runs to
// completion and the constraint residual stays below ResidualLimit.
type MonteCarloConfig struct {
	Config        *config.Config
	Perturbation  float64
	AngleJitter   float64
	NumTrials     int
	ResidualLimit float64
	Seed          int64
}

type MonteCarloResult struct {
	TrialID     int
	FinalEnergy float64
	MaxResidual float64
	Stable      bool
	Err         error
}

// Jitter moves each body by a uniform offset in [-dx, dx]² and turns it by
// up to ±dtheta, leaving it at rest.
func Jitter(w *world.World, rng *rand.Rand, dx, dtheta float64) {
	for i := range w.Bodies {
		b := &w.Bodies[i]
		b.Pos = b.Pos.Add(vec.New((rng.Float64()*2-1)*dx, (rng.Float64()*2-1)*dx))
		b.Theta += (rng.Float64()*2 - 1) * dtheta
		b.PrevPos, b.PrevTheta = b.Pos, b.Theta
		b.UpdateWorldVertices()
	}
}

// RunMonteCarlo executes NumTrials independently jittered runs.
func (r *Runner) RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	limit := cfg.ResidualLimit
	if limit <= 0 {
		limit = math.Inf(1)
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		w, err := r.build(cfg.Config)
		if err != nil {
			return nil, err
		}
		Jitter(w, rng, cfg.Perturbation, cfg.AngleJitter)

		result, runErr := r.simulate(ctx, w, cfg.Config)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return results, ctxErr
		}
		if result == nil {
			return results, runErr
		}

		mc := MonteCarloResult{
			TrialID:     trial,
			FinalEnergy: result.FinalEnergy(),
			MaxResidual: result.MaxResidual(),
			Err:         runErr,
		}
		mc.Stable = runErr == nil && w.IsFinite() && mc.MaxResidual < limit
		results = append(results, mc)

		if (trial+1)%10 == 0 {
			r.logf("monte carlo: %d/%d trials complete\n", trial+1, cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
