package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/xpbd2d/internal/config"
	"github.com/san-kum/xpbd2d/internal/sim"
)

var ErrUnknownParam = errors.New("optim: unknown parameter")

// Evaluate scores one parameter combination; lower is better.
type Evaluate func(ctx context.Context, params map[string]float64) (float64, error)

// Trial is one evaluated grid point. Err is set when the evaluation failed
// and Value is then +Inf.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates the full cartesian product of the ranges in order. A
// failing evaluation is recorded and skipped; cancellation stops the search.
// best is nil when every evaluation failed.
func (g *GridSearch) Search(ctx context.Context, eval Evaluate) (best map[string]float64, bestValue float64, trials []Trial, err error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("optim: %d names for %d ranges", len(g.paramNames), len(g.ranges))
	}

	bestValue = math.Inf(1)
	err = g.searchRecursive(ctx, 0, make(map[string]float64), eval, func(t Trial) {
		trials = append(trials, t)
		if t.Err == nil && t.Value < bestValue {
			bestValue = t.Value
			best = t.Params
		}
	})
	return best, bestValue, trials, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Evaluate,
	record func(Trial),
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		val, err := eval(ctx, params)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			val = math.Inf(1)
		}
		record(Trial{Params: params, Value: val, Err: err})
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		if err := g.searchRecursive(ctx, depth+1, current, eval, record); err != nil {
			return err
		}
	}
	delete(current, name)
	return nil
}

// ApplyParams writes named grid values onto a config.
func ApplyParams(cfg *config.Config, params map[string]float64) error {
	for name, v := range params {
		switch name {
		case "substeps":
			cfg.Substeps = int(v)
		case "dt":
			cfg.Dt = v
		case "damping":
			cfg.Damping = v
		case "gravity":
			cfg.Gravity = v
		case "spring_stiffness":
			cfg.SpringStiffness = v
		case "contact_compliance":
			cfg.ContactCompliance = v
		default:
			return fmt.Errorf("%w: %s", ErrUnknownParam, name)
		}
	}
	return cfg.Validate()
}

// MetricScore turns a run into a score: the named metric, or the run's
// energy drift for "energy_drift". A run that stopped early fails.
func MetricScore(result *sim.Result, runErr error, metric string) (float64, error) {
	if runErr != nil {
		return 0, runErr
	}
	if metric == "energy_drift" {
		return result.EnergyDrift, nil
	}
	v, ok := result.Metrics[metric]
	if !ok {
		return 0, fmt.Errorf("optim: run has no metric %q", metric)
	}
	return v, nil
}
