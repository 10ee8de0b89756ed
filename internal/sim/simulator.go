package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/xpbd2d/internal/world"
)

var ErrDiverged = errors.New("sim: state diverged (NaN or Inf)")

type Simulator struct {
	metrics   []Metric
	observers []Observer
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run steps w in place for the configured duration, recording energy,
// residual and pose frames. A failed step stops the run and is returned
// both as the error and in Result.Errors.
func (s *Simulator) Run(ctx context.Context, w *world.World, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	every := max(cfg.RecordEvery, 1)
	result := &Result{
		Times:    make([]float64, 0, steps+1),
		Energy:   make([]float64, 0, steps+1),
		Residual: make([]float64, 0, steps+1),
		Frames:   make([]Frame, 0, steps/every+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	record := func(i int) {
		e, r := w.TotalEnergy(cfg.Params), w.ConstraintResidualNorm()
		result.Times = append(result.Times, t)
		result.Energy = append(result.Energy, e)
		result.Residual = append(result.Residual, r)
		if i%every == 0 {
			result.Frames = append(result.Frames, Frame{Time: t, Energy: e, Residual: r, State: Snapshot(w)})
		}
	}
	record(0)
	initialEnergy := result.Energy[0]

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := w.Step(cfg.Dt, cfg.Params); err != nil {
			runErr = SimError{Time: t, Step: i, Message: "step failed", Wrapped: err}
			result.Errors = append(result.Errors, runErr)
			break
		}
		t += cfg.Dt
		result.StepsTaken++

		if cfg.ValidateState && !w.IsFinite() {
			runErr = SimError{Time: t, Step: i, Message: "invalid state", Wrapped: ErrDiverged}
			result.Errors = append(result.Errors, runErr)
			break
		}

		for _, m := range s.metrics {
			m.Observe(w, cfg.Params, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(w, t)
		}
		record(i + 1)
	}

	result.Final = Snapshot(w)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(result.FinalEnergy()-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, runErr
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return cfg.Params.Validate()
}

// RunWithCallback steps w until the duration elapses or callback returns
// false. The state handed to callback is only valid during the call.
func (s *Simulator) RunWithCallback(ctx context.Context, w *world.World, cfg Config, callback func(State, float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	pool := NewStatePool(PoseDim * len(w.Bodies))
	t := 0.0
	for i := 0; i < cfg.Steps(); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		x := pool.Get()
		snapshotInto(w, x)
		cont := callback(x, t)
		pool.Put(x)
		if !cont {
			return nil
		}

		if err := w.Step(cfg.Dt, cfg.Params); err != nil {
			return err
		}
		t += cfg.Dt

		if cfg.ValidateState && !w.IsFinite() {
			return fmt.Errorf("%w at t=%.4f", ErrDiverged, t)
		}
	}

	return nil
}
