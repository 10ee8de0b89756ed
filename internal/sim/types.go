package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/xpbd2d/internal/world"
)

// State is a flat pose vector, three entries per body: x, y, θ.
type State []float64

const PoseDim = 3

// Snapshot reads the poses of every body in w.
func Snapshot(w *world.World) State {
	s := make(State, PoseDim*len(w.Bodies))
	snapshotInto(w, s)
	return s
}

func snapshotInto(w *world.World, s State) {
	for i := range w.Bodies {
		b := &w.Bodies[i]
		s[PoseDim*i] = b.Pos.X()
		s[PoseDim*i+1] = b.Pos.Y()
		s[PoseDim*i+2] = b.Theta
	}
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Bodies is the number of poses in s.
func (s State) Bodies() int { return len(s) / PoseDim }

// Pose returns the x, y and θ of body i.
func (s State) Pose(i int) (x, y, theta float64) {
	return s[PoseDim*i], s[PoseDim*i+1], s[PoseDim*i+2]
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Sub(o State) State {
	r := make(State, len(s))
	for i := range s {
		r[i] = s[i] - o[i]
	}
	return r
}

func (s State) Norm() float64 {
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Metric accumulates a figure of merit over a run. Observe is called after
// every completed step.
type Metric interface {
	Name() string
	Observe(w *world.World, p world.Params, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(w *world.World, t float64)
}

type Config struct {
	Dt       float64
	Duration float64
	Params   world.Params
	// RecordEvery keeps one pose frame out of every RecordEvery steps.
	// Energy and residual are recorded on every step regardless.
	RecordEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            world.DefaultDt,
		Duration:      5.0,
		Params:        world.DefaultParams(),
		RecordEvery:   1,
		ValidateState: true,
	}
}

// Steps is the number of frames the duration covers.
func (c Config) Steps() int {
	return int(c.Duration/c.Dt + 0.5)
}

// Frame is one recorded sample: the step's time, total energy, constraint
// residual norm and every body pose.
type Frame struct {
	Time     float64
	Energy   float64
	Residual float64
	State    State
}

type Result struct {
	Times       []float64
	Energy      []float64
	Residual    []float64
	Frames      []Frame
	Final       State
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

// FinalEnergy is the total energy after the last step, or 0 for an empty run.
func (r *Result) FinalEnergy() float64 {
	if len(r.Energy) == 0 {
		return 0
	}
	return r.Energy[len(r.Energy)-1]
}

// MaxResidual is the largest constraint residual norm seen during the run.
func (r *Result) MaxResidual() float64 {
	var m float64
	for _, v := range r.Residual {
		m = math.Max(m, v)
	}
	return m
}

// Divergence is the pose distance between the final states of r and ref.
// Runs over different body counts are infinitely far apart.
func (r *Result) Divergence(ref *Result) float64 {
	if len(r.Final) != len(ref.Final) {
		return math.Inf(1)
	}
	return r.Final.Sub(ref.Final).Norm()
}

type SimError struct {
	Time    float64
	Step    int
	Message string
	Wrapped error
}

func (e SimError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("step %d (t=%.4f): %s: %v", e.Step, e.Time, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Wrapped }
