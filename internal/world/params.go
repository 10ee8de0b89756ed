package world

import (
	"fmt"
	"math"

	"github.com/san-kum/xpbd2d/internal/collision"
	"github.com/san-kum/xpbd2d/internal/force"
)

const (
	DefaultGravity          = 9.82
	DefaultDamping          = 0.0
	DefaultSpringStiffness  = 20.0
	DefaultPointerStiffness = 20.0
	DefaultSubsteps         = 10
	DefaultDt               = 1.0 / 120
)

// Params carries every tunable the step reads. Nothing in a world stores
// these; each Step call receives them.
type Params struct {
	Gravity          float64
	Damping          float64
	SpringStiffness  float64
	PointerStiffness float64
	Substeps         int
	Pipeline         collision.Pipeline
}

func DefaultParams() Params {
	return Params{
		Gravity:          DefaultGravity,
		Damping:          DefaultDamping,
		SpringStiffness:  DefaultSpringStiffness,
		PointerStiffness: DefaultPointerStiffness,
		Substeps:         DefaultSubsteps,
		Pipeline:         collision.PipelineGJK,
	}
}

func (p Params) Validate() error {
	if p.Substeps < 1 {
		return fmt.Errorf("%w: substeps must be at least 1, got %d", ErrInvalidParams, p.Substeps)
	}
	for name, v := range map[string]float64{
		"gravity":           p.Gravity,
		"damping":           p.Damping,
		"spring stiffness":  p.SpringStiffness,
		"pointer stiffness": p.PointerStiffness,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is %v", ErrInvalidParams, name, v)
		}
	}
	if p.Damping < 0 {
		return fmt.Errorf("%w: damping must be non-negative, got %v", ErrInvalidParams, p.Damping)
	}
	return nil
}

func (p Params) forces() force.Params {
	return force.Params{
		Gravity:          p.Gravity,
		Damping:          p.Damping,
		SpringStiffness:  p.SpringStiffness,
		PointerStiffness: p.PointerStiffness,
	}
}
