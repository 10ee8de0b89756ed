package metrics

import (
	"math"

	"github.com/san-kum/xpbd2d/internal/constraint"
	"github.com/san-kum/xpbd2d/internal/world"
)

// ResidualMax is the largest constraint residual norm observed.
type ResidualMax struct {
	max float64
}

func NewResidualMax() *ResidualMax { return &ResidualMax{} }

func (r *ResidualMax) Name() string { return "residual_max" }

func (r *ResidualMax) Observe(w *world.World, p world.Params, t float64) {
	r.max = math.Max(r.max, w.ConstraintResidualNorm())
}

func (r *ResidualMax) Value() float64 { return r.max }
func (r *ResidualMax) Reset()         { r.max = 0 }

// Penetration is the deepest contact reported by any collision constraint.
type Penetration struct {
	max float64
}

func NewPenetration() *Penetration { return &Penetration{} }

func (m *Penetration) Name() string { return "penetration_max" }

func (m *Penetration) Observe(w *world.World, p world.Params, t float64) {
	for i := range w.Constraints {
		c := &w.Constraints[i]
		if c.Kind != constraint.KindCollision {
			continue
		}
		for _, cp := range c.Contacts {
			m.max = math.Max(m.max, cp.Depth)
		}
	}
}

func (m *Penetration) Value() float64 { return m.max }
func (m *Penetration) Reset()         { m.max = 0 }

// ConstraintForce averages the largest constraint force magnitude seen on
// each step. Forces are λ·n/h², so the frame dt is needed to recover h.
type ConstraintForce struct {
	dt      float64
	sum     float64
	samples int
}

func NewConstraintForce(dt float64) *ConstraintForce {
	return &ConstraintForce{dt: dt}
}

func (c *ConstraintForce) Name() string { return "constraint_force" }

func (c *ConstraintForce) Observe(w *world.World, p world.Params, t float64) {
	if p.Substeps < 1 {
		return
	}
	h := c.dt / float64(p.Substeps)
	var peak float64
	for i := range w.Constraints {
		peak = math.Max(peak, w.Constraints[i].Force(h).Len())
	}
	c.sum += peak
	c.samples++
}

func (c *ConstraintForce) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ConstraintForce) Reset() {
	c.sum = 0
	c.samples = 0
}
