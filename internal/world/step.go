package world

import (
	"fmt"
	"math"
)

// Step advances the world by dt split into p.Substeps substeps. Each substep
// applies forces, integrates, projects every constraint once in list order
// and then rebuilds velocities from the position change.
//
// Step returns an error only for parameters it cannot run with; the world is
// left untouched in that case.
func (w *World) Step(dt float64, p Params) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidParams, dt)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	h := dt / float64(p.Substeps)
	fp := p.forces()

	for s := 0; s < p.Substeps; s++ {
		for i := range w.Forces {
			w.Forces[i].Apply(w.Bodies, fp)
		}
		if w.pointerActive {
			w.pointer.Apply(w.Bodies, fp)
		}

		w.integrate(h)

		for i := range w.Constraints {
			w.Constraints[i].Solve(w.Bodies, h, p.Pipeline)
		}

		w.reconcile(h)
	}

	for i := range w.Bodies {
		w.Bodies[i].UpdateWorldVertices()
	}
	return nil
}

func (w *World) integrate(h float64) {
	for i := range w.Bodies {
		b := &w.Bodies[i]
		b.PrevPos = b.Pos
		b.PrevTheta = b.Theta

		b.Vel = b.Vel.Add(b.Force.Mul(h / b.Mass))
		b.Pos = b.Pos.Add(b.Vel.Mul(h))
		b.Force = b.Force.Mul(0)

		b.Omega += h * b.Torque / b.Inertia
		b.Theta += h * b.Omega
		b.Torque = 0
	}
}

func (w *World) reconcile(h float64) {
	for i := range w.Bodies {
		b := &w.Bodies[i]
		b.Vel = b.Pos.Sub(b.PrevPos).Mul(1 / h)
		b.Omega = (b.Theta - b.PrevTheta) / h
	}
}
