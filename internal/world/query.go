package world

import (
	"math"

	"github.com/san-kum/xpbd2d/internal/force"
	"github.com/san-kum/xpbd2d/internal/vec"
)

// TotalEnergy is the kinetic energy of every body plus the energy stored by
// the force generators (gravity potential, spring potential).
func (w *World) TotalEnergy(p Params) float64 {
	fp := p.forces()
	var e float64
	for i := range w.Forces {
		e += w.Forces[i].WorkStored(w.Bodies, fp)
	}
	if w.pointerActive {
		e += w.pointer.WorkStored(w.Bodies, fp)
	}
	for i := range w.Bodies {
		e += w.Bodies[i].KineticEnergy()
	}
	return e
}

// KineticEnergy sums the bodies' translational and rotational energy.
func (w *World) KineticEnergy() float64 {
	var e float64
	for i := range w.Bodies {
		e += w.Bodies[i].KineticEnergy()
	}
	return e
}

// ConstraintResidualNorm returns √ΣC² over all constraints at the current
// poses. Collision constraints contribute the C of their last solve.
func (w *World) ConstraintResidualNorm() float64 {
	var sum float64
	for i := range w.Constraints {
		c := w.Constraints[i].Value(w.Bodies)
		sum += c * c
	}
	return math.Sqrt(sum)
}

// BodiesAt returns the bodies containing p, topmost (most recently added)
// first. Without throughBodies only the topmost is returned; with it, up to
// two.
func (w *World) BodiesAt(p vec.Vec2, throughBodies bool) []int {
	limit := 1
	if throughBodies {
		limit = 2
	}
	var hits []int
	for i := len(w.Bodies) - 1; i >= 0 && len(hits) < limit; i-- {
		if w.Bodies[i].ContainsPoint(p) {
			hits = append(hits, i)
		}
	}
	return hits
}

// Grab attaches the pointer spring to the topmost body under p. It reports
// whether a body was found.
func (w *World) Grab(p vec.Vec2) bool {
	hits := w.BodiesAt(p, false)
	if len(hits) == 0 {
		return false
	}
	id := hits[0]
	w.pointer = force.Pointer(id, w.Bodies[id].WorldToLocal(p), p)
	w.pointerActive = true
	return true
}

// MovePointer moves the pointer spring's target.
func (w *World) MovePointer(p vec.Vec2) {
	w.pointer.Target = p
}

func (w *World) Release() {
	w.pointerActive = false
	w.pointer = force.Generator{}
}

// Pointer returns the grabbed body and its target while the pointer spring is
// active.
func (w *World) Pointer() (id int, target vec.Vec2, ok bool) {
	if !w.pointerActive {
		return -1, vec.Zero, false
	}
	return w.pointer.Body1, w.pointer.Target, true
}

// IsFinite reports whether every body state is free of NaN and Inf.
func (w *World) IsFinite() bool {
	for i := range w.Bodies {
		if !w.Bodies[i].IsFinite() {
			return false
		}
	}
	return true
}
