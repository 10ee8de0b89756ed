// Package world runs the XPBD simulation loop over a set of rigid bodies.
//
// A [World] owns its bodies, constraints and force generators in slices and
// hands out integer handles. [World.Step] splits a frame into substeps; each
// substep runs, in this order:
//
//   - every force generator (and the pointer spring, when grabbed)
//   - semi-implicit integration of every body
//   - one projection of every constraint, in list order
//   - velocity reconstruction from the position change
//
// All tunables arrive through [Params] on each call.
//
// # Example
//
//	w := world.New()
//	ball, _ := w.AddBody(body.Disc(0.2), 1, vec.New(0, 2), 0)
//	w.AddPrismaticToPoint(0, ball, vec.New(0, 0.2))
//	for i := 0; i < 120; i++ {
//		w.Step(world.DefaultDt, world.DefaultParams())
//	}
//
// # Thread Safety
//
// A World is not safe for concurrent use. Step it from one goroutine and read
// it between steps; use [World.Clone] to run copies in parallel.
package world
