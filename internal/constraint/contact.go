package constraint

import (
	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/collision"
	"github.com/san-kum/xpbd2d/internal/vec"
)

// solveCollision pushes two overlapping bodies apart. Each contact point is
// an inequality constraint C = (pB − pA)·n ≤ 0 projected in turn; λ runs
// across the points of one solve, so compliant contacts share one multiplier.
func (c *Constraint) solveCollision(bodies []body.RigidBody, h float64, pipeline collision.Pipeline) {
	a, b := &bodies[c.Body1], &bodies[c.Body2]

	m := collision.Collide(a, b, pipeline)
	c.Contacts = m.Points
	c.C = 0
	if !m.Colliding {
		return
	}
	c.Normal = m.Normal

	// anchor the contacts in body space so later points see the corrections
	// made by earlier ones
	type anchor struct{ rA, rB vec.Vec2 }
	anchors := make([]anchor, len(m.Points))
	for i, p := range m.Points {
		anchors[i] = anchor{rA: a.WorldToLocal(p.PointA), rB: b.WorldToLocal(p.PointB)}
	}

	lambda := 0.0
	n := m.Normal
	for _, an := range anchors {
		pA, pB := a.LocalToWorld(an.rA), b.LocalToWorld(an.rB)
		cv := pB.Sub(pA).Dot(n)
		c.C = min(c.C, cv)
		if cv >= 0 {
			continue
		}

		armA, armB := pA.Sub(a.Pos), pB.Sub(b.Pos)
		grads := []gradient{
			{body: c.Body1, lin: vec.Neg(n), ang: -vec.Cross(armA, n)},
			{body: c.Body2, lin: n, ang: vec.Cross(armB, n)},
		}
		if dl, ok := project(bodies, grads, cv, c.Compliance, lambda, h); ok {
			lambda += dl
		}
	}
	c.setLambda(lambda)
}
