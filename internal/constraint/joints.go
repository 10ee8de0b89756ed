package constraint

import (
	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/vec"
)

// Value returns C for the joint variants at the current body poses without
// touching them. Collision constraints report their last solved C.
func (c *Constraint) Value(bodies []body.RigidBody) float64 {
	switch c.Kind {
	case KindOffsetLink:
		d := c.anchor2(bodies).Sub(c.anchor1(bodies))
		return d.LenSqr() - c.RestLength*c.RestLength
	case KindPrismaticLine:
		return c.anchor1(bodies).Y() - c.TargetY
	case KindPrismaticPoint:
		return c.anchor1(bodies).Sub(c.Target).LenSqr()
	case KindRevolute:
		return c.anchor1(bodies).Sub(c.anchor2(bodies)).LenSqr()
	}
	return c.C
}

func (c *Constraint) anchor1(bodies []body.RigidBody) vec.Vec2 {
	return bodies[c.Body1].LocalToWorld(c.R1)
}

func (c *Constraint) anchor2(bodies []body.RigidBody) vec.Vec2 {
	return bodies[c.Body2].LocalToWorld(c.R2)
}

// solveJoint evaluates a joint and projects it. Squared-distance joints
// below Epsilon are left alone.
func (c *Constraint) solveJoint(bodies []body.RigidBody, h float64) {
	cv, grads, normal := c.jointGradients(bodies)
	c.C = cv
	if (c.Kind == KindPrismaticPoint || c.Kind == KindRevolute) && cv < Epsilon {
		return
	}
	c.Normal = normal

	if dl, ok := project(bodies, grads, cv, c.Compliance, 0, h); ok {
		c.setLambda(dl)
	}
}

// jointGradients returns C, its gradient per body and the direction the
// constraint force acts along.
func (c *Constraint) jointGradients(bodies []body.RigidBody) (float64, []gradient, vec.Vec2) {
	switch c.Kind {
	case KindOffsetLink:
		// C = |p2 − p1|² − l0²
		b1, b2 := &bodies[c.Body1], &bodies[c.Body2]
		d := c.anchor2(bodies).Sub(c.anchor1(bodies))
		n, ok := vec.Normalize(d)
		if !ok {
			n = c.Normal
		}
		g1, g2 := d.Mul(-2), d.Mul(2)
		return d.LenSqr() - c.RestLength*c.RestLength, []gradient{
			{body: c.Body1, lin: g1, ang: g1.Dot(armDerivative(c.R1, b1.Theta))},
			{body: c.Body2, lin: g2, ang: g2.Dot(armDerivative(c.R2, b2.Theta))},
		}, n

	case KindPrismaticLine:
		// C = y(p) − y0, free along x
		b := &bodies[c.Body1]
		up := vec.New(0, 1)
		return c.anchor1(bodies).Y() - c.TargetY, []gradient{
			{body: c.Body1, lin: up, ang: armDerivative(c.R1, b.Theta).Y()},
		}, up

	case KindPrismaticPoint:
		// C = |p − p0|²
		b := &bodies[c.Body1]
		d := c.anchor1(bodies).Sub(c.Target)
		g := d.Mul(2)
		return d.LenSqr(), []gradient{
			{body: c.Body1, lin: g, ang: g.Dot(armDerivative(c.R1, b.Theta))},
		}, g

	case KindRevolute:
		// C = |p1 − p2|²
		b1, b2 := &bodies[c.Body1], &bodies[c.Body2]
		d := c.anchor1(bodies).Sub(c.anchor2(bodies))
		g := d.Mul(2)
		return d.LenSqr(), []gradient{
			{body: c.Body1, lin: g, ang: g.Dot(armDerivative(c.R1, b1.Theta))},
			{body: c.Body2, lin: vec.Neg(g), ang: vec.Neg(g).Dot(armDerivative(c.R2, b2.Theta))},
		}, g
	}
	return 0, nil, vec.Zero
}
