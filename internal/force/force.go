// Package force implements the generators that add forces and torques to
// bodies before each substep's integration.
package force

import (
	"fmt"

	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/vec"
)

// SpringRestLength is the rest length given to springs created between two
// bodies and to the pointer spring.
const SpringRestLength = 0.05

// AngularDampingFactor scales the damping coefficient for rotation.
const AngularDampingFactor = 0.1

type Kind uint8

const (
	KindGravity Kind = iota
	KindDamping
	KindSpring
	KindPointer
)

func (k Kind) String() string {
	switch k {
	case KindGravity:
		return "gravity"
	case KindDamping:
		return "damping"
	case KindSpring:
		return "spring"
	case KindPointer:
		return "pointer"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Params are the tunables the generators read on every application.
type Params struct {
	Gravity          float64
	Damping          float64
	SpringStiffness  float64
	PointerStiffness float64
}

// Generator is a tagged union over the generator variants. Springs use
// Body1/R1, Body2/R2 and RestLength; the pointer spring pulls Body1's R1
// toward Target.
type Generator struct {
	Kind       Kind
	Body1      int
	Body2      int
	R1         vec.Vec2
	R2         vec.Vec2
	RestLength float64
	Target     vec.Vec2
}

func Gravity() Generator { return Generator{Kind: KindGravity} }

func Damping() Generator { return Generator{Kind: KindDamping} }

func Spring(id1 int, r1 vec.Vec2, id2 int, r2 vec.Vec2) Generator {
	return Generator{Kind: KindSpring, Body1: id1, R1: r1, Body2: id2, R2: r2, RestLength: SpringRestLength}
}

func Pointer(id int, r vec.Vec2, target vec.Vec2) Generator {
	return Generator{Kind: KindPointer, Body1: id, R1: r, Body2: -1, RestLength: SpringRestLength, Target: target}
}

// References reports whether the generator acts on body id specifically.
func (g *Generator) References(id int) bool {
	switch g.Kind {
	case KindSpring:
		return g.Body1 == id || g.Body2 == id
	case KindPointer:
		return g.Body1 == id
	}
	return false
}

// Apply accumulates the generator's force and torque into bodies.
func (g *Generator) Apply(bodies []body.RigidBody, p Params) {
	switch g.Kind {
	case KindGravity:
		for i := range bodies {
			b := &bodies[i]
			b.Force = b.Force.Add(vec.New(0, -b.Mass*p.Gravity))
		}

	case KindDamping:
		for i := range bodies {
			b := &bodies[i]
			b.Force = b.Force.Sub(b.Vel.Mul(p.Damping))
			b.Torque -= AngularDampingFactor * p.Damping * b.Omega
		}

	case KindSpring:
		b1, b2 := &bodies[g.Body1], &bodies[g.Body2]
		a1, a2 := b1.LocalToWorld(g.R1), b2.LocalToWorld(g.R2)
		f, ok := hooke(a1, a2, g.RestLength, p.SpringStiffness)
		if !ok {
			return
		}
		b1.Force = b1.Force.Add(f)
		b1.Torque += vec.Cross(a1.Sub(b1.Pos), f)
		b2.Force = b2.Force.Sub(f)
		b2.Torque += vec.Cross(a2.Sub(b2.Pos), vec.Neg(f))

	case KindPointer:
		b := &bodies[g.Body1]
		a := b.LocalToWorld(g.R1)
		f, ok := hooke(a, g.Target, g.RestLength, p.PointerStiffness)
		if !ok {
			return
		}
		b.Force = b.Force.Add(f)
		b.Torque += vec.Cross(a.Sub(b.Pos), f)
	}
}

// hooke returns the force on the body at a1 pulled toward a2.
func hooke(a1, a2 vec.Vec2, rest, k float64) (vec.Vec2, bool) {
	d := a2.Sub(a1)
	n, ok := vec.Normalize(d)
	if !ok {
		return vec.Zero, false
	}
	return n.Mul(k * (d.Len() - rest)), true
}

// WorkStored is the potential energy held by the generator: m·g·y summed over
// bodies for gravity and ½k(|d| − l0)² for springs. Damping stores nothing.
func (g *Generator) WorkStored(bodies []body.RigidBody, p Params) float64 {
	switch g.Kind {
	case KindGravity:
		var w float64
		for i := range bodies {
			w += bodies[i].Mass * p.Gravity * bodies[i].Pos.Y()
		}
		return w

	case KindSpring:
		a1 := bodies[g.Body1].LocalToWorld(g.R1)
		a2 := bodies[g.Body2].LocalToWorld(g.R2)
		s := vec.Distance(a1, a2) - g.RestLength
		return 0.5 * p.SpringStiffness * s * s

	case KindPointer:
		a := bodies[g.Body1].LocalToWorld(g.R1)
		s := vec.Distance(a, g.Target) - g.RestLength
		return 0.5 * p.PointerStiffness * s * s
	}
	return 0
}
