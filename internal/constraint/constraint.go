// Package constraint implements the XPBD position constraints: the rigid and
// compliant joints and the contact constraint between two bodies.
//
// A Constraint is a tagged union. Every variant computes a scalar C and its
// gradient and hands both to one shared projection, so adding a joint means
// adding a gradient function, not a new solver.
package constraint

import (
	"fmt"

	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/collision"
	"github.com/san-kum/xpbd2d/internal/vec"
)

type Kind uint8

const (
	KindOffsetLink Kind = iota
	KindPrismaticLine
	KindPrismaticPoint
	KindRevolute
	KindCollision
)

func (k Kind) String() string {
	switch k {
	case KindOffsetLink:
		return "offset-link"
	case KindPrismaticLine:
		return "prismatic-line"
	case KindPrismaticPoint:
		return "prismatic-point"
	case KindRevolute:
		return "revolute"
	case KindCollision:
		return "collision"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Constraint holds the union of every variant's fields. Only the fields of
// its Kind are meaningful:
//
//	OffsetLink      Body1 R1 Body2 R2 RestLength
//	PrismaticLine   Body1 R1 TargetY
//	PrismaticPoint  Body1 R1 Target
//	Revolute        Body1 R1 Body2 R2
//	Collision       Body1 Body2
//
// Lambda stays nil until the first solve.
type Constraint struct {
	Kind       Kind
	Compliance float64
	Body1      int
	Body2      int
	R1         vec.Vec2
	R2         vec.Vec2
	RestLength float64
	TargetY    float64
	Target     vec.Vec2

	Lambda *float64
	C      float64
	Normal vec.Vec2

	// Contacts from the most recent collision solve.
	Contacts []collision.ContactPoint
}

func OffsetLink(alpha float64, id1 int, r1 vec.Vec2, id2 int, r2 vec.Vec2, l0 float64) Constraint {
	return Constraint{Kind: KindOffsetLink, Compliance: alpha, Body1: id1, R1: r1, Body2: id2, R2: r2, RestLength: l0}
}

func PrismaticLine(alpha float64, id int, r vec.Vec2, y0 float64) Constraint {
	return Constraint{Kind: KindPrismaticLine, Compliance: alpha, Body1: id, R1: r, Body2: -1, TargetY: y0}
}

func PrismaticPoint(alpha float64, id int, r vec.Vec2, p0 vec.Vec2) Constraint {
	return Constraint{Kind: KindPrismaticPoint, Compliance: alpha, Body1: id, R1: r, Body2: -1, Target: p0}
}

func Revolute(alpha float64, id1 int, r1 vec.Vec2, id2 int, r2 vec.Vec2) Constraint {
	return Constraint{Kind: KindRevolute, Compliance: alpha, Body1: id1, R1: r1, Body2: id2, R2: r2}
}

func Collision(alpha float64, id1, id2 int) Constraint {
	return Constraint{Kind: KindCollision, Compliance: alpha, Body1: id1, Body2: id2}
}

// Bodies lists the body indices the constraint refers to.
func (c *Constraint) Bodies() []int {
	switch c.Kind {
	case KindPrismaticLine, KindPrismaticPoint:
		return []int{c.Body1}
	}
	return []int{c.Body1, c.Body2}
}

// References reports whether the constraint touches body id.
func (c *Constraint) References(id int) bool {
	for _, b := range c.Bodies() {
		if b == id {
			return true
		}
	}
	return false
}

// Clone copies the constraint without sharing Lambda or contact storage.
func (c Constraint) Clone() Constraint {
	if c.Lambda != nil {
		l := *c.Lambda
		c.Lambda = &l
	}
	if c.Contacts != nil {
		c.Contacts = append([]collision.ContactPoint(nil), c.Contacts...)
	}
	return c
}

// Solve applies one projection for this constraint against bodies using
// substep size h.
func (c *Constraint) Solve(bodies []body.RigidBody, h float64, pipeline collision.Pipeline) {
	if c.Kind == KindCollision {
		c.solveCollision(bodies, h, pipeline)
		return
	}
	c.solveJoint(bodies, h)
}

// Force estimates the force the constraint exerted over the last substep,
// λ/h² along the constraint normal.
func (c *Constraint) Force(h float64) vec.Vec2 {
	if c.Lambda == nil || h <= 0 {
		return vec.Zero
	}
	return c.Normal.Mul(*c.Lambda / (h * h))
}

func (c *Constraint) setLambda(l float64) {
	if c.Lambda == nil {
		c.Lambda = new(float64)
	}
	*c.Lambda = l
}
