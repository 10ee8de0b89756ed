package collision

import (
	"errors"
	"fmt"

	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/vec"
)

var ErrUnknownPipeline = errors.New("collision: unknown pipeline")

// Pipeline selects the narrow phase used to build contacts.
type Pipeline uint8

const (
	// PipelineGJK runs GJK for overlap and EPA for the contact.
	PipelineGJK Pipeline = iota
	// PipelineSAT runs the separating axis test and clips a manifold.
	PipelineSAT
)

func (p Pipeline) String() string {
	switch p {
	case PipelineGJK:
		return "gjk"
	case PipelineSAT:
		return "sat"
	}
	return fmt.Sprintf("pipeline(%d)", uint8(p))
}

func ParsePipeline(s string) (Pipeline, error) {
	switch s {
	case "", "gjk", "epa", "gjk-epa":
		return PipelineGJK, nil
	case "sat":
		return PipelineSAT, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPipeline, s)
}

// ContactPoint pairs the touching points of A and B. Depth is how far they
// overlap along the manifold normal.
type ContactPoint struct {
	PointA vec.Vec2
	PointB vec.Vec2
	Depth  float64
}

// Manifold is the narrow phase answer for one body pair. Normal points from
// A toward B; Depth is the largest point depth.
type Manifold struct {
	Colliding bool
	Normal    vec.Vec2
	Depth     float64
	Points    []ContactPoint
}

// Collide runs the selected pipeline on a body pair.
func Collide(a, b *body.RigidBody, p Pipeline) Manifold {
	if p == PipelineSAT {
		return collideSAT(a, b)
	}
	if a.Geometry.IsDisc() && b.Geometry.IsDisc() {
		return collideDiscs(a, b)
	}

	s, hit := GJK(a, b)
	if !hit {
		return Manifold{}
	}
	pen := EPA(a, b, s)
	if pen.Depth <= 0 {
		return Manifold{}
	}
	return Manifold{
		Colliding: true,
		Normal:    pen.Normal,
		Depth:     pen.Depth,
		Points:    []ContactPoint{{PointA: pen.PointA, PointB: pen.PointB, Depth: pen.Depth}},
	}
}

func collideDiscs(a, b *body.RigidBody) Manifold {
	ra, rb := a.Geometry.Radius, b.Geometry.Radius
	d := b.Pos.Sub(a.Pos)
	dist := d.Len()
	if dist >= ra+rb {
		return Manifold{}
	}

	n, ok := vec.Normalize(d)
	if !ok {
		n = vec.New(1, 0)
	}
	depth := ra + rb - dist
	return Manifold{
		Colliding: true,
		Normal:    n,
		Depth:     depth,
		Points: []ContactPoint{{
			PointA: a.Pos.Add(n.Mul(ra)),
			PointB: b.Pos.Sub(n.Mul(rb)),
			Depth:  depth,
		}},
	}
}

func collideSAT(a, b *body.RigidBody) Manifold {
	res := SAT(a, b)
	if !res.Colliding || res.Depth <= 0 {
		return Manifold{}
	}

	// orient everything from A toward B
	n := res.Axis
	if res.Reference == 1 {
		n = vec.Neg(n)
	}
	m := Manifold{Colliding: true, Normal: n}

	for _, cp := range Clip(a, b, res) {
		// the clipped point lies on the incident body; its partner sits on the
		// reference face along the reference normal
		onRef := cp.Point.Add(res.Axis.Mul(cp.Depth))
		pt := ContactPoint{PointA: onRef, PointB: cp.Point, Depth: cp.Depth}
		if res.Reference == 1 {
			pt.PointA, pt.PointB = cp.Point, onRef
		}
		m.Points = append(m.Points, pt)
		m.Depth = max(m.Depth, cp.Depth)
	}

	if len(m.Points) == 0 {
		m.Depth = res.Depth
		m.Points = []ContactPoint{{
			PointA: a.Support(n),
			PointB: b.Support(vec.Neg(n)),
			Depth:  res.Depth,
		}}
	}
	return m
}
