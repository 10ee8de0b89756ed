package collision

import (
	"math"

	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/vec"
)

const (
	// EPAMaxIterations caps polytope expansion. Past the cap EPA returns the
	// best edge found so far.
	EPAMaxIterations = 32

	// EPATolerance is the support distance gain below which the closest edge
	// is accepted.
	EPATolerance = 0.001
)

// Penetration describes how far two overlapping bodies interpenetrate.
// Normal points from A toward B; PointA is the deepest point of A inside B and
// PointB the deepest point of B inside A.
type Penetration struct {
	Depth      float64
	Normal     vec.Vec2
	PointA     vec.Vec2
	PointB     vec.Vec2
	Iterations int
	Converged  bool
}

type polytopeEdge struct {
	index  int
	normal vec.Vec2
	dist   float64
}

// EPA expands the GJK simplex toward the boundary of A−B to recover the
// penetration depth and direction.
func EPA(a, b *body.RigidBody, s Simplex) Penetration {
	poly := make([]SupportPoint, 0, EPAMaxIterations+3)
	poly = append(poly, s.Slice()...)
	if len(poly) == 3 && signedArea(poly) < 0 {
		poly[0], poly[1] = poly[1], poly[0]
	}

	var (
		pen  Penetration
		edge polytopeEdge
	)
	for pen.Iterations = 0; pen.Iterations < EPAMaxIterations; pen.Iterations++ {
		edge = closestEdge(poly)
		if math.IsInf(edge.dist, 1) {
			return pen
		}

		p := MinkowskiSupport(a, b, edge.normal)
		if p.Point.Dot(edge.normal)-edge.dist < EPATolerance {
			pen.Converged = true
			break
		}

		at := edge.index + 1
		poly = append(poly, SupportPoint{})
		copy(poly[at+1:], poly[at:])
		poly[at] = p
	}
	if !pen.Converged {
		edge = closestEdge(poly)
		if math.IsInf(edge.dist, 1) {
			return pen
		}
	}

	i, j := edge.index, (edge.index+1)%len(poly)
	_, t := vec.ClosestOnSegment(poly[i].Point, poly[j].Point, vec.Zero)

	pen.Depth = edge.dist
	pen.Normal = edge.normal
	pen.PointA = vec.Lerp(poly[i].OnA, poly[j].OnA, t)
	pen.PointB = vec.Lerp(poly[i].OnB, poly[j].OnB, t)
	return pen
}

// closestEdge finds the polytope edge nearest the origin. The polytope is
// wound counter-clockwise, so (e.Y, −e.X) is the outward normal of every
// edge. An origin a hair outside an edge clamps to zero distance; the normal
// is never flipped.
func closestEdge(poly []SupportPoint) polytopeEdge {
	best := polytopeEdge{dist: math.Inf(1)}
	for i := range poly {
		pi := poly[i].Point
		e := poly[(i+1)%len(poly)].Point.Sub(pi)
		n, ok := vec.Normalize(vec.New(e.Y(), -e.X()))
		if !ok || e.LenSqr() < degenerateEpsilon {
			continue
		}
		d := math.Max(n.Dot(pi), 0)
		if d < best.dist {
			best = polytopeEdge{index: i, normal: n, dist: d}
		}
	}
	return best
}

func signedArea(poly []SupportPoint) float64 {
	a, b, c := poly[0].Point, poly[1].Point, poly[2].Point
	return vec.Cross(b.Sub(a), c.Sub(a))
}
