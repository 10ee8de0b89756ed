package collision

import (
	"math"

	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/vec"
)

// SATResult is the minimum-penetration axis found by the separating axis
// test. Axis is the outward normal of the reference body's face; Reference is
// 0 when that face belongs to A and 1 when it belongs to B.
type SATResult struct {
	Colliding bool
	Depth     float64
	Axis      vec.Vec2
	Reference int
	Edge      body.Edge
}

// SAT projects both bodies onto every candidate axis. Any gap means the
// bodies are apart; otherwise the axis with the smallest overlap wins.
func SAT(a, b *body.RigidBody) SATResult {
	res := SATResult{Depth: math.Inf(1)}

	bodies := [2]*body.RigidBody{a, b}
	for ref := 0; ref < 2; ref++ {
		self, other := bodies[ref], bodies[1-ref]
		for _, e := range self.Edges(other) {
			lo1, hi1 := self.Project(e.Normal)
			lo2, hi2 := other.Project(e.Normal)
			if !(lo1 <= hi2 && lo2 <= hi1) {
				return SATResult{}
			}

			overlap := math.Min(math.Abs(lo1-hi2), math.Abs(hi1-lo2))
			if overlap < res.Depth {
				res.Depth = overlap
				res.Axis = e.Normal
				res.Reference = ref
				res.Edge = e
			}
		}
	}

	res.Colliding = true
	self, other := bodies[res.Reference], bodies[1-res.Reference]
	if other.Pos.Sub(self.Pos).Dot(res.Axis) < 0 {
		// the winning face looks away from the other body; use the one facing it
		res.Axis = vec.Neg(res.Axis)
		res.Edge = facingEdge(self, other, res.Axis)
	}
	return res
}

func facingEdge(self, other *body.RigidBody, n vec.Vec2) body.Edge {
	edges := self.Edges(other)
	best, bestDot := edges[0], edges[0].Normal.Dot(n)
	for _, e := range edges[1:] {
		if d := e.Normal.Dot(n); d > bestDot {
			best, bestDot = e, d
		}
	}
	return best
}
