package body

import (
	"math"

	"github.com/san-kum/xpbd2d/internal/vec"
)

// discEdgeHalfLength is the half length of the stand-in edge a disc exposes
// to the clipping stage.
const discEdgeHalfLength = 1e-8

// Edge is a directed boundary segment with its outward unit normal.
type Edge struct {
	A, B   vec.Vec2
	Normal vec.Vec2
}

// Support returns the point of the body farthest along d.
func (b *RigidBody) Support(d vec.Vec2) vec.Vec2 {
	if b.Geometry.IsDisc() {
		n, ok := vec.Normalize(d)
		if !ok {
			return b.Pos
		}
		return b.Pos.Add(n.Mul(b.Geometry.Radius))
	}

	vs := b.Vertices()
	best, bestDot := vs[0], vs[0].Dot(d)
	for _, v := range vs[1:] {
		if dot := v.Dot(d); dot > bestDot {
			best, bestDot = v, dot
		}
	}
	return best
}

// Project returns the interval the body covers along dir.
func (b *RigidBody) Project(dir vec.Vec2) (lo, hi float64) {
	if b.Geometry.IsDisc() {
		c := b.Pos.Dot(dir)
		r := b.Geometry.Radius * dir.Len()
		return c - r, c + r
	}

	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range b.Vertices() {
		p := v.Dot(dir)
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	return lo, hi
}

// ContainsPoint reports whether p lies strictly inside a disc, or on the
// inner side of every edge of a polygon.
func (b *RigidBody) ContainsPoint(p vec.Vec2) bool {
	if b.Geometry.IsDisc() {
		return vec.DistanceSq(b.Pos, p) < b.Geometry.Radius*b.Geometry.Radius
	}

	vs := b.Vertices()
	for i := range vs {
		a1, a2 := vs[i], vs[(i+1)%len(vs)]
		if vec.Perp(a2.Sub(a1)).Dot(p.Sub(a1)) < 0 {
			return false
		}
	}
	return true
}

// ClosestVertex returns the world vertex nearest p. A disc answers with its
// centre.
func (b *RigidBody) ClosestVertex(p vec.Vec2) vec.Vec2 {
	if b.Geometry.IsDisc() {
		return b.Pos
	}

	vs := b.Vertices()
	best, bestD := vs[0], vec.DistanceSq(vs[0], p)
	for _, v := range vs[1:] {
		if d := vec.DistanceSq(v, p); d < bestD {
			best, bestD = v, d
		}
	}
	return best
}

// Edges lists the body's boundary edges. A disc has no edges of its own, so
// it reports one vanishing edge on its rim facing the vertex of other that is
// closest to its centre.
func (b *RigidBody) Edges(other *RigidBody) []Edge {
	if b.Geometry.IsDisc() {
		dir, ok := vec.Normalize(other.ClosestVertex(b.Pos).Sub(b.Pos))
		if !ok {
			dir = vec.New(1, 0)
		}
		p := b.Pos.Add(dir.Mul(b.Geometry.Radius))
		t := vec.Perp(dir).Mul(discEdgeHalfLength)
		return []Edge{{A: p.Sub(t), B: p.Add(t), Normal: dir}}
	}

	vs := b.Vertices()
	edges := make([]Edge, len(vs))
	for i := range vs {
		a, c := vs[i], vs[(i+1)%len(vs)]
		d := c.Sub(a)
		n, _ := vec.Normalize(vec.New(d.Y(), -d.X()))
		edges[i] = Edge{A: a, B: c, Normal: n}
	}
	return edges
}

// MostOpposingEdge returns the edge whose outward normal is most anti-parallel
// to n.
func (b *RigidBody) MostOpposingEdge(other *RigidBody, n vec.Vec2) Edge {
	edges := b.Edges(other)
	best, bestDot := edges[0], edges[0].Normal.Dot(n)
	for _, e := range edges[1:] {
		if d := e.Normal.Dot(n); d < bestDot {
			best, bestDot = e, d
		}
	}
	return best
}
