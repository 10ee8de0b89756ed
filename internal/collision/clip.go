package collision

import (
	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/vec"
)

// clipSegment keeps the part of the segment behind the plane n·x = offset.
func clipSegment(in []vec.Vec2, n vec.Vec2, offset float64) []vec.Vec2 {
	if len(in) < 2 {
		return in
	}
	out := make([]vec.Vec2, 0, 2)

	d0 := n.Dot(in[0]) - offset
	d1 := n.Dot(in[1]) - offset
	if d0 <= 0 {
		out = append(out, in[0])
	}
	if d1 <= 0 {
		out = append(out, in[1])
	}
	if d0*d1 < 0 {
		out = append(out, vec.Lerp(in[0], in[1], d0/(d0-d1)))
	}
	return out
}

// incidentSegment is the feature of inc that faces the reference normal n.
// A disc contributes its deepest rim point.
func incidentSegment(inc, ref *body.RigidBody, n vec.Vec2) []vec.Vec2 {
	if inc.Geometry.IsDisc() {
		p := inc.Pos.Sub(n.Mul(inc.Geometry.Radius))
		return []vec.Vec2{p, p}
	}
	e := inc.MostOpposingEdge(ref, n)
	return []vec.Vec2{e.A, e.B}
}

// ClipPoint is one clipped contact on the incident body with its penetration
// below the reference face.
type ClipPoint struct {
	Point vec.Vec2
	Depth float64
}

// Clip builds the contact manifold for a SAT result: the incident feature is
// clipped against the side planes of the reference edge and only points below
// the reference face survive. At most two points are returned.
func Clip(a, b *body.RigidBody, res SATResult) []ClipPoint {
	if !res.Colliding {
		return nil
	}
	ref, inc := a, b
	if res.Reference == 1 {
		ref, inc = b, a
	}

	n := res.Axis
	refEdge := res.Edge
	t, ok := vec.Normalize(refEdge.B.Sub(refEdge.A))
	if !ok {
		t = vec.Perp(n)
	}

	pts := incidentSegment(inc, ref, n)
	pts = clipSegment(pts, vec.Neg(t), -t.Dot(refEdge.A))
	if len(pts) < 2 {
		return nil
	}
	pts = clipSegment(pts, t, t.Dot(refEdge.B))
	if len(pts) < 2 {
		return nil
	}

	out := make([]ClipPoint, 0, 2)
	for _, p := range pts {
		sep := n.Dot(p.Sub(refEdge.A))
		if sep >= 0 {
			continue
		}
		if len(out) == 1 && vec.DistanceSq(out[0].Point, p) < 1e-12 {
			out[0].Depth = max(out[0].Depth, -sep)
			continue
		}
		out = append(out, ClipPoint{Point: p, Depth: -sep})
	}
	return out
}
