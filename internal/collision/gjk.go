package collision

import (
	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/vec"
)

const (
	// GJKMaxIterations bounds the simplex search.
	GJKMaxIterations = 32

	degenerateEpsilon = 1e-12
)

// SupportPoint is a vertex of the Minkowski difference A−B together with the
// two shape points that produced it.
type SupportPoint struct {
	Point vec.Vec2
	OnA   vec.Vec2
	OnB   vec.Vec2
}

// Simplex holds up to three support points; the newest is last.
type Simplex struct {
	Points [3]SupportPoint
	Count  int
}

func (s *Simplex) push(p SupportPoint) {
	s.Points[s.Count] = p
	s.Count++
}

func (s *Simplex) Slice() []SupportPoint {
	return s.Points[:s.Count]
}

// MinkowskiSupport returns the support of A−B along d.
func MinkowskiSupport(a, b *body.RigidBody, d vec.Vec2) SupportPoint {
	pa := a.Support(d)
	pb := b.Support(vec.Neg(d))
	return SupportPoint{Point: pa.Sub(pb), OnA: pa, OnB: pb}
}

// GJK reports whether the two bodies overlap. On overlap the returned simplex
// is a triangle enclosing the origin, ready for EPA.
//
// Touching contact counts as no collision.
func GJK(a, b *body.RigidBody) (Simplex, bool) {
	var s Simplex

	d := b.Pos.Sub(a.Pos)
	if d.LenSqr() < degenerateEpsilon {
		d = vec.New(1, 0)
	}

	s.push(MinkowskiSupport(a, b, d))
	d = vec.Neg(s.Points[0].Point)
	if d.LenSqr() < degenerateEpsilon {
		return s, false
	}

	for i := 0; i < GJKMaxIterations; i++ {
		p := MinkowskiSupport(a, b, d)
		if p.Point.Dot(d) <= 0 {
			return s, false
		}
		s.push(p)

		if containsOrigin(&s, &d) {
			return s, true
		}
		if d.LenSqr() < degenerateEpsilon {
			return s, false
		}
	}
	return s, false
}

// containsOrigin reduces the simplex to the feature nearest the origin and
// updates the search direction. It returns true once a triangle encloses the
// origin.
func containsOrigin(s *Simplex, d *vec.Vec2) bool {
	switch s.Count {
	case 2:
		a, b := s.Points[1].Point, s.Points[0].Point
		ab, ao := b.Sub(a), vec.Neg(a)
		dir := vec.Triple(ab, ao, ab)
		if dir.LenSqr() < degenerateEpsilon {
			// origin on the segment: pick either side
			dir = vec.Perp(ab)
		}
		*d = dir
		return false

	case 3:
		a := s.Points[2].Point
		b := s.Points[1].Point
		c := s.Points[0].Point
		ab, ac, ao := b.Sub(a), c.Sub(a), vec.Neg(a)

		abPerp := vec.Triple(ac, ab, ab)
		if abPerp.Dot(ao) > 0 {
			s.Points[0] = s.Points[1]
			s.Points[1] = s.Points[2]
			s.Count = 2
			*d = abPerp
			return false
		}

		acPerp := vec.Triple(ab, ac, ac)
		if acPerp.Dot(ao) > 0 {
			s.Points[1] = s.Points[2]
			s.Count = 2
			*d = acPerp
			return false
		}
		return true
	}
	return false
}
