// Package vec holds the 2D vector helpers shared by the body, collision and
// constraint packages. Vectors are mgl64.Vec2 values; the functions here add
// the planar operations mgl64 leaves out (scalar cross, perpendicular, triple
// product, rotation by an angle).
package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is a plain value type; all helpers return new vectors.
type Vec2 = mgl64.Vec2

// Zero is the origin.
var Zero = Vec2{}

func New(x, y float64) Vec2 { return Vec2{x, y} }

// Cross returns the z component of a×b.
func Cross(a, b Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// Perp rotates v by +90°.
func Perp(v Vec2) Vec2 {
	return Vec2{-v[1], v[0]}
}

// Triple returns (a×b)×c expanded in the plane, b(a·c) − a(b·c).
func Triple(a, b, c Vec2) Vec2 {
	return b.Mul(a.Dot(c)).Sub(a.Mul(b.Dot(c)))
}

// Rotate rotates v counter-clockwise by theta radians.
func Rotate(v Vec2, theta float64) Vec2 {
	return mgl64.Rotate2D(theta).Mul2x1(v)
}

func Neg(v Vec2) Vec2 { return Vec2{-v[0], -v[1]} }

func Distance(a, b Vec2) float64 { return b.Sub(a).Len() }

func DistanceSq(a, b Vec2) float64 { return b.Sub(a).LenSqr() }

// Normalize returns the unit vector along v, or false when v is too short to
// have a direction.
func Normalize(v Vec2) (Vec2, bool) {
	l := v.Len()
	if l < 1e-12 {
		return Zero, false
	}
	return v.Mul(1 / l), true
}

// Lerp interpolates between a and b.
func Lerp(a, b Vec2, t float64) Vec2 {
	return a.Add(b.Sub(a).Mul(t))
}

// ClosestOnSegment returns the point of segment ab nearest to p and its
// parameter along the segment.
func ClosestOnSegment(a, b, p Vec2) (Vec2, float64) {
	ab := b.Sub(a)
	den := ab.LenSqr()
	if den < 1e-18 {
		return a, 0
	}
	t := p.Sub(a).Dot(ab) / den
	t = math.Max(0, math.Min(1, t))
	return a.Add(ab.Mul(t)), t
}

func IsFinite(v Vec2) bool {
	return !math.IsNaN(v[0]) && !math.IsNaN(v[1]) && !math.IsInf(v[0], 0) && !math.IsInf(v[1], 0)
}

func ApproxEqual(a, b Vec2, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol
}
