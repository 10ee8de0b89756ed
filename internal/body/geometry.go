package body

import (
	"fmt"
	"math"

	"github.com/san-kum/xpbd2d/internal/vec"
)

type Kind uint8

const (
	KindDisc Kind = iota
	KindRect
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindDisc:
		return "disc"
	case KindRect:
		return "rect"
	case KindPolygon:
		return "polygon"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Geometry is the shape of a body. Discs use Radius only; rectangles keep
// Width and Height alongside their four local vertices; polygons carry
// counter-clockwise local vertices centred on the body origin.
//
// World is a cache derived from the owning body's pose.
type Geometry struct {
	Kind   Kind
	Radius float64
	Width  float64
	Height float64
	Local  []vec.Vec2
	World  []vec.Vec2
}

func Disc(radius float64) Geometry {
	return Geometry{Kind: KindDisc, Radius: radius}
}

func Rect(width, height float64) Geometry {
	hw, hh := width/2, height/2
	return Geometry{
		Kind:   KindRect,
		Width:  width,
		Height: height,
		Local: []vec.Vec2{
			{-hw, -hh},
			{hw, -hh},
			{hw, hh},
			{-hw, hh},
		},
	}
}

// Polygon copies the given outline. Vertices must be convex and listed
// counter-clockwise around the body origin.
func Polygon(local []vec.Vec2) Geometry {
	vs := make([]vec.Vec2, len(local))
	copy(vs, local)
	return Geometry{Kind: KindPolygon, Local: vs}
}

func (g Geometry) IsDisc() bool { return g.Kind == KindDisc }

// Validate reports ErrInvalidGeometry for shapes the solver cannot handle.
func (g Geometry) Validate() error {
	switch g.Kind {
	case KindDisc:
		if !(g.Radius > 0) || math.IsInf(g.Radius, 0) {
			return fmt.Errorf("%w: disc radius %v", ErrInvalidGeometry, g.Radius)
		}
	case KindRect:
		if !(g.Width > 0) || !(g.Height > 0) || math.IsInf(g.Width, 0) || math.IsInf(g.Height, 0) {
			return fmt.Errorf("%w: rect %vx%v", ErrInvalidGeometry, g.Width, g.Height)
		}
		if len(g.Local) != 4 {
			return fmt.Errorf("%w: rect needs 4 vertices, got %d", ErrInvalidGeometry, len(g.Local))
		}
	case KindPolygon:
		if len(g.Local) < 3 {
			return fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidGeometry, len(g.Local))
		}
		if !convexCCW(g.Local) {
			return fmt.Errorf("%w: polygon must be convex and counter-clockwise", ErrInvalidGeometry)
		}
	default:
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidGeometry, g.Kind)
	}
	return nil
}

func convexCCW(vs []vec.Vec2) bool {
	n := len(vs)
	for i := 0; i < n; i++ {
		a, b, c := vs[i], vs[(i+1)%n], vs[(i+2)%n]
		if vec.Cross(b.Sub(a), c.Sub(b)) <= 0 {
			return false
		}
	}
	return true
}

// Inertia returns the moment of inertia about the body origin for mass m.
func (g Geometry) Inertia(m float64) float64 {
	switch g.Kind {
	case KindDisc:
		return 0.5 * m * g.Radius * g.Radius
	case KindRect:
		return m * (g.Width*g.Width + g.Height*g.Height) / 12
	}
	return polygonInertia(g.Local, m)
}

// polygonInertia integrates the second moment over the fan of triangles
// spanned from the origin.
func polygonInertia(vs []vec.Vec2, m float64) float64 {
	var num, den float64
	n := len(vs)
	for i := 0; i < n; i++ {
		a, b := vs[i], vs[(i+1)%n]
		c := math.Abs(vec.Cross(a, b))
		num += c * (a.Dot(a) + a.Dot(b) + b.Dot(b))
		den += c
	}
	if den == 0 {
		return 0
	}
	return m / 6 * num / den
}

func (g Geometry) clone() Geometry {
	out := g
	if g.Local != nil {
		out.Local = append([]vec.Vec2(nil), g.Local...)
	}
	if g.World != nil {
		out.World = append([]vec.Vec2(nil), g.World...)
	}
	return out
}
