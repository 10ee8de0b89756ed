package viz

import (
	"math"

	"github.com/san-kum/xpbd2d/internal/constraint"
	"github.com/san-kum/xpbd2d/internal/vec"
	"github.com/san-kum/xpbd2d/internal/world"
)

// Bounds returns the box enclosing every body, or a unit box around the
// origin for an empty world.
func Bounds(w *world.World) (lo, hi vec.Vec2) {
	if len(w.Bodies) == 0 {
		return vec.New(-1, -1), vec.New(1, 1)
	}
	lo = vec.New(math.Inf(1), math.Inf(1))
	hi = vec.New(math.Inf(-1), math.Inf(-1))
	grow := func(p vec.Vec2, r float64) {
		lo = vec.New(math.Min(lo.X(), p.X()-r), math.Min(lo.Y(), p.Y()-r))
		hi = vec.New(math.Max(hi.X(), p.X()+r), math.Max(hi.Y(), p.Y()+r))
	}
	for i := range w.Bodies {
		b := &w.Bodies[i]
		if b.Geometry.IsDisc() {
			grow(b.Pos, b.Geometry.Radius)
			continue
		}
		for _, v := range b.Vertices() {
			grow(v, 0)
		}
	}
	return lo, hi
}

// DrawWorld renders body outlines, a spoke on each disc to show its angle,
// joint anchors and the pointer spring.
func DrawWorld(c *Canvas, cam Camera, w *world.World) {
	for i := range w.Bodies {
		b := &w.Bodies[i]
		if b.Geometry.IsDisc() {
			cx, cy := cam.ToScreen(b.Pos)
			c.DrawCircle(cx, cy, int(math.Round(b.Geometry.Radius*cam.Scale)))
			ex, ey := cam.ToScreen(b.LocalToWorld(vec.New(b.Geometry.Radius, 0)))
			c.DrawLine(cx, cy, ex, ey)
			continue
		}
		vs := b.Vertices()
		for j := range vs {
			x0, y0 := cam.ToScreen(vs[j])
			x1, y1 := cam.ToScreen(vs[(j+1)%len(vs)])
			c.DrawLine(x0, y0, x1, y1)
		}
	}

	for i := range w.Constraints {
		k := &w.Constraints[i]
		switch k.Kind {
		case constraint.KindOffsetLink:
			x0, y0 := cam.ToScreen(w.Bodies[k.Body1].LocalToWorld(k.R1))
			x1, y1 := cam.ToScreen(w.Bodies[k.Body2].LocalToWorld(k.R2))
			c.DrawLine(x0, y0, x1, y1)
		case constraint.KindRevolute, constraint.KindPrismaticPoint, constraint.KindPrismaticLine:
			x, y := cam.ToScreen(w.Bodies[k.Body1].LocalToWorld(k.R1))
			c.DrawCircle(x, y, 1)
		}
	}

	if id, target, ok := w.Pointer(); ok && id < len(w.Bodies) {
		x0, y0 := cam.ToScreen(target)
		x1, y1 := cam.ToScreen(w.Bodies[id].Pos)
		c.DrawLine(x0, y0, x1, y1)
	}
}
