package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/collision"
	"github.com/san-kum/xpbd2d/internal/vec"
	"github.com/san-kum/xpbd2d/internal/viz"
	"github.com/san-kum/xpbd2d/internal/world"
	"github.com/spf13/cobra"
)

func parseFloats(s, sep string) ([]float64, error) {
	parts := strings.Split(s, sep)
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseShape reads kind:size@x,y[,theta] into a unit-mass body.
func parseShape(s string) (body.RigidBody, error) {
	kind, rest, ok := strings.Cut(s, ":")
	if !ok {
		return body.RigidBody{}, fmt.Errorf("shape %q: missing kind", s)
	}
	size, at, ok := strings.Cut(rest, "@")
	if !ok {
		return body.RigidBody{}, fmt.Errorf("shape %q: missing @position", s)
	}
	pose, err := parseFloats(at, ",")
	if err != nil || (len(pose) != 2 && len(pose) != 3) {
		return body.RigidBody{}, fmt.Errorf("shape %q: position must be x,y[,theta]", s)
	}
	theta := 0.0
	if len(pose) == 3 {
		theta = pose[2]
	}

	var geom body.Geometry
	switch kind {
	case "disc":
		r, err := strconv.ParseFloat(size, 64)
		if err != nil {
			return body.RigidBody{}, fmt.Errorf("shape %q: %w", s, err)
		}
		geom = body.Disc(r)
	case "rect":
		wh, err := parseFloats(size, "x")
		if err != nil || len(wh) != 2 {
			return body.RigidBody{}, fmt.Errorf("shape %q: size must be WxH", s)
		}
		geom = body.Rect(wh[0], wh[1])
	case "poly":
		var vs []vec.Vec2
		for _, pt := range strings.Split(size, ";") {
			xy, err := parseFloats(pt, ",")
			if err != nil || len(xy) != 2 {
				return body.RigidBody{}, fmt.Errorf("shape %q: bad vertex %q", s, pt)
			}
			vs = append(vs, vec.New(xy[0], xy[1]))
		}
		geom = body.Polygon(vs)
	default:
		return body.RigidBody{}, fmt.Errorf("shape %q: unknown kind %q", s, kind)
	}

	b, err := body.New(geom, 1, vec.New(pose[0], pose[1]), theta)
	if err != nil {
		return body.RigidBody{}, fmt.Errorf("shape %q: %w", s, err)
	}
	return b, nil
}

func probeShapes(cmd *cobra.Command, args []string) error {
	a, err := parseShape(args[0])
	if err != nil {
		return err
	}
	b, err := parseShape(args[1])
	if err != nil {
		return err
	}

	w := world.NewEmpty()
	w.InsertBody(a.Clone())
	w.InsertBody(b.Clone())
	lo, hi := viz.Bounds(w)
	canvas := viz.NewCanvas(40, 12)
	pw, ph := canvas.PixelSize()
	viz.DrawWorld(canvas, viz.FitCamera(lo, hi, pw, ph), w)
	fmt.Println(viz.Panel.Render(canvas.String()))

	s, hit := collision.GJK(&a, &b)
	fmt.Printf("gjk: overlap=%v simplex=%d\n", hit, s.Count)
	if hit {
		pen := collision.EPA(&a, &b, s)
		fmt.Printf("epa: depth=%.5f normal=%v iterations=%d converged=%v\n",
			pen.Depth, pen.Normal, pen.Iterations, pen.Converged)
	}

	sat := collision.SAT(&a, &b)
	fmt.Printf("sat: overlap=%v", sat.Colliding)
	if sat.Colliding {
		fmt.Printf(" depth=%.5f axis=%v reference=%d", sat.Depth, sat.Axis, sat.Reference)
	}
	fmt.Println()

	for _, p := range []collision.Pipeline{collision.PipelineGJK, collision.PipelineSAT} {
		m := collision.Collide(&a, &b, p)
		fmt.Printf("\n%s manifold: colliding=%v", p, m.Colliding)
		if !m.Colliding {
			fmt.Println()
			continue
		}
		fmt.Printf(" normal=%v depth=%.5f\n", m.Normal, m.Depth)
		for i, c := range m.Points {
			fmt.Printf("  %d: a=%v b=%v depth=%.5f\n", i, c.PointA, c.PointB, c.Depth)
		}
	}
	return nil
}
