package collision

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/vec"
)

func newBody(t *testing.T, g body.Geometry, pos vec.Vec2, theta float64) *body.RigidBody {
	t.Helper()
	b, err := body.New(g, 1, pos, theta)
	if err != nil {
		t.Fatalf("new body failed: %v", err)
	}
	return &b
}

func TestGJK(t *testing.T) {
	tests := []struct {
		name   string
		a, b   body.Geometry
		posB   vec.Vec2
		thetaB float64
		want   bool
	}{
		{"overlapping discs", body.Disc(0.5), body.Disc(0.5), vec.New(0.6, 0), 0, true},
		{"separated discs", body.Disc(0.5), body.Disc(0.5), vec.New(1.2, 0), 0, false},
		{"overlapping boxes", body.Rect(1, 1), body.Rect(1, 1), vec.New(0.9, 0.3), 0, true},
		{"separated boxes", body.Rect(1, 1), body.Rect(1, 1), vec.New(2, 0), 0, false},
		{"rotated box corner miss", body.Rect(1, 1), body.Rect(1, 1), vec.New(1.2, 1.2), math.Pi / 4, false},
		{"disc against box", body.Disc(0.5), body.Rect(1, 1), vec.New(0.8, 0), 0, true},
		{"coincident centres", body.Rect(1, 1), body.Disc(0.3), vec.New(0, 0), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newBody(t, tt.a, vec.Zero, 0)
			b := newBody(t, tt.b, tt.posB, tt.thetaB)

			s, hit := GJK(a, b)
			if hit != tt.want {
				t.Fatalf("expected hit=%v, got %v", tt.want, hit)
			}
			if hit && s.Count != 3 {
				t.Errorf("expected triangle simplex, got %d points", s.Count)
			}
		})
	}
}

func TestEPADiscs(t *testing.T) {
	a := newBody(t, body.Disc(0.5), vec.Zero, 0)
	b := newBody(t, body.Disc(0.5), vec.New(0.6, 0), 0)

	s, hit := GJK(a, b)
	if !hit {
		t.Fatal("expected collision")
	}

	pen := EPA(a, b, s)
	if !pen.Converged {
		t.Errorf("expected convergence within %d iterations", EPAMaxIterations)
	}
	if math.Abs(pen.Depth-0.4) > 1e-3 {
		t.Errorf("expected depth 0.4, got %f", pen.Depth)
	}
	if math.Abs(pen.Normal.X()-1) > 1e-3 {
		t.Errorf("expected normal along +x, got %v", pen.Normal)
	}
	// the polytope only approximates the rim, so the normal may lean by the
	// angle that hides inside the distance tolerance
	if math.Abs(pen.Normal.Y()) > 0.05 {
		t.Errorf("normal leans too far: %v", pen.Normal)
	}
}

func TestEPABoxes(t *testing.T) {
	a := newBody(t, body.Rect(1, 1), vec.Zero, 0)
	b := newBody(t, body.Rect(1, 1), vec.New(0.9, 0.2), 0)

	s, hit := GJK(a, b)
	if !hit {
		t.Fatal("expected collision")
	}

	pen := EPA(a, b, s)
	if math.Abs(pen.Depth-0.1) > 1e-6 {
		t.Errorf("expected depth 0.1, got %f", pen.Depth)
	}
	if !vec.ApproxEqual(pen.Normal, vec.New(1, 0), 1e-6) {
		t.Errorf("expected normal (1,0), got %v", pen.Normal)
	}
	if sep := pen.PointB.Sub(pen.PointA).Dot(pen.Normal); math.Abs(sep+0.1) > 1e-6 {
		t.Errorf("expected contact separation -0.1, got %f", sep)
	}
}

func TestCollideDiscsExact(t *testing.T) {
	a := newBody(t, body.Disc(0.5), vec.Zero, 0)
	b := newBody(t, body.Disc(0.5), vec.New(0.6, 0), 0)

	m := Collide(a, b, PipelineGJK)
	if !m.Colliding {
		t.Fatal("expected collision")
	}
	if math.Abs(m.Depth-0.4) > 1e-9 {
		t.Errorf("expected depth 0.4, got %f", m.Depth)
	}
	if !vec.ApproxEqual(m.Normal, vec.New(1, 0), 1e-9) {
		t.Errorf("expected normal (1,0), got %v", m.Normal)
	}
	if !vec.ApproxEqual(m.Points[0].PointA, vec.New(0.5, 0), 1e-9) {
		t.Errorf("expected contact on A at (0.5,0), got %v", m.Points[0].PointA)
	}
}

func TestCollideGJKShallowDiscOnFloor(t *testing.T) {
	// GJK ends on a nearly flat triangle here with the origin a hair from one
	// edge; EPA has to keep every edge normal pointing out of the polytope
	floor := newBody(t, body.Rect(6, 0.5), vec.New(2.6e-10, -8.85e-5), 3.98e-6)
	disc := newBody(t, body.Disc(0.25), vec.New(0.29999, 0.49985), 0)

	sat := Collide(floor, disc, PipelineSAT)
	gjk := Collide(floor, disc, PipelineGJK)
	if !sat.Colliding || !gjk.Colliding {
		t.Fatalf("expected both pipelines to collide: sat=%v gjk=%v", sat.Colliding, gjk.Colliding)
	}
	if sat.Depth > 1e-4 {
		t.Fatalf("expected a shallow sat depth, got %g", sat.Depth)
	}
	if gjk.Depth > 0.01 {
		t.Errorf("expected gjk depth near %g, got %g", sat.Depth, gjk.Depth)
	}
	if gjk.Normal.Y() < 0.99 {
		t.Errorf("expected normal pointing up from the floor, got %v", gjk.Normal)
	}
	if x := gjk.Points[0].PointB.X(); math.Abs(x-0.3) > 0.05 {
		t.Errorf("expected contact under the disc, got %v", gjk.Points[0].PointB)
	}
}

func TestClosestEdgeKeepsWindingNormal(t *testing.T) {
	// counter-clockwise triangle with the origin just outside edge 0
	poly := []SupportPoint{
		{Point: vec.New(-1, 1e-6)},
		{Point: vec.New(1, 1e-6)},
		{Point: vec.New(0, 2)},
	}
	e := closestEdge(poly)
	if e.index != 0 {
		t.Fatalf("expected edge 0, got %d", e.index)
	}
	if e.dist != 0 {
		t.Errorf("expected clamped distance 0, got %g", e.dist)
	}
	if !vec.ApproxEqual(e.normal, vec.New(0, -1), 1e-12) {
		t.Errorf("expected outward normal (0,-1), got %v", e.normal)
	}
}

func TestSATUnitSquares(t *testing.T) {
	a := newBody(t, body.Rect(1, 1), vec.Zero, 0)

	t.Run("separated", func(t *testing.T) {
		b := newBody(t, body.Rect(1, 1), vec.New(2, 0), 0)
		if res := SAT(a, b); res.Colliding {
			t.Errorf("expected no collision, got depth %f", res.Depth)
		}
	})

	t.Run("overlapping", func(t *testing.T) {
		b := newBody(t, body.Rect(1, 1), vec.New(0.9, 0), 0)
		res := SAT(a, b)
		if !res.Colliding {
			t.Fatal("expected collision")
		}
		if math.Abs(res.Depth-0.1) > 1e-12 {
			t.Errorf("expected depth 0.1, got %f", res.Depth)
		}
		if !vec.ApproxEqual(res.Axis, vec.New(1, 0), 1e-12) {
			t.Errorf("expected axis (1,0), got %v", res.Axis)
		}

		pts := Clip(a, b, res)
		if len(pts) != 2 {
			t.Fatalf("expected 2 contact points, got %d", len(pts))
		}
		for _, p := range pts {
			if math.Abs(p.Depth-0.1) > 1e-12 {
				t.Errorf("expected point depth 0.1, got %f", p.Depth)
			}
			if math.Abs(p.Point.X()-0.4) > 1e-12 {
				t.Errorf("expected point on B's left face, got %v", p.Point)
			}
		}
	})
}

func TestSATBoxOnFloor(t *testing.T) {
	// a small box sunk into a wide floor; the floor edge gets clipped down to
	// the width of the box
	box := newBody(t, body.Rect(1, 1), vec.New(0, 0.45), 0)
	floor := newBody(t, body.Rect(10, 1), vec.New(0, -0.5), 0)

	m := Collide(box, floor, PipelineSAT)
	if !m.Colliding {
		t.Fatal("expected collision")
	}
	if !vec.ApproxEqual(m.Normal, vec.New(0, -1), 1e-12) {
		t.Errorf("expected normal from box toward floor, got %v", m.Normal)
	}
	if len(m.Points) != 2 {
		t.Fatalf("expected 2 contact points, got %d", len(m.Points))
	}
	for _, p := range m.Points {
		if math.Abs(p.Depth-0.05) > 1e-12 {
			t.Errorf("expected depth 0.05, got %f", p.Depth)
		}
		if sep := p.PointB.Sub(p.PointA).Dot(m.Normal); math.Abs(sep+0.05) > 1e-12 {
			t.Errorf("expected separation -0.05, got %f", sep)
		}
	}
}

func TestSATDiscAgainstBox(t *testing.T) {
	disc := newBody(t, body.Disc(0.5), vec.New(0, 0.9), 0)
	floor := newBody(t, body.Rect(4, 1), vec.Zero, 0)

	m := Collide(disc, floor, PipelineSAT)
	if !m.Colliding {
		t.Fatal("expected collision")
	}
	if math.Abs(m.Depth-0.1) > 1e-6 {
		t.Errorf("expected depth 0.1, got %f", m.Depth)
	}
	if m.Normal.Y() > -0.99 {
		t.Errorf("expected normal pointing down into the floor, got %v", m.Normal)
	}
}

func TestParsePipeline(t *testing.T) {
	for _, s := range []string{"", "gjk", "sat"} {
		if _, err := ParsePipeline(s); err != nil {
			t.Errorf("%q: unexpected error %v", s, err)
		}
	}
	if _, err := ParsePipeline("bvh"); !errors.Is(err, ErrUnknownPipeline) {
		t.Errorf("expected ErrUnknownPipeline, got %v", err)
	}
}
