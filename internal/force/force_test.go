package force

import (
	"math"
	"testing"

	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/vec"
)

var params = Params{Gravity: 9.82, Damping: 0.5, SpringStiffness: 20, PointerStiffness: 20}

func pair(t *testing.T) []body.RigidBody {
	t.Helper()
	b1, err := body.New(body.Disc(0.2), 2, vec.New(0, 0), 0)
	if err != nil {
		t.Fatalf("body 1: %v", err)
	}
	b2, err := body.New(body.Rect(0.4, 0.4), 1, vec.New(1, 0), 0)
	if err != nil {
		t.Fatalf("body 2: %v", err)
	}
	return []body.RigidBody{b1, b2}
}

func TestGravity(t *testing.T) {
	bodies := pair(t)
	g := Gravity()
	g.Apply(bodies, params)

	if math.Abs(bodies[0].Force.Y()+2*9.82) > 1e-12 {
		t.Errorf("expected -19.64, got %f", bodies[0].Force.Y())
	}
	if math.Abs(bodies[1].Force.Y()+9.82) > 1e-12 {
		t.Errorf("expected -9.82, got %f", bodies[1].Force.Y())
	}

	bodies[0].Pos = vec.New(0, 3)
	if w := g.WorkStored(bodies, params); math.Abs(w-2*9.82*3) > 1e-12 {
		t.Errorf("expected %f, got %f", 2*9.82*3, w)
	}
}

func TestDamping(t *testing.T) {
	bodies := pair(t)
	bodies[0].Vel = vec.New(2, -4)
	bodies[0].Omega = 3

	d := Damping()
	d.Apply(bodies, params)

	if !vec.ApproxEqual(bodies[0].Force, vec.New(-1, 2), 1e-12) {
		t.Errorf("expected (-1,2), got %v", bodies[0].Force)
	}
	if math.Abs(bodies[0].Torque+0.15) > 1e-12 {
		t.Errorf("expected -0.15, got %f", bodies[0].Torque)
	}
	if w := d.WorkStored(bodies, params); w != 0 {
		t.Errorf("expected no stored work, got %f", w)
	}
}

func TestSpringIsEqualAndOpposite(t *testing.T) {
	bodies := pair(t)
	s := Spring(0, vec.New(0, 0.1), 1, vec.New(-0.2, 0))
	s.Apply(bodies, params)

	sum := bodies[0].Force.Add(bodies[1].Force)
	if !vec.ApproxEqual(sum, vec.Zero, 1e-12) {
		t.Errorf("expected forces to cancel, got %v", sum)
	}
	if bodies[0].Force.X() <= 0 {
		t.Errorf("expected body 0 pulled toward body 1, got %v", bodies[0].Force)
	}

	// anchors at (0,0.1) and (0.8,0): stretch sqrt(0.65) - 0.05
	stretch := math.Sqrt(0.65) - SpringRestLength
	want := 0.5 * 20 * stretch * stretch
	if w := s.WorkStored(bodies, params); math.Abs(w-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, w)
	}
}

func TestSpringTorqueFromOffset(t *testing.T) {
	bodies := pair(t)
	s := Spring(0, vec.New(0, 0.1), 1, vec.Zero)
	s.Apply(bodies, params)

	// pulling the top of body 0 toward +x turns it clockwise
	if bodies[0].Torque >= 0 {
		t.Errorf("expected negative torque, got %f", bodies[0].Torque)
	}
	if bodies[1].Torque != 0 {
		t.Errorf("expected no torque on a centred anchor, got %f", bodies[1].Torque)
	}
}

func TestPointerSpring(t *testing.T) {
	bodies := pair(t)
	p := Pointer(1, vec.Zero, vec.New(1, 2))
	p.Apply(bodies, params)

	want := 20 * (2 - SpringRestLength)
	if math.Abs(bodies[1].Force.Y()-want) > 1e-12 || bodies[1].Force.X() != 0 {
		t.Errorf("expected (0,%f), got %v", want, bodies[1].Force)
	}
	if bodies[0].Force != vec.Zero {
		t.Errorf("expected body 0 untouched, got %v", bodies[0].Force)
	}
}

func TestCoincidentAnchorsApplyNothing(t *testing.T) {
	bodies := pair(t)
	p := Pointer(1, vec.Zero, vec.New(1, 0))
	p.Apply(bodies, params)

	if bodies[1].Force != vec.Zero {
		t.Errorf("expected no force, got %v", bodies[1].Force)
	}
}

func TestReferences(t *testing.T) {
	s := Spring(0, vec.Zero, 3, vec.Zero)
	if !s.References(3) || s.References(1) {
		t.Error("spring should reference exactly its two bodies")
	}
	g := Gravity()
	if g.References(0) {
		t.Error("gravity should not reference a single body")
	}
}
