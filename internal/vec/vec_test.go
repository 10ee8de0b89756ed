package vec

import (
	"math"
	"testing"
)

func TestCross(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec2
		expected float64
	}{
		{"unit axes", New(1, 0), New(0, 1), 1},
		{"reversed", New(0, 1), New(1, 0), -1},
		{"parallel", New(2, 2), New(1, 1), 0},
		{"general", New(3, -1), New(2, 4), 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cross(tt.a, tt.b); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestRotate(t *testing.T) {
	got := Rotate(New(1, 0), math.Pi/2)
	if !ApproxEqual(got, New(0, 1), 1e-12) {
		t.Errorf("expected (0,1), got %v", got)
	}

	got = Rotate(New(1, 2), math.Pi)
	if !ApproxEqual(got, New(-1, -2), 1e-12) {
		t.Errorf("expected (-1,-2), got %v", got)
	}
}

func TestTriplePointsTowardOrigin(t *testing.T) {
	// segment from (-1,1) to (1,1); the origin lies below it
	a, b := New(-1, 1), New(1, 1)
	ab := b.Sub(a)
	ao := Neg(a)

	d := Triple(ab, ao, ab)
	if math.Abs(d.Dot(ab)) > 1e-12 {
		t.Errorf("expected direction perpendicular to edge, got %v", d)
	}
	if d.Y() >= 0 {
		t.Errorf("expected direction toward origin, got %v", d)
	}
}

func TestNormalize(t *testing.T) {
	n, ok := Normalize(New(3, 4))
	if !ok {
		t.Fatal("expected normalizable vector")
	}
	if math.Abs(n.Len()-1) > 1e-12 {
		t.Errorf("expected unit length, got %f", n.Len())
	}

	if _, ok := Normalize(Zero); ok {
		t.Error("expected zero vector to be rejected")
	}
}

func TestClosestOnSegment(t *testing.T) {
	p, s := ClosestOnSegment(New(0, 0), New(2, 0), New(1, 5))
	if !ApproxEqual(p, New(1, 0), 1e-12) || math.Abs(s-0.5) > 1e-12 {
		t.Errorf("expected midpoint, got %v at %f", p, s)
	}

	p, s = ClosestOnSegment(New(0, 0), New(2, 0), New(-3, 1))
	if !ApproxEqual(p, New(0, 0), 1e-12) || s != 0 {
		t.Errorf("expected clamp to start, got %v at %f", p, s)
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(New(1, 1), New(4, 5)); math.Abs(d-5) > 1e-12 {
		t.Errorf("expected 5, got %f", d)
	}
	if d := DistanceSq(New(1, 1), New(4, 5)); math.Abs(d-25) > 1e-12 {
		t.Errorf("expected 25, got %f", d)
	}
}
