package constraint

import (
	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/vec"
)

const (
	// Epsilon is the value below which the squared-distance constraints count
	// as satisfied.
	Epsilon = 1e-8

	minDenominator = 1e-12
)

// gradient is ∂C with respect to one body's position and angle.
type gradient struct {
	body int
	lin  vec.Vec2
	ang  float64
}

// project runs one XPBD update for constraint value c:
//
//	Δλ = −(c + k·λ) / (Σw + k),  k = α/h²
//
// and moves every body along its gradient. It returns Δλ, or false when the
// generalized mass is too small to act on.
func project(bodies []body.RigidBody, grads []gradient, c, alpha, lambda, h float64) (float64, bool) {
	k := 0.0
	if alpha > 0 {
		k = alpha / (h * h)
	}

	w := 0.0
	for _, g := range grads {
		b := &bodies[g.body]
		w += g.lin.LenSqr()/b.Mass + g.ang*g.ang/b.Inertia
	}
	if w+k < minDenominator {
		return 0, false
	}

	dl := -(c + k*lambda) / (w + k)
	for _, g := range grads {
		b := &bodies[g.body]
		b.Pos = b.Pos.Add(g.lin.Mul(dl / b.Mass))
		b.Theta += dl * g.ang / b.Inertia
	}
	return dl, true
}

// armDerivative is d/dθ of the rotated offset R(θ)·r.
func armDerivative(r vec.Vec2, theta float64) vec.Vec2 {
	return vec.Perp(vec.Rotate(r, theta))
}
