// Package body defines the rigid body and the geometric queries the narrow
// phase and the pointer tools run against it.
//
// A body is a plain value; a world owns them in a slice and everything else
// addresses them by index.
package body

import (
	"fmt"
	"math"

	"github.com/san-kum/xpbd2d/internal/vec"
)

type RigidBody struct {
	Pos       vec.Vec2
	PrevPos   vec.Vec2
	Vel       vec.Vec2
	Force     vec.Vec2
	Mass      float64
	Theta     float64
	PrevTheta float64
	Omega     float64
	Torque    float64
	Inertia   float64
	Geometry  Geometry
}

// New validates the inputs and returns a body at rest with its inertia
// derived from the geometry.
func New(geom Geometry, mass float64, pos vec.Vec2, theta float64) (RigidBody, error) {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return RigidBody{}, fmt.Errorf("%w: got %v", ErrInvalidMass, mass)
	}
	if !vec.IsFinite(pos) || math.IsNaN(theta) || math.IsInf(theta, 0) {
		return RigidBody{}, ErrInvalidPose
	}
	if err := geom.Validate(); err != nil {
		return RigidBody{}, err
	}

	b := RigidBody{
		Pos:       pos,
		PrevPos:   pos,
		Mass:      mass,
		Theta:     theta,
		PrevTheta: theta,
		Inertia:   geom.Inertia(mass),
		Geometry:  geom.clone(),
	}
	b.UpdateWorldVertices()
	return b, nil
}

// Clone deep-copies the vertex slices.
func (b RigidBody) Clone() RigidBody {
	b.Geometry = b.Geometry.clone()
	return b
}

func (b *RigidBody) LocalToWorld(r vec.Vec2) vec.Vec2 {
	return b.Pos.Add(vec.Rotate(r, b.Theta))
}

func (b *RigidBody) WorldToLocal(p vec.Vec2) vec.Vec2 {
	return vec.Rotate(p.Sub(b.Pos), -b.Theta)
}

// UpdateWorldVertices refreshes the world-space vertex cache from the pose.
func (b *RigidBody) UpdateWorldVertices() {
	if b.Geometry.IsDisc() {
		b.Geometry.World = b.Geometry.World[:0]
		return
	}
	if cap(b.Geometry.World) < len(b.Geometry.Local) {
		b.Geometry.World = make([]vec.Vec2, len(b.Geometry.Local))
	}
	b.Geometry.World = b.Geometry.World[:len(b.Geometry.Local)]
	for i, v := range b.Geometry.Local {
		b.Geometry.World[i] = b.LocalToWorld(v)
	}
}

// Vertices returns the world vertices for the current pose.
func (b *RigidBody) Vertices() []vec.Vec2 {
	b.UpdateWorldVertices()
	return b.Geometry.World
}

func (b *RigidBody) KineticEnergy() float64 {
	return 0.5*b.Mass*b.Vel.LenSqr() + 0.5*b.Inertia*b.Omega*b.Omega
}

// IsFinite reports whether the pose and velocities are free of NaN and Inf.
func (b *RigidBody) IsFinite() bool {
	if !vec.IsFinite(b.Pos) || !vec.IsFinite(b.Vel) {
		return false
	}
	for _, f := range []float64{b.Theta, b.Omega} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
