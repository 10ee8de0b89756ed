package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/constraint"
	"github.com/san-kum/xpbd2d/internal/force"
	"github.com/san-kum/xpbd2d/internal/vec"
	"github.com/san-kum/xpbd2d/internal/world"
)

var (
	// ErrUnknownType rejects a scene naming a constraint, generator or
	// geometry type this build does not know. Nothing is loaded.
	ErrUnknownType = errors.New("scene: unknown type")

	// ErrBadReference rejects a scene whose entities point at missing bodies.
	ErrBadReference = errors.New("scene: reference to missing body")
)

// Type discriminators written to and accepted from scene files.
const (
	TypeOffsetLink     = "OffsetLinkConstraint"
	TypePrismaticLine  = "PrismaticYConstraint"
	TypePrismaticPoint = "PrismaticPosConstraint"
	TypeRevolute       = "RevoluteJoint"
	TypeCollision      = "CollisionConstraint"

	TypeGravity = "Gravity"
	TypeDamping = "EnergyDamping"
	TypeSpring  = "SpringJoint"
)

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func toPoint(v vec.Vec2) point { return point{X: v.X(), Y: v.Y()} }

func (p point) vec() vec.Vec2 { return vec.New(p.X, p.Y) }

func toPoints(vs []vec.Vec2) []point {
	out := make([]point, len(vs))
	for i, v := range vs {
		out[i] = toPoint(v)
	}
	return out
}

type geometryJSON struct {
	Type          string  `json:"type"`
	Radius        float64 `json:"radius,omitempty"`
	Width         float64 `json:"width,omitempty"`
	Height        float64 `json:"height,omitempty"`
	LocalVertices []point `json:"local_vertices,omitempty"`
	WorldVertices []point `json:"world_vertices,omitempty"`
}

type bodyJSON struct {
	Pos       point        `json:"pos"`
	PrevPos   point        `json:"prev_pos"`
	Vel       point        `json:"vel"`
	Force     point        `json:"force"`
	Mass      float64      `json:"mass"`
	Theta     float64      `json:"theta"`
	PrevTheta float64      `json:"prev_theta"`
	Omega     float64      `json:"omega"`
	Tau       float64      `json:"tau"`
	I         float64      `json:"I"`
	Geometry  geometryJSON `json:"geometry"`
}

type constraintJSON struct {
	Type   string   `json:"type"`
	Alpha  float64  `json:"alpha"`
	ID     *int     `json:"id,omitempty"`
	ID1    *int     `json:"id1,omitempty"`
	ID2    *int     `json:"id2,omitempty"`
	R      *point   `json:"r,omitempty"`
	R1     *point   `json:"r1,omitempty"`
	R2     *point   `json:"r2,omitempty"`
	L0     *float64 `json:"l0,omitempty"`
	Y0     *float64 `json:"y0,omitempty"`
	P0     *point   `json:"p0,omitempty"`
	Lambda *float64 `json:"lambda"`
	N      point    `json:"n"`
	C      float64  `json:"C"`
}

type forceJSON struct {
	Type string   `json:"type"`
	ID1  *int     `json:"id1,omitempty"`
	ID2  *int     `json:"id2,omitempty"`
	R1   *point   `json:"r1,omitempty"`
	R2   *point   `json:"r2,omitempty"`
	L0   *float64 `json:"l0,omitempty"`
}

// File is the on-disk layout of a scene.
type File struct {
	Bodies          []bodyJSON       `json:"bodies"`
	Constraints     []constraintJSON `json:"constraints"`
	ForceGenerators []forceJSON      `json:"force_generators"`
}

func ptr[T any](v T) *T { return &v }

// Encode serializes the world's bodies, constraints and force generators.
// The pointer spring is transient and not saved.
func Encode(w *world.World) ([]byte, error) {
	f := File{
		Bodies:          make([]bodyJSON, 0, len(w.Bodies)),
		Constraints:     make([]constraintJSON, 0, len(w.Constraints)),
		ForceGenerators: make([]forceJSON, 0, len(w.Forces)),
	}

	for i := range w.Bodies {
		b := &w.Bodies[i]
		f.Bodies = append(f.Bodies, bodyJSON{
			Pos:       toPoint(b.Pos),
			PrevPos:   toPoint(b.PrevPos),
			Vel:       toPoint(b.Vel),
			Force:     toPoint(b.Force),
			Mass:      b.Mass,
			Theta:     b.Theta,
			PrevTheta: b.PrevTheta,
			Omega:     b.Omega,
			Tau:       b.Torque,
			I:         b.Inertia,
			Geometry: geometryJSON{
				Type:          b.Geometry.Kind.String(),
				Radius:        b.Geometry.Radius,
				Width:         b.Geometry.Width,
				Height:        b.Geometry.Height,
				LocalVertices: toPoints(b.Geometry.Local),
				WorldVertices: toPoints(b.Vertices()),
			},
		})
	}

	for _, c := range w.Constraints {
		cj, err := encodeConstraint(c)
		if err != nil {
			return nil, err
		}
		f.Constraints = append(f.Constraints, cj)
	}

	for _, g := range w.Forces {
		fj, err := encodeForce(g)
		if err != nil {
			return nil, err
		}
		f.ForceGenerators = append(f.ForceGenerators, fj)
	}

	return json.MarshalIndent(f, "", "  ")
}

func encodeConstraint(c constraint.Constraint) (constraintJSON, error) {
	cj := constraintJSON{Alpha: c.Compliance, Lambda: c.Lambda, N: toPoint(c.Normal), C: c.C}
	switch c.Kind {
	case constraint.KindOffsetLink:
		cj.Type = TypeOffsetLink
		cj.ID1, cj.R1, cj.ID2, cj.R2 = ptr(c.Body1), ptr(toPoint(c.R1)), ptr(c.Body2), ptr(toPoint(c.R2))
		cj.L0 = ptr(c.RestLength)
	case constraint.KindPrismaticLine:
		cj.Type = TypePrismaticLine
		cj.ID, cj.R, cj.Y0 = ptr(c.Body1), ptr(toPoint(c.R1)), ptr(c.TargetY)
	case constraint.KindPrismaticPoint:
		cj.Type = TypePrismaticPoint
		cj.ID, cj.R, cj.P0 = ptr(c.Body1), ptr(toPoint(c.R1)), ptr(toPoint(c.Target))
	case constraint.KindRevolute:
		cj.Type = TypeRevolute
		cj.ID1, cj.R1, cj.ID2, cj.R2 = ptr(c.Body1), ptr(toPoint(c.R1)), ptr(c.Body2), ptr(toPoint(c.R2))
	case constraint.KindCollision:
		cj.Type = TypeCollision
		cj.ID1, cj.ID2 = ptr(c.Body1), ptr(c.Body2)
	default:
		return cj, fmt.Errorf("%w: constraint kind %v", ErrUnknownType, c.Kind)
	}
	return cj, nil
}

func encodeForce(g force.Generator) (forceJSON, error) {
	switch g.Kind {
	case force.KindGravity:
		return forceJSON{Type: TypeGravity}, nil
	case force.KindDamping:
		return forceJSON{Type: TypeDamping}, nil
	case force.KindSpring:
		return forceJSON{
			Type: TypeSpring,
			ID1:  ptr(g.Body1),
			R1:   ptr(toPoint(g.R1)),
			ID2:  ptr(g.Body2),
			R2:   ptr(toPoint(g.R2)),
			L0:   ptr(g.RestLength),
		}, nil
	}
	return forceJSON{}, fmt.Errorf("%w: generator kind %v", ErrUnknownType, g.Kind)
}

// Decode rebuilds a world from scene JSON. Any unknown discriminator or
// dangling body reference fails the whole load.
func Decode(data []byte) (*world.World, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}

	w := world.NewEmpty()
	for i, bj := range f.Bodies {
		b, err := decodeBody(bj)
		if err != nil {
			return nil, fmt.Errorf("scene: body %d: %w", i, err)
		}
		w.Bodies = append(w.Bodies, b)
	}

	for i, cj := range f.Constraints {
		c, err := decodeConstraint(cj, len(w.Bodies))
		if err != nil {
			return nil, fmt.Errorf("scene: constraint %d: %w", i, err)
		}
		w.Constraints = append(w.Constraints, c)
	}

	for i, fj := range f.ForceGenerators {
		g, err := decodeForce(fj, len(w.Bodies))
		if err != nil {
			return nil, fmt.Errorf("scene: force generator %d: %w", i, err)
		}
		w.Forces = append(w.Forces, g)
	}

	w.RecordLoaded()
	return w, nil
}

func decodeBody(bj bodyJSON) (body.RigidBody, error) {
	var g body.Geometry
	switch bj.Geometry.Type {
	case "disc":
		g = body.Disc(bj.Geometry.Radius)
	case "rect":
		g = body.Rect(bj.Geometry.Width, bj.Geometry.Height)
		if len(bj.Geometry.LocalVertices) == 4 {
			for i, p := range bj.Geometry.LocalVertices {
				g.Local[i] = p.vec()
			}
		}
	case "polygon":
		local := make([]vec.Vec2, len(bj.Geometry.LocalVertices))
		for i, p := range bj.Geometry.LocalVertices {
			local[i] = p.vec()
		}
		g = body.Polygon(local)
	default:
		return body.RigidBody{}, fmt.Errorf("%w: geometry %q", ErrUnknownType, bj.Geometry.Type)
	}

	b, err := body.New(g, bj.Mass, bj.Pos.vec(), bj.Theta)
	if err != nil {
		return body.RigidBody{}, err
	}
	b.PrevPos = bj.PrevPos.vec()
	b.Vel = bj.Vel.vec()
	b.Force = bj.Force.vec()
	b.PrevTheta = bj.PrevTheta
	b.Omega = bj.Omega
	b.Torque = bj.Tau
	if bj.I > 0 {
		b.Inertia = bj.I
	}
	return b, nil
}

func index(p *int, n int, field string) (int, error) {
	if p == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrBadReference, field)
	}
	if *p < 0 || *p >= n {
		return 0, fmt.Errorf("%w: %s=%d with %d bodies", ErrBadReference, field, *p, n)
	}
	return *p, nil
}

// pair resolves the two body references of a joint or spring.
func pair(p1, p2 *int, n int) (int, int, error) {
	id1, err := index(p1, n, "id1")
	if err != nil {
		return 0, 0, err
	}
	id2, err := index(p2, n, "id2")
	if err != nil {
		return 0, 0, err
	}
	if id1 == id2 {
		return 0, 0, fmt.Errorf("%w: %w", ErrBadReference, world.ErrSameBody)
	}
	return id1, id2, nil
}

func vecOr(p *point) vec.Vec2 {
	if p == nil {
		return vec.Zero
	}
	return p.vec()
}

func floatOr(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func decodeConstraint(cj constraintJSON, n int) (constraint.Constraint, error) {
	var c constraint.Constraint
	switch cj.Type {
	case TypeOffsetLink, TypeRevolute, TypeCollision:
		id1, id2, err := pair(cj.ID1, cj.ID2, n)
		if err != nil {
			return c, err
		}
		switch cj.Type {
		case TypeOffsetLink:
			c = constraint.OffsetLink(cj.Alpha, id1, vecOr(cj.R1), id2, vecOr(cj.R2), floatOr(cj.L0))
		case TypeRevolute:
			c = constraint.Revolute(cj.Alpha, id1, vecOr(cj.R1), id2, vecOr(cj.R2))
		default:
			c = constraint.Collision(cj.Alpha, id1, id2)
		}

	case TypePrismaticLine, TypePrismaticPoint:
		id, err := index(cj.ID, n, "id")
		if err != nil {
			return c, err
		}
		if cj.Type == TypePrismaticLine {
			c = constraint.PrismaticLine(cj.Alpha, id, vecOr(cj.R), floatOr(cj.Y0))
		} else {
			c = constraint.PrismaticPoint(cj.Alpha, id, vecOr(cj.R), vecOr(cj.P0))
		}

	default:
		return c, fmt.Errorf("%w: constraint %q", ErrUnknownType, cj.Type)
	}

	if cj.Alpha < 0 {
		return c, fmt.Errorf("%w: alpha %v", world.ErrCompliance, cj.Alpha)
	}
	c.Lambda = cj.Lambda
	c.Normal = cj.N.vec()
	c.C = cj.C
	return c, nil
}

func decodeForce(fj forceJSON, n int) (force.Generator, error) {
	switch fj.Type {
	case TypeGravity:
		return force.Gravity(), nil
	case TypeDamping:
		return force.Damping(), nil
	case TypeSpring:
		id1, id2, err := pair(fj.ID1, fj.ID2, n)
		if err != nil {
			return force.Generator{}, err
		}
		g := force.Spring(id1, vecOr(fj.R1), id2, vecOr(fj.R2))
		if fj.L0 != nil {
			g.RestLength = *fj.L0
		}
		return g, nil
	}
	return force.Generator{}, fmt.Errorf("%w: force generator %q", ErrUnknownType, fj.Type)
}

// Save writes the world to path as indented JSON.
func Save(path string, w *world.World) error {
	data, err := Encode(w)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a scene file written by Save.
func Load(path string) (*world.World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
