package world

import (
	"fmt"
	"math"

	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/constraint"
	"github.com/san-kum/xpbd2d/internal/force"
	"github.com/san-kum/xpbd2d/internal/vec"
)

// EntityKind tags an entry in the recently-added history.
type EntityKind uint8

const (
	EntityBody EntityKind = iota
	EntityConstraint
	EntityForce
)

type entity struct {
	kind  EntityKind
	index int
}

// World owns every body, constraint and force generator. Handles returned by
// the Add methods are indices into those slices and stay valid until the
// entity is removed.
type World struct {
	Bodies      []body.RigidBody
	Constraints []constraint.Constraint
	Forces      []force.Generator

	pointer       force.Generator
	pointerActive bool

	recent []entity
}

// New returns a world with the default gravity and damping generators.
func New() *World {
	w := NewEmpty()
	w.Forces = append(w.Forces, force.Gravity(), force.Damping())
	return w
}

// NewEmpty returns a world with no generators at all.
func NewEmpty() *World {
	return &World{}
}

// Reset clears the world back to the state New returns.
func (w *World) Reset() {
	*w = *New()
}

// IsDefault reports whether the world holds no bodies and no constraints.
func (w *World) IsDefault() bool {
	return len(w.Bodies) == 0 && len(w.Constraints) == 0
}

// Clone deep-copies the world so it can be stepped independently.
func (w *World) Clone() *World {
	c := &World{
		Bodies:        make([]body.RigidBody, len(w.Bodies)),
		Constraints:   make([]constraint.Constraint, len(w.Constraints)),
		Forces:        append([]force.Generator(nil), w.Forces...),
		pointer:       w.pointer,
		pointerActive: w.pointerActive,
		recent:        append([]entity(nil), w.recent...),
	}
	for i, b := range w.Bodies {
		c.Bodies[i] = b.Clone()
	}
	for i, k := range w.Constraints {
		c.Constraints[i] = k.Clone()
	}
	return c
}

func (w *World) checkBody(id int) error {
	if id < 0 || id >= len(w.Bodies) {
		return fmt.Errorf("%w: %d (have %d)", ErrBodyIndex, id, len(w.Bodies))
	}
	return nil
}

func (w *World) checkPair(id1, id2 int) error {
	if err := w.checkBody(id1); err != nil {
		return err
	}
	if err := w.checkBody(id2); err != nil {
		return err
	}
	if id1 == id2 {
		return fmt.Errorf("%w: %d", ErrSameBody, id1)
	}
	return nil
}

func checkCompliance(alpha float64) error {
	if alpha < 0 || math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return fmt.Errorf("%w: got %v", ErrCompliance, alpha)
	}
	return nil
}

// AddBody validates and appends a body at rest.
func (w *World) AddBody(geom body.Geometry, mass float64, pos vec.Vec2, theta float64) (int, error) {
	b, err := body.New(geom, mass, pos, theta)
	if err != nil {
		return -1, fmt.Errorf("add body: %w", err)
	}
	return w.InsertBody(b), nil
}

// InsertBody appends an already built body and records it as most recent.
func (w *World) InsertBody(b body.RigidBody) int {
	w.Bodies = append(w.Bodies, b)
	id := len(w.Bodies) - 1
	w.recent = append(w.recent, entity{kind: EntityBody, index: id})
	return id
}

// InsertConstraint appends a constraint after checking its body handles.
func (w *World) InsertConstraint(c constraint.Constraint) (int, error) {
	for _, id := range c.Bodies() {
		if err := w.checkBody(id); err != nil {
			return -1, fmt.Errorf("add %s: %w", c.Kind, err)
		}
	}
	if err := checkCompliance(c.Compliance); err != nil {
		return -1, fmt.Errorf("add %s: %w", c.Kind, err)
	}
	w.Constraints = append(w.Constraints, c)
	id := len(w.Constraints) - 1
	w.recent = append(w.recent, entity{kind: EntityConstraint, index: id})
	return id, nil
}

// InsertForce appends a generator after checking any body handles.
func (w *World) InsertForce(g force.Generator) (int, error) {
	if g.Kind == force.KindSpring {
		if err := w.checkPair(g.Body1, g.Body2); err != nil {
			return -1, fmt.Errorf("add spring: %w", err)
		}
	}
	w.Forces = append(w.Forces, g)
	id := len(w.Forces) - 1
	w.recent = append(w.recent, entity{kind: EntityForce, index: id})
	return id, nil
}

// AddOffsetLink keeps the distance between two anchors at its current value.
func (w *World) AddOffsetLink(alpha float64, id1 int, r1 vec.Vec2, id2 int, r2 vec.Vec2) (int, error) {
	if err := w.checkPair(id1, id2); err != nil {
		return -1, fmt.Errorf("add offset link: %w", err)
	}
	l0 := vec.Distance(w.Bodies[id1].LocalToWorld(r1), w.Bodies[id2].LocalToWorld(r2))
	return w.InsertConstraint(constraint.OffsetLink(alpha, id1, r1, id2, r2, l0))
}

// AddPrismaticToLine lets an anchor slide along the horizontal line at its
// current height.
func (w *World) AddPrismaticToLine(alpha float64, id int, r vec.Vec2) (int, error) {
	if err := w.checkBody(id); err != nil {
		return -1, fmt.Errorf("add prismatic line: %w", err)
	}
	y0 := w.Bodies[id].LocalToWorld(r).Y()
	return w.InsertConstraint(constraint.PrismaticLine(alpha, id, r, y0))
}

// AddPrismaticToPoint pins an anchor to its current world position.
func (w *World) AddPrismaticToPoint(alpha float64, id int, r vec.Vec2) (int, error) {
	if err := w.checkBody(id); err != nil {
		return -1, fmt.Errorf("add prismatic point: %w", err)
	}
	p0 := w.Bodies[id].LocalToWorld(r)
	return w.InsertConstraint(constraint.PrismaticPoint(alpha, id, r, p0))
}

// AddRevolute joins two anchors into a hinge.
func (w *World) AddRevolute(alpha float64, id1 int, r1 vec.Vec2, id2 int, r2 vec.Vec2) (int, error) {
	if err := w.checkPair(id1, id2); err != nil {
		return -1, fmt.Errorf("add revolute: %w", err)
	}
	return w.InsertConstraint(constraint.Revolute(alpha, id1, r1, id2, r2))
}

// AddCollision makes two bodies push each other apart when they overlap.
func (w *World) AddCollision(alpha float64, id1, id2 int) (int, error) {
	if err := w.checkPair(id1, id2); err != nil {
		return -1, fmt.Errorf("add collision: %w", err)
	}
	return w.InsertConstraint(constraint.Collision(alpha, id1, id2))
}

// AddCollisionPairs adds a collision constraint for every body pair that
// does not have one yet. Pairs are enumerated exhaustively.
func (w *World) AddCollisionPairs(alpha float64) (int, error) {
	have := make(map[[2]int]bool)
	for _, c := range w.Constraints {
		if c.Kind == constraint.KindCollision {
			have[[2]int{min(c.Body1, c.Body2), max(c.Body1, c.Body2)}] = true
		}
	}

	added := 0
	for i := range w.Bodies {
		for j := i + 1; j < len(w.Bodies); j++ {
			if have[[2]int{i, j}] {
				continue
			}
			if _, err := w.AddCollision(alpha, i, j); err != nil {
				return added, err
			}
			added++
		}
	}
	return added, nil
}

// AddSpring hangs a Hookean spring between two anchors.
func (w *World) AddSpring(id1 int, r1 vec.Vec2, id2 int, r2 vec.Vec2) (int, error) {
	return w.InsertForce(force.Spring(id1, r1, id2, r2))
}

// RemoveMostRecent undoes the latest Add. Entities are removed strictly in
// reverse order of creation, so the handles of everything older stay valid.
func (w *World) RemoveMostRecent() (EntityKind, error) {
	if len(w.recent) == 0 {
		return 0, ErrNothingToRemove
	}
	e := w.recent[len(w.recent)-1]
	if e.kind == EntityBody {
		if err := w.checkUnreferenced(e.index); err != nil {
			return 0, err
		}
	}
	w.recent = w.recent[:len(w.recent)-1]

	switch e.kind {
	case EntityBody:
		w.Bodies = removeAt(w.Bodies, e.index)
		if w.pointerActive && w.pointer.References(e.index) {
			w.Release()
		}
	case EntityConstraint:
		w.Constraints = removeAt(w.Constraints, e.index)
	case EntityForce:
		w.Forces = removeAt(w.Forces, e.index)
	}
	return e.kind, nil
}

// checkUnreferenced fails when a constraint or spring, usually one appended
// to the exported slices directly, still acts on body id.
func (w *World) checkUnreferenced(id int) error {
	for i := range w.Constraints {
		if w.Constraints[i].References(id) {
			return fmt.Errorf("%w: body %d by constraint %d", ErrBodyInUse, id, i)
		}
	}
	for i := range w.Forces {
		if w.Forces[i].References(id) {
			return fmt.Errorf("%w: body %d by force %d", ErrBodyInUse, id, i)
		}
	}
	return nil
}

func removeAt[T any](s []T, i int) []T {
	if i < 0 || i >= len(s) {
		return s
	}
	return append(s[:i], s[i+1:]...)
}

// RecordLoaded rebuilds the history after a bulk load: bodies first, then
// force generators, then constraints, matching the order they can be
// removed in safely.
func (w *World) RecordLoaded() {
	w.recent = w.recent[:0]
	for i := range w.Bodies {
		w.recent = append(w.recent, entity{kind: EntityBody, index: i})
	}
	for i := range w.Forces {
		if w.Forces[i].Kind == force.KindSpring {
			w.recent = append(w.recent, entity{kind: EntityForce, index: i})
		}
	}
	for i := range w.Constraints {
		w.recent = append(w.recent, entity{kind: EntityConstraint, index: i})
	}
}
