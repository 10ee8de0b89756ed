package scene

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/vec"
	"github.com/san-kum/xpbd2d/internal/world"
)

// Builder populates an empty world.
type Builder func(w *world.World) error

type Registry struct {
	builders     map[string]Builder
	descriptions map[string]string
}

func NewRegistry() *Registry {
	r := &Registry{
		builders:     make(map[string]Builder),
		descriptions: make(map[string]string),
	}

	r.Register("ragdoll", "jointed figure on a floor", Ragdoll)
	r.Register("seesaw", "plank on a pivot with two weights", Seesaw)
	r.Register("pendulum", "triple pendulum from a fixed pin", Pendulum)
	r.Register("soft-chain", "compliant offset-link chain", SoftChain)
	r.Register("pile", "mixed discs and boxes dropped on a floor", Pile)
	r.Register("springs", "boxes hung from springs", Springs)

	return r
}

func (r *Registry) Register(name, description string, b Builder) {
	r.builders[name] = b
	r.descriptions[name] = description
}

// Build returns a fresh default world populated by the named scene.
func (r *Registry) Build(name string) (*world.World, error) {
	b, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	w := world.New()
	if err := b(w); err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	return w, nil
}

func (r *Registry) Describe(name string) string {
	return r.descriptions[name]
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builder collects the first error so scene code reads as a straight list
// of additions.
type builder struct {
	w   *world.World
	err error
}

func (b *builder) body(g body.Geometry, mass float64, pos vec.Vec2, theta float64) int {
	if b.err != nil {
		return -1
	}
	id, err := b.w.AddBody(g, mass, pos, theta)
	b.err = err
	return id
}

func (b *builder) do(_ int, err error) {
	if b.err == nil {
		b.err = err
	}
}

// floor adds a wide static-looking slab held in place by two pins.
func (b *builder) floor(y float64) int {
	id := b.body(body.Rect(12, 0.5), 50, vec.New(0, y), 0)
	if b.err != nil {
		return id
	}
	b.do(b.w.AddPrismaticToPoint(0, id, vec.New(-5.5, 0)))
	b.do(b.w.AddPrismaticToPoint(0, id, vec.New(5.5, 0)))
	return id
}

// Ragdoll is a head, torso, two legs and two arms joined by revolutes at
// the hips and shoulders and by two offset links at the neck.
func Ragdoll(w *world.World) error {
	const (
		headR  = 0.2
		torsoW = 0.4
		torsoH = 0.7
		legW   = 0.15
		legH   = 0.8
		armW   = 0.6
		armH   = 0.12
		ol     = 0.03
		neck   = 0.08
	)
	b := &builder{w: w}
	floor := b.floor(-0.25)

	legY := legH / 2
	torsoY := legH + torsoH/2 - ol
	headY := torsoY + torsoH/2 + neck + headR
	armY := torsoY + torsoH/2 - armH/2

	torso := b.body(body.Rect(torsoW, torsoH), 3, vec.New(0, torsoY), 0)
	head := b.body(body.Disc(headR), 1, vec.New(0, headY), 0)
	legL := b.body(body.Rect(legW, legH), 1, vec.New(-torsoW/2+legW/2, legY), 0)
	legR := b.body(body.Rect(legW, legH), 1, vec.New(torsoW/2-legW/2, legY), 0)
	armL := b.body(body.Rect(armW, armH), 0.5, vec.New(-torsoW/2-armW/2+ol, armY), 0)
	armR := b.body(body.Rect(armW, armH), 0.5, vec.New(torsoW/2+armW/2-ol, armY), 0)
	if b.err != nil {
		return b.err
	}

	hipL := vec.New(-torsoW/2+legW/2, -torsoH/2+ol)
	hipR := vec.New(torsoW/2-legW/2, -torsoH/2+ol)
	b.do(w.AddRevolute(0, torso, hipL, legL, vec.New(0, legH/2)))
	b.do(w.AddRevolute(0, torso, hipR, legR, vec.New(0, legH/2)))
	b.do(w.AddRevolute(0, torso, vec.New(-torsoW/2+ol, torsoH/2-armH/2), armL, vec.New(armW/2, 0)))
	b.do(w.AddRevolute(0, torso, vec.New(torsoW/2-ol, torsoH/2-armH/2), armR, vec.New(-armW/2, 0)))

	b.do(w.AddOffsetLink(0, torso, vec.New(-torsoW/4, torsoH/2), head, vec.New(-headR/2, 0)))
	b.do(w.AddOffsetLink(0, torso, vec.New(torsoW/4, torsoH/2), head, vec.New(headR/2, 0)))
	// Jointed limbs overlap the torso, so only the floor collides.
	for _, id := range []int{torso, head, legL, legR, armL, armR} {
		b.do(w.AddCollision(0, floor, id))
	}
	return b.err
}

func Seesaw(w *world.World) error {
	b := &builder{w: w}
	floor := b.floor(-0.25)
	pivot := b.body(body.Polygon([]vec.Vec2{
		vec.New(-0.3, -0.25), vec.New(0.3, -0.25), vec.New(0, 0.25),
	}), 5, vec.New(0, 0.25), 0)
	plank := b.body(body.Rect(4, 0.1), 2, vec.New(0, 0.55), 0)
	b.body(body.Rect(0.4, 0.4), 1, vec.New(-1.6, 0.9), 0)
	b.body(body.Disc(0.25), 3, vec.New(1.6, 3), 0)
	if b.err != nil {
		return b.err
	}
	b.do(w.AddPrismaticToPoint(0, pivot, vec.New(-0.3, -0.25)))
	b.do(w.AddPrismaticToLine(0, pivot, vec.New(0.3, -0.25)))
	b.do(w.AddRevolute(0, pivot, vec.New(0, 0.25), plank, vec.New(0, -0.05)))
	if b.err != nil {
		return b.err
	}
	for i := range w.Bodies {
		if i == floor || i == pivot {
			continue
		}
		for j := i + 1; j < len(w.Bodies); j++ {
			if j == pivot {
				continue
			}
			b.do(w.AddCollision(0, i, j))
		}
		b.do(w.AddCollision(0, floor, i))
	}
	return b.err
}

func Pendulum(w *world.World) error {
	const (
		links = 3
		l     = 0.8
	)
	b := &builder{w: w}
	prev := -1
	for i := 0; i < links; i++ {
		theta := math.Pi / 2
		pos := vec.New(l/2+float64(i)*l, 2)
		id := b.body(body.Rect(0.1, l), 1, pos, theta)
		if b.err != nil {
			return b.err
		}
		// Rotated a quarter turn, local +y points at -x in the world.
		left, right := vec.New(0, l/2), vec.New(0, -l/2)
		if prev < 0 {
			b.do(w.AddPrismaticToPoint(0, id, left))
		} else {
			b.do(w.AddRevolute(0, prev, right, id, left))
		}
		prev = id
	}
	return b.err
}

func SoftChain(w *world.World) error {
	const links = 8
	b := &builder{w: w}
	prev := -1
	for i := 0; i < links; i++ {
		id := b.body(body.Disc(0.12), 0.3, vec.New(float64(i)*0.35, 3), 0)
		if b.err != nil {
			return b.err
		}
		if prev < 0 {
			b.do(w.AddPrismaticToPoint(0, id, vec.Zero))
		} else {
			b.do(w.AddOffsetLink(1e-3, prev, vec.Zero, id, vec.Zero))
		}
		prev = id
	}
	return b.err
}

func Pile(w *world.World) error {
	b := &builder{w: w}
	b.floor(-0.25)
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			x := -1.5 + float64(col) + 0.1*float64(row%2)
			y := 1 + 0.8*float64(row)
			if (row+col)%2 == 0 {
				b.body(body.Disc(0.25), 1, vec.New(x, y), 0)
			} else {
				b.body(body.Rect(0.5, 0.4), 1, vec.New(x, y), 0.2*float64(col))
			}
		}
	}
	if b.err != nil {
		return b.err
	}
	_, err := w.AddCollisionPairs(0)
	return err
}

func Springs(w *world.World) error {
	b := &builder{w: w}
	ceiling := b.body(body.Rect(6, 0.2), 10, vec.New(0, 4), 0)
	if b.err != nil {
		return b.err
	}
	b.do(w.AddPrismaticToPoint(0, ceiling, vec.New(-2.5, 0)))
	b.do(w.AddPrismaticToPoint(0, ceiling, vec.New(2.5, 0)))
	for i := 0; i < 3; i++ {
		x := -1.5 + 1.5*float64(i)
		box := b.body(body.Rect(0.4, 0.4), 0.5+0.5*float64(i), vec.New(x, 2.5), 0)
		if b.err != nil {
			return b.err
		}
		b.do(w.AddSpring(ceiling, vec.New(x-0.1, -0.1), box, vec.New(-0.1, 0.2)))
		b.do(w.AddSpring(ceiling, vec.New(x+0.1, -0.1), box, vec.New(0.1, 0.2)))
	}
	return b.err
}
