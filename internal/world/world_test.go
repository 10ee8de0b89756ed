package world_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/xpbd2d/internal/body"
	"github.com/san-kum/xpbd2d/internal/collision"
	"github.com/san-kum/xpbd2d/internal/constraint"
	"github.com/san-kum/xpbd2d/internal/force"
	"github.com/san-kum/xpbd2d/internal/vec"
	"github.com/san-kum/xpbd2d/internal/world"
)

var _ = Describe("World", func() {
	var (
		w *world.World
		p world.Params
	)

	BeforeEach(func() {
		w = world.New()
		p = world.DefaultParams()
	})

	Describe("construction", func() {
		It("starts with gravity and damping and nothing else", func() {
			Expect(w.Forces).To(HaveLen(2))
			Expect(w.Forces[0].Kind).To(Equal(force.KindGravity))
			Expect(w.Forces[1].Kind).To(Equal(force.KindDamping))
			Expect(w.IsDefault()).To(BeTrue())
		})

		It("rejects invalid bodies", func() {
			_, err := w.AddBody(body.Disc(0.5), 0, vec.Zero, 0)
			Expect(err).To(MatchError(body.ErrInvalidMass))

			_, err = w.AddBody(body.Rect(-1, 1), 1, vec.Zero, 0)
			Expect(err).To(MatchError(body.ErrInvalidGeometry))
			Expect(w.Bodies).To(BeEmpty())
		})

		It("rejects bad handles and compliance", func() {
			a, err := w.AddBody(body.Disc(0.5), 1, vec.Zero, 0)
			Expect(err).NotTo(HaveOccurred())

			_, err = w.AddRevolute(0, a, vec.Zero, 7, vec.Zero)
			Expect(err).To(MatchError(world.ErrBodyIndex))

			_, err = w.AddOffsetLink(0, a, vec.Zero, a, vec.New(1, 0))
			Expect(err).To(MatchError(world.ErrSameBody))

			_, err = w.AddPrismaticToPoint(-1, a, vec.Zero)
			Expect(err).To(MatchError(world.ErrCompliance))

			_, err = w.AddSpring(a, vec.Zero, 3, vec.Zero)
			Expect(err).To(MatchError(world.ErrBodyIndex))
			Expect(w.Constraints).To(BeEmpty())
		})

		It("derives rest values from the current poses", func() {
			a, _ := w.AddBody(body.Disc(0.2), 1, vec.New(0, 0), 0)
			b, _ := w.AddBody(body.Rect(1, 0.2), 1, vec.New(2, 1), math.Pi/2)

			_, err := w.AddOffsetLink(0, a, vec.Zero, b, vec.New(0.5, 0))
			Expect(err).NotTo(HaveOccurred())
			// (0.5,0) turned a quarter turn sits at (2,1.5)
			Expect(w.Constraints[0].RestLength).To(BeNumerically("~", 2.5, 1e-12))

			_, err = w.AddPrismaticToLine(0, b, vec.New(0.5, 0))
			Expect(err).NotTo(HaveOccurred())
			Expect(w.Constraints[1].TargetY).To(BeNumerically("~", 1.5, 1e-12))

			Expect(w.ConstraintResidualNorm()).To(BeNumerically("<", 1e-12))
		})
	})

	Describe("stepping", func() {
		It("follows the semi-implicit projectile path", func() {
			id, _ := w.AddBody(body.Disc(0.1), 1, vec.Zero, 0)
			w.Bodies[id].Vel = vec.New(2, 5)

			const dt = 1.0 / 60
			for i := 0; i < 60; i++ {
				Expect(w.Step(dt, p)).To(Succeed())
			}

			T := 1.0
			h := dt / float64(p.Substeps)
			g := p.Gravity
			b := w.Bodies[id]

			Expect(b.Pos.X()).To(BeNumerically("~", 2*T, 1e-9))
			// exact for symplectic Euler: v0·T − ½g·T·(T + h)
			Expect(b.Pos.Y()).To(BeNumerically("~", 5*T-0.5*g*T*(T+h), 1e-9))
			// and within one substep's drift of the closed form
			Expect(b.Pos.Y()).To(BeNumerically("~", 5*T-0.5*g*T*T, g*h*T))
			Expect(b.Vel.Y()).To(BeNumerically("~", 5-g*T, 1e-9))
		})

		It("pulls a violated offset link back to its rest length", func() {
			a, _ := w.AddBody(body.Disc(0.2), 1, vec.New(0, 0), 0)
			b, _ := w.AddBody(body.Disc(0.2), 1, vec.New(1, 0), 0)
			_, err := w.AddOffsetLink(0, a, vec.Zero, b, vec.Zero)
			Expect(err).NotTo(HaveOccurred())

			w.Bodies[b].Pos = vec.New(1.3, 0.2)
			initial := w.ConstraintResidualNorm()
			Expect(initial).To(BeNumerically(">", 0.5))

			for i := 0; i < 120; i++ {
				Expect(w.Step(1.0/60, p)).To(Succeed())
				Expect(w.ConstraintResidualNorm()).To(BeNumerically("<=", initial))
			}
			Expect(w.ConstraintResidualNorm()).To(BeNumerically("<", 1e-3))
		})

		It("brings revolute anchors together", func() {
			p.Gravity = 0
			a, _ := w.AddBody(body.Rect(1, 0.2), 1, vec.New(0, 0), 0)
			b, _ := w.AddBody(body.Rect(1, 0.2), 1, vec.New(1.04, 0.03), 0.1)
			_, err := w.AddRevolute(0, a, vec.New(0.5, 0), b, vec.New(-0.5, 0))
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 50; i++ {
				Expect(w.Step(1.0/60, p)).To(Succeed())
			}

			p1 := w.Bodies[a].LocalToWorld(vec.New(0.5, 0))
			p2 := w.Bodies[b].LocalToWorld(vec.New(-0.5, 0))
			Expect(vec.Distance(p1, p2)).To(BeNumerically("<", 1e-4))
		})

		It("never gains energy under gravity and damping", func() {
			p.Damping = 0.5
			d, _ := w.AddBody(body.Disc(0.3), 2, vec.New(0, 4), 0)
			r, _ := w.AddBody(body.Rect(0.5, 0.2), 1, vec.New(2, 1), 0.4)
			w.Bodies[d].Vel = vec.New(3, 2)
			w.Bodies[d].Omega = 4
			w.Bodies[r].Omega = -2

			prev := w.TotalEnergy(p)
			for i := 0; i < 200; i++ {
				Expect(w.Step(1.0/60, p)).To(Succeed())
				e := w.TotalEnergy(p)
				Expect(e).To(BeNumerically("<=", prev+1e-9))
				prev = e
			}
		})

		It("refuses parameters it cannot run and leaves the world untouched", func() {
			id, _ := w.AddBody(body.Disc(0.1), 1, vec.New(0, 1), 0)

			bad := p
			bad.Substeps = 0
			Expect(w.Step(1.0/60, bad)).To(MatchError(world.ErrInvalidParams))
			Expect(w.Step(0, p)).To(MatchError(world.ErrInvalidParams))
			Expect(w.Bodies[id].Pos).To(Equal(vec.New(0, 1)))
		})

		It("keeps a body pinned by a prismatic point hanging under gravity", func() {
			id, _ := w.AddBody(body.Rect(0.1, 1), 1, vec.New(0, 0), 0)
			_, err := w.AddPrismaticToPoint(0, id, vec.New(0, 0.5))
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 120; i++ {
				Expect(w.Step(1.0/60, p)).To(Succeed())
			}
			anchor := w.Bodies[id].LocalToWorld(vec.New(0, 0.5))
			Expect(vec.Distance(anchor, vec.New(0, 0.5))).To(BeNumerically("<", 1e-3))
			Expect(w.IsFinite()).To(BeTrue())
		})

		It("stops a falling box on a pinned floor", func() {
			floor, _ := w.AddBody(body.Rect(6, 0.5), 10, vec.New(0, 0), 0)
			_, _ = w.AddPrismaticToPoint(0, floor, vec.New(-2.5, 0))
			_, _ = w.AddPrismaticToPoint(0, floor, vec.New(2.5, 0))
			box, _ := w.AddBody(body.Rect(0.5, 0.5), 1, vec.New(0, 1.5), 0)
			n, err := w.AddCollisionPairs(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))

			for i := 0; i < 180; i++ {
				Expect(w.Step(1.0/60, p)).To(Succeed())
			}
			// resting on the top face at y = 0.25 + 0.25
			Expect(w.Bodies[box].Pos.Y()).To(BeNumerically("~", 0.5, 0.05))
		})
	})

	Describe("contacts", func() {
		pinnedFloor := func(theta float64) int {
			floor, _ := w.AddBody(body.Rect(6, 0.5), 10, vec.New(0, 0), theta)
			_, _ = w.AddPrismaticToPoint(0, floor, vec.New(-2.5, 0))
			_, _ = w.AddPrismaticToPoint(0, floor, vec.New(2.5, 0))
			return floor
		}

		It("keeps a disc resting on a slightly tilted floor", func() {
			pinnedFloor(1e-3)
			disc, _ := w.AddBody(body.Disc(0.25), 1, vec.New(0.3, 0.5), 0)
			_, err := w.AddCollisionPairs(0)
			Expect(err).NotTo(HaveOccurred())

			p.Pipeline = collision.PipelineGJK
			for i := 0; i < 300; i++ {
				Expect(w.Step(1.0/60, p)).To(Succeed())
				Expect(w.Bodies[disc].Pos.Y()).To(BeNumerically("~", 0.5, 0.01), "step %d", i)
			}
		})

		DescribeTable("rests a stacked body on a box",
			func(top body.Geometry, pipeline collision.Pipeline) {
				pinnedFloor(0)
				lower, _ := w.AddBody(body.Rect(1, 0.5), 1, vec.New(0, 0.5), 0)
				upper, _ := w.AddBody(top, 1, vec.New(0, 1), 0)
				n, err := w.AddCollisionPairs(0)
				Expect(err).NotTo(HaveOccurred())
				Expect(n).To(Equal(3))

				p.Pipeline = pipeline
				for i := 0; i < 240; i++ {
					Expect(w.Step(1.0/60, p)).To(Succeed())
				}
				// floor top at 0.25, lower box 0.5 tall, top body 0.5 tall
				Expect(w.Bodies[lower].Pos.Y()).To(BeNumerically("~", 0.5, 0.05))
				Expect(w.Bodies[upper].Pos.Y()).To(BeNumerically("~", 1, 0.05))
				Expect(math.Abs(w.Bodies[upper].Pos.X())).To(BeNumerically("<", 0.25))
			},
			Entry("disc on box, gjk", body.Disc(0.25), collision.PipelineGJK),
			Entry("disc on box, sat", body.Disc(0.25), collision.PipelineSAT),
			Entry("box on box, gjk", body.Rect(0.5, 0.5), collision.PipelineGJK),
			Entry("box on box, sat", body.Rect(0.5, 0.5), collision.PipelineSAT),
		)
	})

	Describe("history", func() {
		It("removes entities in reverse order of creation", func() {
			a, _ := w.AddBody(body.Disc(0.2), 1, vec.Zero, 0)
			b, _ := w.AddBody(body.Disc(0.2), 1, vec.New(1, 0), 0)
			_, _ = w.AddRevolute(0, a, vec.New(0.5, 0), b, vec.New(-0.5, 0))
			_, _ = w.AddSpring(a, vec.Zero, b, vec.Zero)

			kind, err := w.RemoveMostRecent()
			Expect(err).NotTo(HaveOccurred())
			Expect(kind).To(Equal(world.EntityForce))
			Expect(w.Forces).To(HaveLen(2))

			kind, _ = w.RemoveMostRecent()
			Expect(kind).To(Equal(world.EntityConstraint))
			Expect(w.Constraints).To(BeEmpty())

			kind, _ = w.RemoveMostRecent()
			Expect(kind).To(Equal(world.EntityBody))
			Expect(w.Bodies).To(HaveLen(1))

			_, _ = w.RemoveMostRecent()
			Expect(w.IsDefault()).To(BeTrue())

			_, err = w.RemoveMostRecent()
			Expect(err).To(MatchError(world.ErrNothingToRemove))
		})

		It("refuses to remove a body a constraint still points at", func() {
			a, _ := w.AddBody(body.Disc(0.2), 1, vec.Zero, 0)
			b, _ := w.AddBody(body.Disc(0.2), 1, vec.New(1, 0), 0)
			w.Constraints = append(w.Constraints, constraint.Collision(0, a, b))

			_, err := w.RemoveMostRecent()
			Expect(err).To(MatchError(world.ErrBodyInUse))
			Expect(w.Bodies).To(HaveLen(2))

			w.Constraints = w.Constraints[:0]
			kind, err := w.RemoveMostRecent()
			Expect(err).NotTo(HaveOccurred())
			Expect(kind).To(Equal(world.EntityBody))
		})

		It("releases the pointer when its body is removed", func() {
			_, _ = w.AddBody(body.Disc(0.5), 1, vec.New(0, 0), 0)
			Expect(w.Grab(vec.New(0.1, 0))).To(BeTrue())

			_, err := w.RemoveMostRecent()
			Expect(err).NotTo(HaveOccurred())
			_, _, ok := w.Pointer()
			Expect(ok).To(BeFalse())
		})

		It("resets to a fresh world", func() {
			_, _ = w.AddBody(body.Disc(0.2), 1, vec.Zero, 0)
			w.Reset()
			Expect(w.IsDefault()).To(BeTrue())
			Expect(w.Forces).To(HaveLen(2))
		})

		It("clones without sharing state", func() {
			id, _ := w.AddBody(body.Rect(1, 1), 1, vec.Zero, 0)
			_, _ = w.AddPrismaticToLine(0, id, vec.Zero)

			c := w.Clone()
			Expect(c.Step(1.0/60, p)).To(Succeed())
			c.Bodies[id].Geometry.Local[0] = vec.New(9, 9)

			Expect(w.Bodies[id].Pos).To(Equal(vec.Zero))
			Expect(w.Bodies[id].Geometry.Local[0]).To(Equal(vec.New(-0.5, -0.5)))
			Expect(w.Constraints[0].Lambda).To(BeNil())
			Expect(c.Constraints[0].Kind).To(Equal(constraint.KindPrismaticLine))
		})
	})

	Describe("pointer", func() {
		var top int

		BeforeEach(func() {
			_, _ = w.AddBody(body.Rect(2, 2), 1, vec.Zero, 0)
			top, _ = w.AddBody(body.Disc(0.5), 1, vec.New(0.5, 0), 0)
		})

		It("finds the topmost body first", func() {
			Expect(w.BodiesAt(vec.New(0.6, 0), false)).To(Equal([]int{top}))
			Expect(w.BodiesAt(vec.New(0.6, 0), true)).To(Equal([]int{top, 0}))
			Expect(w.BodiesAt(vec.New(5, 5), true)).To(BeEmpty())
		})

		It("drags a grabbed body toward the target", func() {
			p.Gravity = 0
			Expect(w.Grab(vec.New(0.6, 0))).To(BeTrue())
			w.MovePointer(vec.New(0.6, 3))

			id, target, ok := w.Pointer()
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(top))
			Expect(target).To(Equal(vec.New(0.6, 3)))

			before := w.TotalEnergy(p)
			Expect(w.Step(1.0/60, p)).To(Succeed())
			Expect(w.Bodies[top].Vel.Y()).To(BeNumerically(">", 0))
			Expect(w.Bodies[0].Vel).To(Equal(vec.Zero))
			Expect(before).To(BeNumerically(">", 0))

			w.Release()
			_, _, ok = w.Pointer()
			Expect(ok).To(BeFalse())
		})

		It("misses empty space", func() {
			Expect(w.Grab(vec.New(9, 9))).To(BeFalse())
		})
	})
})
