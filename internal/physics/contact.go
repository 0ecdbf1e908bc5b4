package physics

import (
	"fmt"
	"math"

	"github.com/ByteArena/box2d"

	"github.com/Versifine/gravitation/internal/geom"
)

type Phase int

const (
	PhaseBegin Phase = iota
	PhasePersist
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseBegin:
		return "begin"
	case PhasePersist:
		return "persist"
	case PhaseEnd:
		return "end"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

type Contact struct {
	Phase  Phase
	Point  geom.Vec2
	Normal geom.Vec2
	// RelativeVelocity is B's velocity relative to A at Point.
	RelativeVelocity geom.Vec2
	A                *Body
	B                *Body
}

// NormalSpeed is the closing speed along the contact normal.
func (c Contact) NormalSpeed() float64 {
	return math.Abs(c.RelativeVelocity.Dot(c.Normal))
}

// Other returns the body in the contact that is not b.
func (c Contact) Other(b *Body) *Body {
	if c.A == b {
		return c.B
	}
	return c.A
}

type ContactHandler func(Contact)

type contactListener struct {
	world *World
}

func (l *contactListener) BeginContact(contact box2d.B2ContactInterface) {
	l.forward(PhaseBegin, contact)
}

func (l *contactListener) EndContact(contact box2d.B2ContactInterface) {
	l.forward(PhaseEnd, contact)
}

// PreSolve runs on every step while two fixtures keep touching; it is the
// engine's closest equivalent of a persisting contact.
func (l *contactListener) PreSolve(contact box2d.B2ContactInterface, oldManifold box2d.B2Manifold) {
	l.forward(PhasePersist, contact)
}

func (l *contactListener) PostSolve(contact box2d.B2ContactInterface, impulse *box2d.B2ContactImpulse) {
}

func (l *contactListener) forward(phase Phase, contact box2d.B2ContactInterface) {
	if l.world.handler == nil {
		return
	}
	a := l.world.lookup(contact.GetFixtureA().GetBody())
	b := l.world.lookup(contact.GetFixtureB().GetBody())
	if a == nil || b == nil {
		return
	}

	c := Contact{Phase: phase, A: a, B: b}
	wm := box2d.MakeB2WorldManifold()
	contact.GetWorldManifold(&wm)
	c.Normal = fromB2(wm.Normal)

	if n := contact.GetManifold().PointCount; n > 0 {
		sum := geom.V(0, 0)
		for i := 0; i < n; i++ {
			sum = sum.Add(fromB2(wm.Points[i]))
		}
		c.Point = sum.Mul(1 / float64(n))
	} else {
		c.Point = a.Position().Add(b.Position()).Mul(0.5)
	}
	c.RelativeVelocity = b.VelocityAt(c.Point).Sub(a.VelocityAt(c.Point))

	l.world.handler(c)
}
