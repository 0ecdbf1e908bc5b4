package actor

import (
	"math"

	"github.com/Versifine/gravitation/internal/geom"
	"github.com/Versifine/gravitation/internal/physics"
)

type bodyActor struct {
	base
	world *physics.World
	body  *physics.Body
	mat   physics.Material
	fixed bool
}

func (a *bodyActor) Body() *physics.Body { return a.body }

func (a *bodyActor) Position() geom.Vec2 {
	if !a.body.Alive() {
		return geom.Vec2{}
	}
	return a.body.Position()
}

func (a *bodyActor) Destroy() error {
	if !a.body.Alive() {
		return nil
	}
	return a.world.DestroyBody(a.body)
}

func (a *bodyActor) describe(kind Kind) Descriptor {
	d := Descriptor{
		ID:            a.id,
		Kind:          kind,
		Density:       a.mat.Density,
		Friction:      a.mat.Friction,
		Restitution:   a.mat.Restitution,
		FixedRotation: a.fixed,
	}
	if a.body.Alive() {
		p, v := a.body.Position(), a.body.LinearVelocity()
		d.Position = [2]float64{p.X(), p.Y()}
		d.Velocity = [2]float64{v.X(), v.Y()}
		d.Angle = a.body.Angle()
		d.Static = a.body.Static()
	}
	return d
}

type Ball struct {
	bodyActor
	Radius float64
}

func (b *Ball) Kind() Kind { return KindBall }

func (b *Ball) Draw(c Canvas) {
	c.Circle(ColorBall, b.Position(), b.Radius)
}

func (b *Ball) Descriptor() Descriptor {
	d := b.describe(KindBall)
	d.Radius = b.Radius
	return d
}

type Box struct {
	bodyActor
	kind       Kind
	HalfWidth  float64
	HalfHeight float64
}

func (b *Box) Kind() Kind { return b.kind }

func (b *Box) Corners() []geom.Vec2 {
	center, angle := b.Position(), 0.0
	if b.body.Alive() {
		angle = b.body.Angle()
	}
	local := []geom.Vec2{
		geom.V(-b.HalfWidth, -b.HalfHeight),
		geom.V(b.HalfWidth, -b.HalfHeight),
		geom.V(b.HalfWidth, b.HalfHeight),
		geom.V(-b.HalfWidth, b.HalfHeight),
	}
	out := make([]geom.Vec2, len(local))
	for i, p := range local {
		out[i] = geom.Rotate(p, angle).Add(center)
	}
	return out
}

func (b *Box) Draw(c Canvas) {
	switch b.kind {
	case KindHut:
		c.Sprite("hut", b.Position(), geom.V(b.HalfWidth, b.HalfHeight), 0, false)
	case KindWall:
		c.Polygon(ColorWall, b.Corners())
	default:
		c.Polygon(ColorBox, b.Corners())
	}
}

func (b *Box) Descriptor() Descriptor {
	d := b.describe(b.kind)
	d.HalfExtents = [2]float64{b.HalfWidth, b.HalfHeight}
	return d
}

// Hero is the player-controlled ball. Its sprite faces along its velocity
// relative to the current "up".
type Hero struct {
	Ball
	worldAngle func() float64
}

func (h *Hero) Kind() Kind { return KindHero }

func (h *Hero) Controlled() bool { return true }

func (h *Hero) SetAngleSource(fn func() float64) {
	h.worldAngle = fn
}

// Heading is the sprite rotation in degrees and whether it must be mirrored.
func (h *Hero) Heading() (float64, bool) {
	if !h.body.Alive() {
		return 0, false
	}
	angle := 0.0
	if h.worldAngle != nil {
		angle = h.worldAngle()
	}
	right := geom.Rotate(geom.V(-1, 0), angle)
	deg := geom.AngleBetween(right, h.body.LinearVelocity()) * 180 / math.Pi
	return deg, math.Abs(deg) > 90
}

func (h *Hero) Draw(c Canvas) {
	deg, flip := h.Heading()
	c.Sprite("hero", h.Position(), geom.V(h.Radius, h.Radius), deg, flip)
}

func (h *Hero) Descriptor() Descriptor {
	d := h.Ball.Descriptor()
	d.Kind = KindHero
	return d
}

type Candy struct {
	Ball
}

func (c *Candy) Kind() Kind { return KindCandy }

func (c *Candy) Draw(cv Canvas) {
	cv.Sprite("candy", c.Position(), geom.V(c.Radius, c.Radius), 0, false)
}

func (c *Candy) Descriptor() Descriptor {
	d := c.Ball.Descriptor()
	d.Kind = KindCandy
	return d
}
