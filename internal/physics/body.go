package physics

import (
	"fmt"

	"github.com/ByteArena/box2d"

	"github.com/Versifine/gravitation/internal/geom"
)

type BodyDef struct {
	Position      geom.Vec2
	Angle         float64
	Static        bool
	FixedRotation bool
	UserData      any
}

type Material struct {
	Density     float64
	Friction    float64
	Restitution float64
}

func DefaultMaterial() Material {
	return Material{
		Density:     DefaultDensity,
		Friction:    DefaultFriction,
		Restitution: DefaultRestitution,
	}
}

// Body is a handle to an engine body. The World owns the body; the handle
// goes dead once the world destroys it.
type Body struct {
	world    *World
	body     *box2d.B2Body
	static   bool
	userData any
}

func (b *Body) Alive() bool {
	return b != nil && b.body != nil
}

func (b *Body) UserData() any {
	return b.userData
}

func (b *Body) SetUserData(v any) {
	b.userData = v
}

func (b *Body) Static() bool {
	return b.static
}

func (b *Body) Position() geom.Vec2 {
	return fromB2(b.body.GetPosition())
}

func (b *Body) Angle() float64 {
	return b.body.GetAngle()
}

func (b *Body) LinearVelocity() geom.Vec2 {
	return fromB2(b.body.GetLinearVelocity())
}

func (b *Body) SetLinearVelocity(v geom.Vec2) {
	b.body.SetLinearVelocity(toB2(v))
}

func (b *Body) VelocityAt(p geom.Vec2) geom.Vec2 {
	return fromB2(b.body.GetLinearVelocityFromWorldPoint(toB2(p)))
}

func (b *Body) Mass() float64 {
	return b.body.GetMass()
}

func (b *Body) SetTransform(position geom.Vec2, angle float64) {
	b.body.SetTransform(toB2(position), angle)
}

// ApplyImpulse pushes the body through its centre of mass.
func (b *Body) ApplyImpulse(impulse geom.Vec2) {
	b.body.ApplyLinearImpulse(toB2(impulse), b.body.GetWorldCenter(), true)
}

func (b *Body) AddCircle(radius float64, m Material) error {
	if radius <= 0 {
		return fmt.Errorf("circle radius %v: %w", radius, ErrInvalidShape)
	}
	shape := box2d.MakeB2CircleShape()
	shape.M_radius = radius
	return b.addFixture(&shape, m)
}

func (b *Body) AddBox(halfWidth, halfHeight float64, m Material) error {
	if halfWidth <= 0 || halfHeight <= 0 {
		return fmt.Errorf("box half extents %vx%v: %w", halfWidth, halfHeight, ErrInvalidShape)
	}
	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(halfWidth, halfHeight)
	return b.addFixture(&shape, m)
}

func (b *Body) addFixture(shape box2d.B2ShapeInterface, m Material) error {
	if b.world.Locked() {
		return ErrWorldLocked
	}
	fd := box2d.MakeB2FixtureDef()
	fd.Shape = shape
	fd.Density = m.Density
	fd.Friction = m.Friction
	fd.Restitution = m.Restitution
	b.body.CreateFixtureFromDef(&fd)
	return nil
}

// Contains tests p against every fixture of the body.
func (b *Body) Contains(p geom.Vec2) bool {
	point := toB2(p)
	for f := b.body.GetFixtureList(); f != nil; f = f.GetNext() {
		if f.TestPoint(point) {
			return true
		}
	}
	return false
}
