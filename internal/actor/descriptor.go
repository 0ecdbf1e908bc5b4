package actor

import (
	"errors"
	"fmt"

	"github.com/Versifine/gravitation/internal/geom"
	"github.com/Versifine/gravitation/internal/physics"
)

// Descriptor is the serializable form of an actor.
type Descriptor struct {
	ID            ID         `json:"id"`
	Kind          Kind       `json:"kind"`
	Position      [2]float64 `json:"position"`
	Velocity      [2]float64 `json:"velocity,omitempty"`
	Angle         float64    `json:"angle,omitempty"`
	Radius        float64    `json:"radius,omitempty"`
	HalfExtents   [2]float64 `json:"half_extents,omitempty"`
	Static        bool       `json:"static,omitempty"`
	FixedRotation bool       `json:"fixed_rotation,omitempty"`
	Density       float64    `json:"density,omitempty"`
	Friction      float64    `json:"friction,omitempty"`
	Restitution   float64    `json:"restitution,omitempty"`
}

// material falls back to the default material when d carries none.
func (d Descriptor) material() physics.Material {
	m := physics.DefaultMaterial()
	if d.Density == 0 && d.Friction == 0 && d.Restitution == 0 {
		return m
	}
	if d.Density > 0 {
		m.Density = d.Density
	}
	if d.Friction > 0 {
		m.Friction = d.Friction
	}
	m.Restitution = d.Restitution
	return m
}

// Build creates the actor described by d, including its engine body. The
// id is copied from d; the caller decides whether to keep it.
func Build(w *physics.World, d Descriptor) (Actor, error) {
	var (
		a   Actor
		err error
	)
	switch d.Kind {
	case KindBall:
		var b *Ball
		b, err = newBall(w, d)
		a = b
	case KindHero:
		var b *Ball
		if b, err = newBall(w, d); err == nil {
			a = &Hero{Ball: *b}
		}
	case KindCandy:
		var b *Ball
		if b, err = newBall(w, d); err == nil {
			a = &Candy{Ball: *b}
		}
	case KindBox, KindWall, KindHut:
		var b *Box
		b, err = newBox(w, d)
		a = b
	case KindSpark:
		a = NewSpark(geom.V(d.Position[0], d.Position[1]), d.Radius)
	default:
		return nil, fmt.Errorf("build %q: %w", d.Kind, ErrUnknownKind)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", d.Kind, err)
	}
	a.SetID(d.ID)
	if body, ok := BodyOf(a); ok {
		body.SetUserData(a)
	}
	return a, nil
}

func newBodyActor(w *physics.World, d Descriptor, static bool) (bodyActor, error) {
	body, err := w.CreateBody(physics.BodyDef{
		Position:      geom.V(d.Position[0], d.Position[1]),
		Angle:         d.Angle,
		Static:        static,
		FixedRotation: d.FixedRotation,
	})
	if err != nil {
		return bodyActor{}, err
	}
	return bodyActor{
		world: w,
		body:  body,
		mat:   d.material(),
		fixed: d.FixedRotation,
	}, nil
}

func newBall(w *physics.World, d Descriptor) (*Ball, error) {
	if d.Radius <= 0 {
		return nil, fmt.Errorf("radius %v: %w", d.Radius, physics.ErrInvalidShape)
	}
	ba, err := newBodyActor(w, d, d.Static)
	if err != nil {
		return nil, err
	}
	if err := ba.body.AddCircle(d.Radius, ba.mat); err != nil {
		return nil, errors.Join(err, w.DestroyBody(ba.body))
	}
	ba.body.SetLinearVelocity(geom.V(d.Velocity[0], d.Velocity[1]))
	return &Ball{bodyActor: ba, Radius: d.Radius}, nil
}

func newBox(w *physics.World, d Descriptor) (*Box, error) {
	hw, hh := d.HalfExtents[0], d.HalfExtents[1]
	if hw <= 0 || hh <= 0 {
		return nil, fmt.Errorf("half extents %vx%v: %w", hw, hh, physics.ErrInvalidShape)
	}
	static := d.Static || d.Kind == KindWall || d.Kind == KindHut
	ba, err := newBodyActor(w, d, static)
	if err != nil {
		return nil, err
	}
	if err := ba.body.AddBox(hw, hh, ba.mat); err != nil {
		return nil, errors.Join(err, w.DestroyBody(ba.body))
	}
	if !static {
		ba.body.SetLinearVelocity(geom.V(d.Velocity[0], d.Velocity[1]))
	}
	return &Box{bodyActor: ba, kind: d.Kind, HalfWidth: hw, HalfHeight: hh}, nil
}

// Shorthands used when laying out a level by hand.

func BallAt(pos geom.Vec2, radius, restitution float64) Descriptor {
	return Descriptor{Kind: KindBall, Position: [2]float64{pos.X(), pos.Y()}, Radius: radius, Restitution: restitution, Density: 1}
}

func HeroAt(pos geom.Vec2, radius, restitution float64) Descriptor {
	d := BallAt(pos, radius, restitution)
	d.Kind = KindHero
	return d
}

func CandyAt(pos geom.Vec2, radius float64) Descriptor {
	d := BallAt(pos, radius, 0.3)
	d.Kind = KindCandy
	return d
}

func BoxAt(kind Kind, pos geom.Vec2, halfWidth, halfHeight, restitution float64, static bool) Descriptor {
	return Descriptor{
		Kind:        kind,
		Position:    [2]float64{pos.X(), pos.Y()},
		HalfExtents: [2]float64{halfWidth, halfHeight},
		Static:      static,
		Restitution: restitution,
		Density:     1,
	}
}
