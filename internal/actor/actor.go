// Package actor defines the things that live in a level. Behaviour is split
// into small capability interfaces; an actor implements only the ones it
// needs.
package actor

import (
	"errors"

	"github.com/Versifine/gravitation/internal/geom"
	"github.com/Versifine/gravitation/internal/physics"
)

var ErrUnknownKind = errors.New("unknown actor kind")

type ID int

type Kind string

const (
	KindWall  Kind = "wall"
	KindBox   Kind = "box"
	KindBall  Kind = "ball"
	KindHero  Kind = "hero"
	KindSpark Kind = "spark"
	KindCandy Kind = "candy"
	KindHut   Kind = "hut"
)

type Actor interface {
	ID() ID
	SetID(id ID)
	Kind() Kind
	Position() geom.Vec2
	// Destroy releases engine resources. The actor is unusable afterwards.
	Destroy() error
}

type Drawer interface {
	Draw(c Canvas)
}

type Embodied interface {
	Body() *physics.Body
}

type Describer interface {
	Descriptor() Descriptor
}

// Controlled marks the actor the player steers.
type Controlled interface {
	Controlled() bool
}

func IsControlled(a Actor) bool {
	c, ok := a.(Controlled)
	return ok && c.Controlled()
}

// BodyOf returns the live engine body behind a, if any.
func BodyOf(a Actor) (*physics.Body, bool) {
	e, ok := a.(Embodied)
	if !ok {
		return nil, false
	}
	b := e.Body()
	return b, b.Alive()
}

type base struct {
	id ID
}

func (b *base) ID() ID { return b.id }

func (b *base) SetID(id ID) { b.id = id }
