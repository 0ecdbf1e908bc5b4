package actor

import "github.com/Versifine/gravitation/internal/geom"

// Spark is a short-lived visual marker with no physics body.
type Spark struct {
	base
	At     geom.Vec2
	Radius float64
}

func NewSpark(at geom.Vec2, radius float64) *Spark {
	return &Spark{At: at, Radius: radius}
}

func (s *Spark) Kind() Kind { return KindSpark }

func (s *Spark) Position() geom.Vec2 { return s.At }

func (s *Spark) Destroy() error { return nil }

func (s *Spark) Draw(c Canvas) {
	c.Circle(ColorSpark, s.At, s.Radius)
}

func (s *Spark) Descriptor() Descriptor {
	return Descriptor{
		ID:       s.id,
		Kind:     KindSpark,
		Position: [2]float64{s.At.X(), s.At.Y()},
		Radius:   s.Radius,
	}
}
