// Package physics is the boundary to the 2D rigid-body engine. Everything
// outside this package talks in geom vectors and never sees Box2D types.
package physics

import (
	"errors"
	"fmt"

	"github.com/ByteArena/box2d"

	"github.com/Versifine/gravitation/internal/geom"
)

var (
	ErrWorldLocked  = errors.New("physics world is stepping")
	ErrForeignBody  = errors.New("body belongs to another world")
	ErrInvalidShape = errors.New("invalid shape")
)

type AABB struct {
	Min geom.Vec2
	Max geom.Vec2
}

func (b AABB) Contains(p geom.Vec2) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y()
}

func (b AABB) Inflate(margin float64) AABB {
	return AABB{
		Min: b.Min.Sub(geom.V(margin, margin)),
		Max: b.Max.Add(geom.V(margin, margin)),
	}
}

type Config struct {
	Gravity geom.Vec2
	Bounds  AABB
}

type World struct {
	world   box2d.B2World
	bounds  AABB
	bodies  map[*box2d.B2Body]*Body
	handler ContactHandler
}

func NewWorld(cfg Config) *World {
	w := &World{
		world:  box2d.MakeB2World(toB2(cfg.Gravity)),
		bounds: cfg.Bounds,
		bodies: make(map[*box2d.B2Body]*Body),
	}
	w.world.SetContactListener(&contactListener{world: w})
	return w
}

func (w *World) SetGravity(g geom.Vec2) {
	w.world.SetGravity(toB2(g))
}

func (w *World) Gravity() geom.Vec2 {
	return fromB2(w.world.GetGravity())
}

func (w *World) Bounds() AABB {
	return w.bounds
}

// SetContactHandler installs the single receiver of contact events. The
// handler runs while the world is stepping and must not create or destroy
// bodies.
func (w *World) SetContactHandler(h ContactHandler) {
	w.handler = h
}

func (w *World) Step(dt float64, velocityIterations, positionIterations int) {
	w.world.Step(dt, velocityIterations, positionIterations)
}

func (w *World) Locked() bool {
	return w.world.IsLocked()
}

func (w *World) BodyCount() int {
	return len(w.bodies)
}

func (w *World) CreateBody(def BodyDef) (*Body, error) {
	if w.Locked() {
		return nil, ErrWorldLocked
	}
	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_dynamicBody
	if def.Static {
		bd.Type = box2d.B2BodyType.B2_staticBody
	}
	bd.Position = toB2(def.Position)
	bd.Angle = def.Angle
	bd.FixedRotation = def.FixedRotation

	b := &Body{
		world:    w,
		body:     w.world.CreateBody(&bd),
		static:   def.Static,
		userData: def.UserData,
	}
	w.bodies[b.body] = b
	return b, nil
}

func (w *World) DestroyBody(b *Body) error {
	if b == nil || b.body == nil {
		return nil
	}
	if b.world != w {
		return ErrForeignBody
	}
	if w.Locked() {
		return ErrWorldLocked
	}
	delete(w.bodies, b.body)
	w.world.DestroyBody(b.body)
	b.body = nil
	return nil
}

// QueryPoint returns every body with a fixture containing p. Candidates
// come from the broad-phase box query and are then tested exactly; the
// result follows the engine's query order.
func (w *World) QueryPoint(p geom.Vec2) []*Body {
	const eps = 1e-3
	aabb := box2d.MakeB2AABB()
	aabb.LowerBound = box2d.MakeB2Vec2(p.X()-eps, p.Y()-eps)
	aabb.UpperBound = box2d.MakeB2Vec2(p.X()+eps, p.Y()+eps)

	point := toB2(p)
	var hits []*Body
	seen := make(map[*Body]bool)
	w.world.QueryAABB(func(fixture *box2d.B2Fixture) bool {
		if !fixture.TestPoint(point) {
			return true
		}
		b, ok := w.bodies[fixture.GetBody()]
		if ok && !seen[b] {
			seen[b] = true
			hits = append(hits, b)
		}
		return true
	}, aabb)
	return hits
}

func (w *World) lookup(b *box2d.B2Body) *Body {
	if b == nil {
		return nil
	}
	return w.bodies[b]
}

func (w *World) String() string {
	g := w.Gravity()
	return fmt.Sprintf("World(bodies=%d gravity=(%.2f,%.2f))", len(w.bodies), g.X(), g.Y())
}

func toB2(v geom.Vec2) box2d.B2Vec2 {
	return box2d.MakeB2Vec2(v.X(), v.Y())
}

func fromB2(v box2d.B2Vec2) geom.Vec2 {
	return geom.V(v.X, v.Y)
}
