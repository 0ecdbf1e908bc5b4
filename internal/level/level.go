// Package level ties physics stepping, contacts, actors and the camera
// together once per frame.
package level

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Versifine/gravitation/internal/actor"
	"github.com/Versifine/gravitation/internal/clock"
	"github.com/Versifine/gravitation/internal/event"
	"github.com/Versifine/gravitation/internal/geom"
	"github.com/Versifine/gravitation/internal/gravity"
	"github.com/Versifine/gravitation/internal/physics"
	"github.com/Versifine/gravitation/internal/schedule"
)

var (
	ErrUnknownActor   = errors.New("unknown actor")
	ErrNotConstructed = errors.New("level world not constructed")
	ErrConstructed    = errors.New("level world already constructed")
	ErrDuplicateActor = errors.New("duplicate actor id")
)

// Deps are the long-lived collaborators a level is wired to. They are
// created once by the caller and shared with the game loop.
type Deps struct {
	Clock     clock.Clock
	Hub       *event.Hub
	Scheduler *schedule.Scheduler
	Gravity   *gravity.Slot
	Logger    *slog.Logger
}

// Contact is a physics contact resolved to the actors involved. A or B is
// nil when the body belongs to no registered actor.
type Contact struct {
	Phase  physics.Phase
	Point  geom.Vec2
	Normal geom.Vec2
	Speed  float64
	A      actor.Actor
	B      actor.Actor
}

// Involves returns the side of the contact matching pred.
func (c Contact) Involves(pred func(actor.Actor) bool) (actor.Actor, bool) {
	switch {
	case c.A != nil && pred(c.A):
		return c.A, true
	case c.B != nil && pred(c.B):
		return c.B, true
	}
	return nil, false
}

type ContactFunc func(Contact)

type Level struct {
	deps     Deps
	settings Settings
	logger   *slog.Logger

	world        *physics.World
	actors       map[actor.ID]actor.Actor
	contacts     map[physics.Phase][]ContactFunc
	interactions *actor.Interactions
	deferred     []func()

	camera   *Camera
	controls *event.Capsule
	moveL    *schedule.ContinuousAction
	moveR    *schedule.ContinuousAction

	score   int
	started time.Time
}

func New(deps Deps, settings Settings) *Level {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	l := &Level{
		deps:         deps,
		settings:     settings,
		logger:       logger,
		actors:       make(map[actor.ID]actor.Actor),
		contacts:     make(map[physics.Phase][]ContactFunc),
		interactions: actor.NewInteractions(),
		camera:       NewCamera(deps.Clock, settings.InitialZoom, settings.ZoomFactor, settings.ZoomDuration),
	}
	l.moveL = schedule.NewContinuousAction(deps.Scheduler, settings.MoveInterval, func() { l.pokeHero(-settings.MoveImpulse, 0) })
	l.moveR = schedule.NewContinuousAction(deps.Scheduler, settings.MoveInterval, func() { l.pokeHero(settings.MoveImpulse, 0) })
	l.controls = event.NewCapsule(deps.Hub, l.controlBindings()...)

	l.SubscribeContacts(physics.PhaseBegin, l.spawnSpark)
	l.SubscribeContacts(physics.PhaseBegin, l.interact)
	l.interactions.Register(actor.KindCandy, actor.KindHut, l.deliverCandy)
	if deps.Hub != nil {
		deps.Hub.SetPositionMapper(l)
	}
	return l
}

// ConstructWorld creates the physics world and the boundary walls and
// subscribes the hero controls. The time limit starts counting here.
func (l *Level) ConstructWorld() error {
	if l.world != nil {
		return ErrConstructed
	}
	s := l.settings
	rect := physics.AABB{Max: geom.V(s.Width, s.Height)}
	l.world = physics.NewWorld(physics.Config{
		Gravity: geom.V(0, -s.Gravity),
		Bounds:  rect.Inflate(s.BoundsMargin),
	})
	l.world.SetContactHandler(l.onContact)

	t := s.WallThickness
	walls := []actor.Descriptor{
		actor.BoxAt(actor.KindWall, geom.V(s.Width/2, 0), s.Width/2, t, 0, true),
		actor.BoxAt(actor.KindWall, geom.V(s.Width/2, s.Height), s.Width/2, t, 0, true),
		actor.BoxAt(actor.KindWall, geom.V(0, s.Height/2), t, s.Height/2, 0, true),
		actor.BoxAt(actor.KindWall, geom.V(s.Width, s.Height/2), t, s.Height/2, 0, true),
	}
	for _, d := range walls {
		if _, err := l.Spawn(d); err != nil {
			return fmt.Errorf("construct world: %w", err)
		}
	}
	if err := l.controls.Subscribe(); err != nil {
		return fmt.Errorf("construct world: %w", err)
	}
	l.started = l.deps.Clock.Now()
	l.logger.Info("level constructed", "width", s.Width, "height", s.Height, "time_limit", s.TimeLimit)
	return nil
}

// Close unsubscribes the controls and destroys every actor.
func (l *Level) Close() error {
	l.moveL.Stop()
	l.moveR.Stop()
	err := l.controls.Unsubscribe()
	for _, id := range l.ids() {
		err = errors.Join(err, l.RemoveActor(id))
	}
	return err
}

func (l *Level) World() *physics.World { return l.world }

func (l *Level) Settings() Settings { return l.settings }

func (l *Level) Camera() *Camera { return l.camera }

// Spawn builds an actor from d and registers it under a fresh id.
func (l *Level) Spawn(d actor.Descriptor) (actor.Actor, error) {
	if l.world == nil {
		return nil, ErrNotConstructed
	}
	a, err := actor.Build(l.world, d)
	if err != nil {
		return nil, err
	}
	l.AddActor(a)
	return a, nil
}

// AddActor registers a under the smallest id not in use and returns it.
func (l *Level) AddActor(a actor.Actor) actor.ID {
	id := actor.ID(0)
	for {
		if _, used := l.actors[id]; !used {
			break
		}
		id++
	}
	a.SetID(id)
	l.register(a)
	return id
}

func (l *Level) register(a actor.Actor) {
	if h, ok := a.(interface{ SetAngleSource(func() float64) }); ok {
		h.SetAngleSource(l.Angle)
	}
	l.actors[a.ID()] = a
	l.logger.Debug("actor added", "id", a.ID(), "kind", a.Kind())
}

// RemoveActor destroys the actor's body and forgets it. While the physics
// world is stepping the removal is deferred until the step ends.
func (l *Level) RemoveActor(id actor.ID) error {
	a, ok := l.actors[id]
	if !ok {
		return fmt.Errorf("remove actor %d: %w", id, ErrUnknownActor)
	}
	if l.world != nil && l.world.Locked() {
		l.later(func() { l.removeIf(a) })
		return nil
	}
	delete(l.actors, id)
	l.logger.Debug("actor removed", "id", id, "kind", a.Kind())
	if err := a.Destroy(); err != nil {
		return fmt.Errorf("remove actor %d: %w", id, err)
	}
	return nil
}

// removeIf removes a only if it is still registered under its id.
func (l *Level) removeIf(a actor.Actor) {
	if l.actors[a.ID()] != a {
		return
	}
	if err := l.RemoveActor(a.ID()); err != nil {
		l.logger.Warn("deferred removal failed", "id", a.ID(), "error", err)
	}
}

func (l *Level) Actor(id actor.ID) (actor.Actor, bool) {
	a, ok := l.actors[id]
	return a, ok
}

func (l *Level) Len() int { return len(l.actors) }

// Actors returns the registered actors ordered by id.
func (l *Level) Actors() []actor.Actor {
	out := make([]actor.Actor, 0, len(l.actors))
	for _, id := range l.ids() {
		out = append(out, l.actors[id])
	}
	return out
}

func (l *Level) ids() []actor.ID {
	ids := make([]actor.ID, 0, len(l.actors))
	for id := range l.actors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// PickActor returns the actor whose shape contains point. When shapes
// overlap the first one reported by the engine wins.
func (l *Level) PickActor(point geom.Vec2) (actor.Actor, bool) {
	if l.world == nil {
		return nil, false
	}
	for _, body := range l.world.QueryPoint(point) {
		a, ok := body.UserData().(actor.Actor)
		if ok && l.actors[a.ID()] == a {
			return a, true
		}
	}
	return nil, false
}

// Hero returns the controlled actor with the lowest id.
func (l *Level) Hero() (actor.Actor, bool) {
	for _, id := range l.ids() {
		if a := l.actors[id]; actor.IsControlled(a) {
			return a, true
		}
	}
	return nil, false
}

func (l *Level) Angle() float64 {
	if l.deps.Gravity == nil {
		return 0
	}
	return l.deps.Gravity.Angle()
}

// UpdateWorld advances the level by one frame.
func (l *Level) UpdateWorld(now time.Time) error {
	if l.world == nil {
		return ErrNotConstructed
	}
	l.deps.Scheduler.RunDue(now)
	if l.deps.Gravity != nil {
		l.deps.Gravity.Step()
	}
	l.world.SetGravity(geom.Rotate(geom.V(0, -l.settings.Gravity), l.Angle()))
	l.world.Step(l.settings.TimeStep.Seconds(), l.settings.VelocityIterations, l.settings.PositionIterations)
	l.flush()
	l.removeStrays()
	l.camera.Step()
	return nil
}

func (l *Level) later(fn func()) {
	l.deferred = append(l.deferred, fn)
}

func (l *Level) flush() {
	// Deferred work may queue more work; keep draining until quiet.
	for len(l.deferred) > 0 {
		batch := l.deferred
		l.deferred = nil
		for _, fn := range batch {
			fn()
		}
	}
}

func (l *Level) removeStrays() {
	bounds := l.world.Bounds()
	for _, a := range l.Actors() {
		if _, ok := actor.BodyOf(a); !ok {
			continue
		}
		if p := a.Position(); !bounds.Contains(p) {
			l.logger.Info("actor left the world", "id", a.ID(), "kind", a.Kind(), "x", p.X(), "y", p.Y())
			l.removeIf(a)
		}
	}
}

func (l *Level) Score() int { return l.score }

// TimeLeft reports the remaining play time at now. The second value is
// false when the level has no time limit.
func (l *Level) TimeLeft(now time.Time) (time.Duration, bool) {
	if l.settings.TimeLimit <= 0 {
		return 0, false
	}
	left := l.settings.TimeLimit - now.Sub(l.started)
	if left < 0 {
		left = 0
	}
	return left, true
}

func (l *Level) Over(now time.Time) bool {
	left, limited := l.TimeLeft(now)
	return limited && left == 0
}

func (l *Level) Elapsed(now time.Time) time.Duration {
	if l.started.IsZero() {
		return 0
	}
	return now.Sub(l.started)
}

func (l *Level) String() string {
	return fmt.Sprintf("Level(%gx%g actors=%d score=%d)", l.settings.Width, l.settings.Height, len(l.actors), l.score)
}
