package level

import (
	"errors"

	"github.com/Versifine/gravitation/internal/actor"
	"github.com/Versifine/gravitation/internal/event"
	"github.com/Versifine/gravitation/internal/geom"
	"github.com/Versifine/gravitation/internal/schedule"
)

func (l *Level) controlBindings() []event.Binding {
	return []event.Binding{
		event.Bind(event.Press(event.MoveLeft), event.Plain(func() { l.startMove(l.moveL) })),
		event.Bind(event.Release(event.MoveLeft), event.Plain(l.moveL.Stop)),
		event.Bind(event.Press(event.MoveRight), event.Plain(func() { l.startMove(l.moveR) })),
		event.Bind(event.Release(event.MoveRight), event.Plain(l.moveR.Stop)),
		event.Bind(event.Press(event.Jump), event.Plain(l.Jump)),
		event.Bind(event.Press(event.ZoomIn), event.Plain(l.camera.ZoomIn)),
		event.Bind(event.Press(event.ZoomOut), event.Plain(l.camera.ZoomOut)),
	}
}

func (l *Level) startMove(a *schedule.ContinuousAction) {
	err := a.Start()
	switch {
	case err == nil:
	case errors.Is(err, schedule.ErrAlreadyActive):
		// key auto-repeat
	default:
		l.logger.Warn("hero movement not started", "error", err)
	}
}

func (l *Level) Jump() {
	l.pokeHero(0, l.settings.JumpImpulse)
}

// pokeHero applies an impulse given in the hero's frame, where "up" is
// against the current gravity.
func (l *Level) pokeHero(x, y float64) {
	hero, ok := l.Hero()
	if !ok {
		return
	}
	body, ok := actor.BodyOf(hero)
	if !ok {
		return
	}
	body.ApplyImpulse(geom.Rotate(geom.V(x, y), l.Angle()))
}
