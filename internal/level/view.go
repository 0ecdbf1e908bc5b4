package level

import (
	"github.com/Versifine/gravitation/internal/actor"
	"github.com/Versifine/gravitation/internal/geom"
)

// Center is the middle of the level rectangle.
func (l *Level) Center() geom.Vec2 {
	return geom.V(l.settings.Width/2, l.settings.Height/2)
}

// CameraPosition follows the hero, or the level centre without one.
func (l *Level) CameraPosition() geom.Vec2 {
	if hero, ok := l.Hero(); ok {
		if _, alive := actor.BodyOf(hero); alive {
			return hero.Position()
		}
	}
	return l.Center()
}

func (l *Level) View() geom.View {
	return geom.View{
		ScreenWidth:  l.settings.ScreenWidth,
		ScreenHeight: l.settings.ScreenHeight,
		Camera:       l.CameraPosition(),
		Angle:        l.Angle(),
		Scale:        l.settings.ScreenWidth / l.settings.Width * l.camera.Multiplier(),
	}
}

func (l *Level) ScreenToWorld(screen geom.Vec2) geom.Vec2 {
	return l.View().ScreenToWorld(screen)
}

func (l *Level) WorldToScreen(world geom.Vec2) geom.Vec2 {
	return l.View().WorldToScreen(world)
}
