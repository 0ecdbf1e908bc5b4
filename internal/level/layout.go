package level

import (
	"fmt"

	"github.com/Versifine/gravitation/internal/actor"
	"github.com/Versifine/gravitation/internal/geom"
	"github.com/Versifine/gravitation/internal/physics"
)

// FirstLevel is the opening layout, scaled to the level rectangle.
func FirstLevel(s Settings) []actor.Descriptor {
	cx, top := s.Width/2, s.Height
	hero := actor.HeroAt(geom.V(cx+1, top-10), 3, 0.1)
	hero.Angle = 1
	return []actor.Descriptor{
		actor.BallAt(geom.V(cx, top-5), 2, physics.DefaultRestitution),
		actor.BallAt(geom.V(cx-6, top-5), 2, physics.DefaultRestitution),
		hero,
		actor.BoxAt(actor.KindBox, geom.V(cx-8, 4), 1.5, 1.5, 0.2, false),
		actor.BoxAt(actor.KindHut, geom.V(s.Width-5, 3), 2, 2, 0, true),
		actor.CandyAt(geom.V(4, top-8), 0.7),
		actor.CandyAt(geom.V(4, top-12), 0.7),
	}
}

// Populate spawns every descriptor under fresh ids.
func (l *Level) Populate(descs []actor.Descriptor) error {
	for i, d := range descs {
		if _, err := l.Spawn(d); err != nil {
			return fmt.Errorf("populate #%d (%s): %w", i, d.Kind, err)
		}
	}
	return nil
}
