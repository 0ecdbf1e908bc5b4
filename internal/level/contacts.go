package level

import (
	"github.com/Versifine/gravitation/internal/actor"
	"github.com/Versifine/gravitation/internal/physics"
)

// SubscribeContacts adds fn to the subscribers of phase. Subscribers run
// while the world is stepping; anything that touches bodies must go
// through RemoveActor or be deferred.
func (l *Level) SubscribeContacts(phase physics.Phase, fn ContactFunc) {
	l.contacts[phase] = append(l.contacts[phase], fn)
}

func (l *Level) onContact(c physics.Contact) {
	subs := l.contacts[c.Phase]
	if len(subs) == 0 {
		return
	}
	resolved := Contact{
		Phase:  c.Phase,
		Point:  c.Point,
		Normal: c.Normal,
		Speed:  c.NormalSpeed(),
		A:      l.owner(c.A),
		B:      l.owner(c.B),
	}
	for _, fn := range subs {
		fn(resolved)
	}
}

func (l *Level) owner(b *physics.Body) actor.Actor {
	if b == nil {
		return nil
	}
	a, ok := b.UserData().(actor.Actor)
	if !ok || l.actors[a.ID()] != a {
		return nil
	}
	return a
}

// spawnSpark marks hard hits on the hero.
func (l *Level) spawnSpark(c Contact) {
	if c.Speed < l.settings.SparkSpeedThreshold {
		return
	}
	if _, ok := c.Involves(actor.IsControlled); !ok {
		return
	}
	at := c.Point
	l.later(func() {
		spark := actor.NewSpark(at, l.settings.SparkRadius)
		l.AddActor(spark)
		if _, err := l.deps.Scheduler.After(l.settings.SparkLifetime, func() { l.removeIf(spark) }); err != nil {
			l.logger.Warn("spark expiry not scheduled", "id", spark.ID(), "error", err)
			l.removeIf(spark)
		}
	})
}

func (l *Level) interact(c Contact) {
	if c.A == nil || c.B == nil {
		return
	}
	a, b := c.A, c.B
	l.later(func() {
		if l.actors[a.ID()] != a || l.actors[b.ID()] != b {
			return
		}
		l.interactions.Resolve(a, b)
	})
}

func (l *Level) deliverCandy(candy, hut actor.Actor) {
	l.score++
	l.logger.Info("candy delivered", "candy", candy.ID(), "hut", hut.ID(), "score", l.score)
	l.removeIf(candy)
}
