package level

import (
	"errors"
	"fmt"

	"github.com/Versifine/gravitation/internal/actor"
)

// Descriptors returns one descriptor per describable actor, ordered by id.
// Sparks are transient and left out.
func (l *Level) Descriptors() []actor.Descriptor {
	out := make([]actor.Descriptor, 0, len(l.actors))
	for _, a := range l.Actors() {
		if a.Kind() == actor.KindSpark {
			continue
		}
		if d, ok := a.(actor.Describer); ok {
			out = append(out, d.Descriptor())
		}
	}
	return out
}

// Restore replaces every actor with ones built from descs, keeping their
// ids. If any descriptor fails the level is left as it was.
func (l *Level) Restore(descs []actor.Descriptor) error {
	if l.world == nil {
		return ErrNotConstructed
	}
	staged := make(map[actor.ID]actor.Actor, len(descs))
	rollback := func(cause error) error {
		for _, a := range staged {
			cause = errors.Join(cause, a.Destroy())
		}
		return fmt.Errorf("restore: %w", cause)
	}
	for _, d := range descs {
		if _, dup := staged[d.ID]; dup {
			return rollback(fmt.Errorf("id %d: %w", d.ID, ErrDuplicateActor))
		}
		a, err := actor.Build(l.world, d)
		if err != nil {
			return rollback(fmt.Errorf("id %d: %w", d.ID, err))
		}
		staged[d.ID] = a
	}

	var errs []error
	for _, id := range l.ids() {
		if err := l.RemoveActor(id); err != nil {
			errs = append(errs, err)
		}
	}
	for _, a := range staged {
		l.register(a)
	}
	l.logger.Info("level restored", "actors", len(staged))
	return errors.Join(errs...)
}

// RestoreScore is used when loading a snapshot.
func (l *Level) RestoreScore(score int) {
	l.score = score
}
