package gravity

import (
	"fmt"
	"log/slog"

	"github.com/Versifine/gravitation/internal/event"
)

// Slot holds the active controller and its subscriptions. Swapping tears
// the old controller's controls down before the new ones go live.
type Slot struct {
	hub     *event.Hub
	logger  *slog.Logger
	current Controller
	capsule *event.Capsule
}

func NewSlot(hub *event.Hub, logger *slog.Logger) *Slot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slot{hub: hub, logger: logger}
}

func (s *Slot) Install(c Controller) error {
	if err := s.Uninstall(); err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	capsule := event.NewCapsule(s.hub, c.Bindings()...)
	if err := capsule.Subscribe(); err != nil {
		return fmt.Errorf("install gravity controller: %w", err)
	}
	s.current = c
	s.capsule = capsule
	s.logger.Debug("gravity controller installed", "controller", fmt.Sprintf("%T", c), "bindings", capsule.Len())
	return nil
}

func (s *Slot) Uninstall() error {
	if s.current == nil {
		return nil
	}
	err := s.capsule.Unsubscribe()
	if stopper, ok := s.current.(Stopper); ok {
		stopper.Stop()
	}
	s.current = nil
	s.capsule = nil
	if err != nil {
		return fmt.Errorf("uninstall gravity controller: %w", err)
	}
	return nil
}

func (s *Slot) Current() Controller {
	return s.current
}

func (s *Slot) Angle() float64 {
	if s.current == nil {
		return 0
	}
	return s.current.Angle()
}

func (s *Slot) Step() {
	if s.current != nil {
		s.current.Step()
	}
}
