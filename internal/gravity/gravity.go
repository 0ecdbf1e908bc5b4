// Package gravity owns the world angle: which way is "down".
package gravity

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/Versifine/gravitation/internal/clock"
	"github.com/Versifine/gravitation/internal/event"
	"github.com/Versifine/gravitation/internal/schedule"
	"github.com/Versifine/gravitation/internal/smooth"
)

type Controller interface {
	Angle() float64
	Step()
	Bindings() []event.Binding
}

// Stopper is implemented by controllers holding timed work that must end
// when they are swapped out.
type Stopper interface {
	Stop()
}

// Constant never turns. Used when physics should stay put.
type Constant struct {
	angle float64
}

func NewConstant(angle float64) *Constant {
	return &Constant{angle: angle}
}

func (c *Constant) Angle() float64            { return c.angle }
func (c *Constant) Step()                     {}
func (c *Constant) Bindings() []event.Binding { return nil }

// Stepped turns the world by quarter and half turns on key presses, easing
// between orientations.
type Stepped struct {
	angle *smooth.Value
	turn  time.Duration
}

func NewStepped(clk clock.Clock, initial float64, turn time.Duration) *Stepped {
	return &Stepped{
		angle: smooth.New(clk, initial),
		turn:  turn,
	}
}

func (s *Stepped) Angle() float64 { return s.angle.Get() }

func (s *Stepped) Step() { s.angle.Step() }

func (s *Stepped) Goal() float64 { return s.angle.Goal() }

func (s *Stepped) Bindings() []event.Binding {
	return []event.Binding{
		event.Bind(event.Press(event.WorldLeft), event.Plain(s.TurnLeft)),
		event.Bind(event.Press(event.WorldRight), event.Plain(s.TurnRight)),
		event.Bind(event.Press(event.WorldUp), event.Plain(s.TurnUp)),
		event.Bind(event.Press(event.WorldDown), event.Plain(s.TurnDown)),
	}
}

func (s *Stepped) TurnLeft()  { s.angle.InitChange(math.Pi/2, s.turn) }
func (s *Stepped) TurnRight() { s.angle.InitChange(-math.Pi/2, s.turn) }
func (s *Stepped) TurnUp()    { s.angle.InitChange(math.Pi, s.turn) }
func (s *Stepped) TurnDown()  { s.angle.InitChange(-math.Pi, s.turn) }

// Continuous turns the world by a small delta at a fixed rate while a
// direction is held.
type Continuous struct {
	angle float64
	delta float64
	left  *schedule.ContinuousAction
	right *schedule.ContinuousAction

	logger *slog.Logger
}

func NewContinuous(s *schedule.Scheduler, interval time.Duration, delta float64, logger *slog.Logger) *Continuous {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Continuous{delta: delta, logger: logger}
	c.left = schedule.NewContinuousAction(s, interval, func() { c.angle += c.delta })
	c.right = schedule.NewContinuousAction(s, interval, func() { c.angle -= c.delta })
	return c
}

func (c *Continuous) Angle() float64 { return c.angle }

func (c *Continuous) Step() {}

func (c *Continuous) Bindings() []event.Binding {
	return []event.Binding{
		event.Bind(event.Press(event.WorldLeft), event.Plain(func() { c.start(c.left) })),
		event.Bind(event.Release(event.WorldLeft), event.Plain(c.left.Stop)),
		event.Bind(event.Press(event.WorldRight), event.Plain(func() { c.start(c.right) })),
		event.Bind(event.Release(event.WorldRight), event.Plain(c.right.Stop)),
	}
}

func (c *Continuous) start(a *schedule.ContinuousAction) {
	err := a.Start()
	switch {
	case err == nil:
	case errors.Is(err, schedule.ErrAlreadyActive):
		// key auto-repeat
	default:
		c.logger.Warn("world turn not started", "error", err)
	}
}

func (c *Continuous) Stop() {
	c.left.Stop()
	c.right.Stop()
}
