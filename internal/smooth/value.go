// Package smooth eases a scalar toward a goal over a time window.
package smooth

import (
	"math"
	"time"

	"github.com/Versifine/gravitation/internal/clock"
)

// Value follows an ease-out curve from its value at the last InitChange to
// the goal. Overlapping changes start from wherever the value currently is.
type Value struct {
	clock clock.Clock

	current float64
	old     float64
	goal    float64
	start   time.Time
	end     time.Time
}

func New(clk clock.Clock, initial float64) *Value {
	if clk == nil {
		clk = clock.System{}
	}
	now := clk.Now()
	return &Value{
		clock:   clk,
		current: initial,
		old:     initial,
		goal:    initial,
		start:   now,
		end:     now,
	}
}

func (v *Value) InitChange(delta float64, duration time.Duration) {
	v.Step()
	now := v.clock.Now()
	if duration < 0 {
		duration = 0
	}
	v.old = v.current
	v.goal += delta
	v.start = now
	v.end = now.Add(duration)
	v.Step()
}

func (v *Value) Step() {
	now := v.clock.Now()
	if !now.Before(v.end) {
		v.current = v.goal
		return
	}
	fraction := float64(now.Sub(v.start)) / float64(v.end.Sub(v.start))
	if fraction < 0 {
		fraction = 0
	}
	v.current = v.old + (v.goal-v.old)*math.Sin(math.Pi/2*fraction)
}

func (v *Value) Get() float64 {
	return v.current
}

func (v *Value) Goal() float64 {
	return v.goal
}

// Settled reports whether the last step reached the goal.
func (v *Value) Settled() bool {
	return v.current == v.goal
}
