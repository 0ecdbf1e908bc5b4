package level

import (
	"math"
	"time"

	"github.com/Versifine/gravitation/internal/clock"
	"github.com/Versifine/gravitation/internal/smooth"
)

// Camera owns the zoom level. Position and rotation come from the level
// each frame.
type Camera struct {
	zoom     *smooth.Value
	factor   float64
	duration time.Duration
}

func NewCamera(clk clock.Clock, initial, factor float64, duration time.Duration) *Camera {
	return &Camera{
		zoom:     smooth.New(clk, initial),
		factor:   factor,
		duration: duration,
	}
}

func (c *Camera) ZoomIn()  { c.zoom.InitChange(1, c.duration) }
func (c *Camera) ZoomOut() { c.zoom.InitChange(-1, c.duration) }

func (c *Camera) Step() { c.zoom.Step() }

func (c *Camera) Zoom() float64 { return c.zoom.Get() }

// Multiplier converts the zoom level into a scale factor.
func (c *Camera) Multiplier() float64 {
	return math.Pow(c.factor, c.zoom.Get())
}
