package actor

import "github.com/Versifine/gravitation/internal/geom"

type Color struct {
	R, G, B uint8
}

var (
	ColorBall  = Color{130, 40, 120}
	ColorBox   = Color{200, 10, 100}
	ColorWall  = Color{90, 90, 110}
	ColorSpark = Color{250, 220, 60}
)

// Canvas receives draw calls in world coordinates. Implementations decide
// how world space maps to their output.
type Canvas interface {
	Circle(color Color, center geom.Vec2, radius float64)
	Polygon(color Color, points []geom.Vec2)
	Sprite(name string, center, halfExtents geom.Vec2, angle float64, flipY bool)
}
