// Package observer streams read-only draw lists of the running level to
// spectators over websockets.
package observer

import (
	"time"

	"github.com/Versifine/gravitation/internal/actor"
	"github.com/Versifine/gravitation/internal/geom"
)

const (
	ShapeCircle  = "circle"
	ShapePolygon = "polygon"
	ShapeSprite  = "sprite"
)

// Shape is one draw call in screen space.
type Shape struct {
	Type        string       `json:"type"`
	Color       [3]uint8     `json:"color,omitempty"`
	Center      [2]float64   `json:"center,omitempty"`
	Radius      float64      `json:"radius,omitempty"`
	Points      [][2]float64 `json:"points,omitempty"`
	Sprite      string       `json:"sprite,omitempty"`
	HalfExtents [2]float64   `json:"half_extents,omitempty"`
	Angle       float64      `json:"angle,omitempty"`
	FlipY       bool         `json:"flip_y,omitempty"`
}

type Frame struct {
	Seq    uint64    `json:"seq"`
	Time   time.Time `json:"time"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Angle  float64   `json:"angle"`
	Score  int       `json:"score"`
	// TimeLeftMS is -1 when the level has no time limit.
	TimeLeftMS int64   `json:"time_left_ms"`
	Shapes     []Shape `json:"shapes"`
}

// Scene is the read-only view of a level that frames are captured from.
type Scene interface {
	View() geom.View
	Actors() []actor.Actor
	Score() int
	TimeLeft(now time.Time) (time.Duration, bool)
}

// Capture draws every drawable actor of scene onto a recording canvas.
func Capture(scene Scene, now time.Time) Frame {
	view := scene.View()
	rec := &recorder{view: view}
	for _, a := range scene.Actors() {
		if d, ok := a.(actor.Drawer); ok {
			d.Draw(rec)
		}
	}
	left := int64(-1)
	if d, limited := scene.TimeLeft(now); limited {
		left = d.Milliseconds()
	}
	return Frame{
		Time:       now,
		Width:      view.ScreenWidth,
		Height:     view.ScreenHeight,
		Angle:      view.Angle,
		Score:      scene.Score(),
		TimeLeftMS: left,
		Shapes:     rec.shapes,
	}
}

type recorder struct {
	view   geom.View
	shapes []Shape
}

func (r *recorder) point(p geom.Vec2) [2]float64 {
	s := r.view.WorldToScreen(p)
	return [2]float64{s.X(), s.Y()}
}

func (r *recorder) Circle(color actor.Color, center geom.Vec2, radius float64) {
	r.shapes = append(r.shapes, Shape{
		Type:   ShapeCircle,
		Color:  [3]uint8{color.R, color.G, color.B},
		Center: r.point(center),
		Radius: r.view.ScaleLength(radius),
	})
}

func (r *recorder) Polygon(color actor.Color, points []geom.Vec2) {
	pts := make([][2]float64, len(points))
	for i, p := range points {
		pts[i] = r.point(p)
	}
	r.shapes = append(r.shapes, Shape{
		Type:   ShapePolygon,
		Color:  [3]uint8{color.R, color.G, color.B},
		Points: pts,
	})
}

func (r *recorder) Sprite(name string, center, halfExtents geom.Vec2, angle float64, flipY bool) {
	r.shapes = append(r.shapes, Shape{
		Type:        ShapeSprite,
		Sprite:      name,
		Center:      r.point(center),
		HalfExtents: [2]float64{r.view.ScaleLength(halfExtents.X()), r.view.ScaleLength(halfExtents.Y())},
		Angle:       angle,
		FlipY:       flipY,
	})
}
