package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Vec2 = mgl64.Vec2

func V(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Rotate turns v counter-clockwise by angle radians around the origin.
func Rotate(v Vec2, angle float64) Vec2 {
	return mgl64.Rotate2D(angle).Mul2x1(v)
}

func RotateAround(v, center Vec2, angle float64) Vec2 {
	return Rotate(v.Sub(center), angle).Add(center)
}

// AngleBetween returns the unsigned angle between a and b in [0, π].
// Zero-length input yields 0.
func AngleBetween(a, b Vec2) float64 {
	la, lb := a.Len(), b.Len()
	if nearlyZero(la) || nearlyZero(lb) {
		return 0
	}
	cos := a.Dot(b) / la / lb
	if cos < -1 {
		cos = -1
	}
	if cos > 1 {
		cos = 1
	}
	return math.Acos(cos)
}

func ApproxEqual(a, b Vec2, tol float64) bool {
	return math.Abs(a.X()-b.X()) <= tol && math.Abs(a.Y()-b.Y()) <= tol
}

func nearlyZero(v float64) bool {
	return math.Abs(v) < 1e-12
}
