package level

import (
	"time"

	"github.com/Versifine/gravitation/internal/physics"
)

type Settings struct {
	Width  float64
	Height float64

	Gravity            float64
	TimeStep           time.Duration
	VelocityIterations int
	PositionIterations int
	BoundsMargin       float64
	WallThickness      float64

	SparkRadius         float64
	SparkLifetime       time.Duration
	SparkSpeedThreshold float64

	MoveImpulse  float64
	MoveInterval time.Duration
	JumpImpulse  float64

	ScreenWidth  float64
	ScreenHeight float64
	InitialZoom  float64
	ZoomFactor   float64
	ZoomDuration time.Duration

	// TimeLimit of zero means the level never runs out of time.
	TimeLimit time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		Width:               30,
		Height:              30,
		Gravity:             physics.DefaultGravity,
		TimeStep:            time.Second / physics.DefaultHz,
		VelocityIterations:  physics.DefaultVelocityIterations,
		PositionIterations:  physics.DefaultPositionIterations,
		BoundsMargin:        physics.DefaultBoundsMargin,
		WallThickness:       1,
		SparkRadius:         0.3,
		SparkLifetime:       500 * time.Millisecond,
		SparkSpeedThreshold: 4,
		MoveImpulse:         30,
		MoveInterval:        20 * time.Millisecond,
		JumpImpulse:         30,
		ScreenWidth:         800,
		ScreenHeight:        800,
		InitialZoom:         5,
		ZoomFactor:          1.1,
		ZoomDuration:        time.Second,
		TimeLimit:           2 * time.Minute,
	}
}
