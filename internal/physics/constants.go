package physics

const (
	DefaultGravity            = 20.0
	DefaultHz                 = 50
	DefaultTimeStep           = 1.0 / DefaultHz
	DefaultVelocityIterations = 10
	DefaultPositionIterations = 8
	DefaultBoundsMargin       = 20.0

	DefaultDensity     = 1.0
	DefaultFriction    = 0.3
	DefaultRestitution = 0.8
)
