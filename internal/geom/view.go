package geom

// View is the camera state used to map between world and screen space.
// Screen space has its origin in the top-left corner with y growing down;
// world space has y growing up.
type View struct {
	ScreenWidth  float64
	ScreenHeight float64
	Camera       Vec2
	Angle        float64
	Scale        float64
}

func (v View) WorldToScreen(world Vec2) Vec2 {
	d := Rotate(world.Sub(v.Camera), -v.Angle).Mul(v.Scale)
	return Vec2{
		d.X() + v.ScreenWidth/2,
		v.ScreenHeight/2 - d.Y(),
	}
}

func (v View) ScreenToWorld(screen Vec2) Vec2 {
	centered := Vec2{
		screen.X() - v.ScreenWidth/2,
		v.ScreenHeight/2 - screen.Y(),
	}
	return Rotate(centered.Mul(1/v.Scale), v.Angle).Add(v.Camera)
}

func (v View) ScaleLength(length float64) float64 {
	return length * v.Scale
}

func (v View) Valid() bool {
	return v.Scale > 0 && v.ScreenWidth > 0 && v.ScreenHeight > 0
}
