package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/Versifine/gravitation/internal/geom"
)

func newTestWorld() *World {
	return NewWorld(Config{
		Gravity: geom.V(0, -DefaultGravity),
		Bounds:  AABB{Min: geom.V(0, 0), Max: geom.V(30, 30)}.Inflate(DefaultBoundsMargin),
	})
}

func addBall(t *testing.T, w *World, pos geom.Vec2, radius float64, data any) *Body {
	t.Helper()
	b, err := w.CreateBody(BodyDef{Position: pos, UserData: data})
	if err != nil {
		t.Fatalf("CreateBody() error = %v", err)
	}
	if err := b.AddCircle(radius, DefaultMaterial()); err != nil {
		t.Fatalf("AddCircle() error = %v", err)
	}
	return b
}

func addGround(t *testing.T, w *World) *Body {
	t.Helper()
	g, err := w.CreateBody(BodyDef{Position: geom.V(15, 0), Static: true, UserData: "ground"})
	if err != nil {
		t.Fatalf("CreateBody() error = %v", err)
	}
	if err := g.AddBox(15, 1, Material{Density: 1, Restitution: 0}); err != nil {
		t.Fatalf("AddBox() error = %v", err)
	}
	return g
}

func step(w *World, frames int) {
	for i := 0; i < frames; i++ {
		w.Step(DefaultTimeStep, DefaultVelocityIterations, DefaultPositionIterations)
	}
}

func TestBodyFallsAlongGravity(t *testing.T) {
	w := newTestWorld()
	b := addBall(t, w, geom.V(15, 20), 1, nil)
	step(w, 10)
	if b.Position().Y() >= 20 {
		t.Fatalf("ball did not fall: y=%v", b.Position().Y())
	}
	if math.Abs(b.Position().X()-15) > 1e-9 {
		t.Fatalf("ball drifted sideways: x=%v", b.Position().X())
	}
}

func TestSetGravityRedirectsFall(t *testing.T) {
	w := newTestWorld()
	b := addBall(t, w, geom.V(15, 15), 1, nil)
	w.SetGravity(geom.Rotate(geom.V(0, -DefaultGravity), math.Pi/2))
	if !geom.ApproxEqual(w.Gravity(), geom.V(DefaultGravity, 0), 1e-9) {
		t.Fatalf("Gravity() = %v, want (20,0)", w.Gravity())
	}
	step(w, 10)
	if b.Position().X() <= 15 {
		t.Fatalf("ball did not fall toward +x: %v", b.Position())
	}
}

func TestStaticBodyHasNoMass(t *testing.T) {
	w := newTestWorld()
	g := addGround(t, w)
	if !g.Static() || g.Mass() != 0 {
		t.Fatalf("static ground: Static=%v Mass=%v", g.Static(), g.Mass())
	}
	b := addBall(t, w, geom.V(5, 5), 2, nil)
	if b.Mass() <= 0 {
		t.Fatalf("dynamic ball mass = %v", b.Mass())
	}
}

func TestContactsAreReported(t *testing.T) {
	w := newTestWorld()
	addGround(t, w)
	ball := addBall(t, w, geom.V(15, 3), 1, "ball")

	phases := map[Phase]int{}
	var first Contact
	w.SetContactHandler(func(c Contact) {
		if phases[c.Phase] == 0 && c.Phase == PhaseBegin {
			first = c
		}
		phases[c.Phase]++
	})
	step(w, 60)

	if phases[PhaseBegin] == 0 {
		t.Fatalf("no begin contact reported: %v", phases)
	}
	if phases[PhasePersist] == 0 {
		t.Fatalf("no persist contact reported: %v", phases)
	}
	if first.A != ball && first.B != ball {
		t.Fatalf("begin contact does not involve the ball")
	}
	if first.Other(ball).UserData() != "ground" {
		t.Fatalf("other side = %v, want ground", first.Other(ball).UserData())
	}
	if first.NormalSpeed() <= 0 {
		t.Fatalf("impact speed = %v, want > 0", first.NormalSpeed())
	}
}

func TestQueryPoint(t *testing.T) {
	w := newTestWorld()
	ball := addBall(t, w, geom.V(10, 10), 2, "ball")
	addGround(t, w)

	hits := w.QueryPoint(geom.V(11, 10.5))
	if len(hits) != 1 || hits[0] != ball {
		t.Fatalf("QueryPoint inside ball = %v", hits)
	}
	if hits := w.QueryPoint(geom.V(11.7, 11.7)); len(hits) != 0 {
		t.Fatalf("QueryPoint in the ball's AABB corner = %v, want none", hits)
	}
	if !ball.Contains(geom.V(10, 10)) || ball.Contains(geom.V(20, 20)) {
		t.Fatalf("Contains() mismatch")
	}
}

func TestDestroyBody(t *testing.T) {
	w := newTestWorld()
	b := addBall(t, w, geom.V(10, 10), 1, nil)
	if w.BodyCount() != 1 {
		t.Fatalf("BodyCount() = %d", w.BodyCount())
	}
	if err := w.DestroyBody(b); err != nil {
		t.Fatalf("DestroyBody() error = %v", err)
	}
	if b.Alive() || w.BodyCount() != 0 {
		t.Fatalf("body still alive after destroy")
	}
	if err := w.DestroyBody(b); err != nil {
		t.Fatalf("second DestroyBody() = %v, want nil", err)
	}
	if hits := w.QueryPoint(geom.V(10, 10)); len(hits) != 0 {
		t.Fatalf("destroyed body still found by query")
	}

	other := newTestWorld()
	foreign := addBall(t, other, geom.V(1, 1), 1, nil)
	if err := w.DestroyBody(foreign); !errors.Is(err, ErrForeignBody) {
		t.Fatalf("DestroyBody(foreign) = %v, want ErrForeignBody", err)
	}
}

func TestCreateBodyWhileSteppingIsRejected(t *testing.T) {
	w := newTestWorld()
	addGround(t, w)
	addBall(t, w, geom.V(15, 2.5), 1, nil)

	var createErr error
	w.SetContactHandler(func(c Contact) {
		if c.Phase == PhaseBegin && createErr == nil {
			_, createErr = w.CreateBody(BodyDef{Position: c.Point})
		}
	})
	step(w, 30)
	if !errors.Is(createErr, ErrWorldLocked) {
		t.Fatalf("CreateBody during step = %v, want ErrWorldLocked", createErr)
	}
}

func TestInvalidShapes(t *testing.T) {
	w := newTestWorld()
	b, _ := w.CreateBody(BodyDef{})
	if err := b.AddCircle(0, DefaultMaterial()); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("AddCircle(0) = %v", err)
	}
	if err := b.AddBox(1, -1, DefaultMaterial()); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("AddBox(1,-1) = %v", err)
	}
}

func TestAABB(t *testing.T) {
	box := AABB{Min: geom.V(0, 0), Max: geom.V(10, 5)}
	if !box.Contains(geom.V(10, 5)) || box.Contains(geom.V(10.1, 1)) {
		t.Fatalf("Contains() mismatch")
	}
	big := box.Inflate(2)
	if big.Min != geom.V(-2, -2) || big.Max != geom.V(12, 7) {
		t.Fatalf("Inflate(2) = %+v", big)
	}
	if PhaseEnd.String() != "end" || Phase(9).String() != "Phase(9)" {
		t.Fatalf("Phase.String mismatch")
	}
}
