package event

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/Versifine/gravitation/internal/geom"
	"github.com/Versifine/gravitation/internal/input"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

type offsetMapper struct {
	offset geom.Vec2
}

func (m offsetMapper) ScreenToWorld(screen geom.Vec2) geom.Vec2 {
	return screen.Mul(0.1).Add(m.offset)
}

func TestEventMatches(t *testing.T) {
	tests := []struct {
		name string
		sub  Event
		in   Event
		want bool
	}{
		{"wildcard matches press", Any(WorldLeft), Press(WorldLeft), true},
		{"wildcard matches release", Any(WorldLeft), Release(WorldLeft), true},
		{"press matches press", Press(WorldLeft), Press(WorldLeft), true},
		{"press ignores release", Press(WorldLeft), Release(WorldLeft), false},
		{"release ignores press", Release(Jump), Press(Jump), false},
		{"different code", Press(WorldLeft), Press(WorldRight), false},
		{"position ignored", Press(LeftButton), Press(LeftButton).At(geom.V(3, 4)), true},
		{"incoming wildcard", Press(MouseMotion), Any(MouseMotion), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.Matches(tt.in); got != tt.want {
				t.Fatalf("%s.Matches(%s) = %v, want %v", tt.sub, tt.in, got, tt.want)
			}
		})
	}
}

func TestSubscribeWildcardSeesPressAndRelease(t *testing.T) {
	h := NewHub(nil, DefaultKeymap(), quietLogger())
	var wild, pressOnly int
	if _, err := h.Subscribe(Any(WorldLeft), Plain(func() { wild++ })); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Subscribe(Press(WorldLeft), Plain(func() { pressOnly++ })); err != nil {
		t.Fatal(err)
	}

	h.Dispatch(Press(WorldLeft))
	h.Dispatch(Release(WorldLeft))

	if wild != 2 {
		t.Fatalf("wildcard called %d times, want 2", wild)
	}
	if pressOnly != 1 {
		t.Fatalf("press-only called %d times, want 1", pressOnly)
	}
}

func TestSubscribeRejectsEmptyHandler(t *testing.T) {
	h := NewHub(nil, DefaultKeymap(), quietLogger())
	if _, err := h.Subscribe(Any(Jump), Handler{}); !errors.Is(err, ErrNilHandler) {
		t.Fatalf("Subscribe() error = %v, want ErrNilHandler", err)
	}
}

func TestSubscriptionIDsAreNeverReused(t *testing.T) {
	h := NewHub(nil, DefaultKeymap(), quietLogger())
	seen := map[SubscriptionID]bool{}
	for i := 0; i < 20; i++ {
		id, err := h.Subscribe(Any(Jump), Plain(func() {}))
		if err != nil {
			t.Fatal(err)
		}
		if seen[id] {
			t.Fatalf("id %d reused", id)
		}
		seen[id] = true
		if err := h.Unsubscribe(id); err != nil {
			t.Fatal(err)
		}
	}
}

func TestUnsubscribeUnknownFailsLoudly(t *testing.T) {
	var logs bytes.Buffer
	h := NewHub(nil, DefaultKeymap(), slog.New(slog.NewTextHandler(&logs, nil)))
	id, _ := h.Subscribe(Any(Jump), Plain(func() {}))
	if err := h.Unsubscribe(id); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	err := h.Unsubscribe(id)
	if !errors.Is(err, ErrUnknownSubscription) {
		t.Fatalf("second Unsubscribe() error = %v, want ErrUnknownSubscription", err)
	}
	if !strings.Contains(logs.String(), "level=ERROR") {
		t.Fatalf("expected error log, got %q", logs.String())
	}
}

func TestPayloadHandlerReceivesEvent(t *testing.T) {
	h := NewHub(nil, DefaultKeymap(), quietLogger())
	var got Event
	h.Subscribe(Any(LeftButton), WithEvent(func(ev Event) { got = ev }))

	h.Dispatch(Press(LeftButton).At(geom.V(1, 2)))

	if got.Code != LeftButton || !got.IsPress() {
		t.Fatalf("got %s, want LeftButton press", got)
	}
	if got.Position == nil || *got.Position != geom.V(1, 2) {
		t.Fatalf("Position = %v, want (1,2)", got.Position)
	}
}

func TestDispatchToleratesReentrantChanges(t *testing.T) {
	h := NewHub(nil, DefaultKeymap(), quietLogger())
	var order []string
	var second SubscriptionID
	rewired := false

	h.Subscribe(Any(Jump), Plain(func() {
		order = append(order, "first")
		if rewired {
			return
		}
		rewired = true
		if err := h.Unsubscribe(second); err != nil {
			t.Errorf("Unsubscribe from handler: %v", err)
		}
		h.Subscribe(Any(Jump), Plain(func() { order = append(order, "late") }))
	}))
	second, _ = h.Subscribe(Any(Jump), Plain(func() { order = append(order, "second") }))

	if n := h.Dispatch(Press(Jump)); n != 1 {
		t.Fatalf("Dispatch() called %d handlers, want 1", n)
	}
	if strings.Join(order, ",") != "first" {
		t.Fatalf("order = %v, want [first]", order)
	}

	order = nil
	h.Dispatch(Press(Jump))
	if strings.Join(order, ",") != "first,late" {
		t.Fatalf("order on second dispatch = %v, want [first late]", order)
	}
}

func TestDispatchExternalTranslatesInput(t *testing.T) {
	q := input.NewQueue()
	h := NewHub(q, DefaultKeymap(), quietLogger())
	h.SetPositionMapper(offsetMapper{offset: geom.V(5, 5)})

	var got []Event
	record := WithEvent(func(ev Event) { got = append(got, ev) })
	for _, c := range []Code{WorldLeft, LeftButton, MouseMotion, Quit} {
		h.Subscribe(Any(c), record)
	}

	q.Push(
		input.KeyDown(input.KeyD),
		input.KeyUp(input.KeyD),
		input.ButtonDown(input.ButtonLeft, geom.V(100, 50)),
		input.PointerMotion(geom.V(10, 10)),
		input.KeyDown(input.KeyUnknown),
		input.Raw{Kind: input.KindQuit},
		input.Raw{Kind: input.Kind(42)},
	)

	if n := h.DispatchExternal(); n != 5 {
		t.Fatalf("DispatchExternal() = %d, want 5", n)
	}
	if len(got) != 5 {
		t.Fatalf("recorded %d events, want 5: %v", len(got), got)
	}
	if got[0].Code != WorldLeft || !got[0].IsPress() {
		t.Fatalf("event 0 = %s, want WorldLeft press", got[0])
	}
	if got[1].Code != WorldLeft || got[1].Pressed == nil || *got[1].Pressed {
		t.Fatalf("event 1 = %s, want WorldLeft release", got[1])
	}
	if got[2].Position == nil || !geom.ApproxEqual(*got[2].Position, geom.V(15, 10), 1e-12) {
		t.Fatalf("button position = %v, want world (15,10)", got[2].Position)
	}
	if got[3].Code != MouseMotion || got[3].Pressed != nil {
		t.Fatalf("event 3 = %s, want wildcard MouseMotion", got[3])
	}
	if got[4].Code != Quit {
		t.Fatalf("event 4 = %s, want Quit", got[4])
	}
}

func TestArrowUpJumps(t *testing.T) {
	q := input.NewQueue()
	h := NewHub(q, DefaultKeymap(), quietLogger())

	var got []Event
	h.Subscribe(Any(Jump), WithEvent(func(ev Event) { got = append(got, ev) }))
	q.Push(input.KeyDown(input.KeyArrowUp), input.KeyDown(input.KeyArrowDown))

	if n := h.DispatchExternal(); n != 1 {
		t.Fatalf("DispatchExternal() = %d, want 1", n)
	}
	if len(got) != 1 || !got[0].IsPress() {
		t.Fatalf("got %v, want one Jump press", got)
	}
}

func TestDispatchExternalWithoutSource(t *testing.T) {
	h := NewHub(nil, DefaultKeymap(), quietLogger())
	if n := h.DispatchExternal(); n != 0 {
		t.Fatalf("DispatchExternal() = %d, want 0", n)
	}
}

func TestCodeString(t *testing.T) {
	if WorldLeft.String() != "WorldLeft" {
		t.Fatalf("WorldLeft.String() = %q", WorldLeft.String())
	}
	if Code(999).String() != "Code(999)" {
		t.Fatalf("Code(999).String() = %q", Code(999).String())
	}
}
