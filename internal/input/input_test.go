package input

import (
	"sync"
	"testing"

	"github.com/Versifine/gravitation/internal/geom"
)

func TestQueuePollDrains(t *testing.T) {
	q := NewQueue()
	if got := q.Poll(); got != nil {
		t.Fatalf("Poll() on empty queue = %v, want nil", got)
	}
	q.Push(KeyDown(KeyA), KeyUp(KeyA))
	q.Push(ButtonDown(ButtonLeft, geom.V(10, 20)))

	got := q.Poll()
	if len(got) != 3 {
		t.Fatalf("Poll() returned %d events, want 3", len(got))
	}
	if got[0].Kind != KindKeyDown || got[1].Kind != KindKeyUp || got[2].Kind != KindButtonDown {
		t.Fatalf("unexpected order: %v", got)
	}
	if got[2].Screen != geom.V(10, 20) {
		t.Fatalf("Screen = %v, want (10,20)", got[2].Screen)
	}
	if again := q.Poll(); again != nil {
		t.Fatalf("second Poll() = %v, want nil", again)
	}
}

func TestQueueConcurrentPush(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Push(KeyDown(KeySpace))
		}()
	}
	wg.Wait()
	if n := len(q.Poll()); n != 50 {
		t.Fatalf("Poll() returned %d events, want 50", n)
	}
}

func TestArrowKeyEvents(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		kind Kind
		key  Key
	}{
		{"up pressed", KeyDown(KeyArrowUp), KindKeyDown, KeyArrowUp},
		{"up released", KeyUp(KeyArrowUp), KindKeyUp, KeyArrowUp},
		{"down pressed", KeyDown(KeyArrowDown), KindKeyDown, KeyArrowDown},
		{"down released", KeyUp(KeyArrowDown), KindKeyUp, KeyArrowDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.raw.Kind != tt.kind || tt.raw.Key != tt.key {
				t.Fatalf("got %v/%v, want %v/%v", tt.raw.Kind, tt.raw.Key, tt.kind, tt.key)
			}
		})
	}
	if KeyArrowUp == KeyArrowDown {
		t.Fatal("arrow keys share a code")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindKeyDown, "KeyDown"},
		{KindPointerMotion, "PointerMotion"},
		{KindQuit, "Quit"},
		{Kind(99), "Kind(99)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
