package terminal

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Versifine/gravitation/internal/clock"
	"github.com/Versifine/gravitation/internal/input"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want input.Key
	}{
		{"w", "w", input.KeyW},
		{"upper d", "D", input.KeyD},
		{"space", " ", input.KeySpace},
		{"plus", "+", input.KeyPlus},
		{"equals as plus", "=", input.KeyPlus},
		{"minus", "-", input.KeyMinus},
		{"up arrow", "\x1b[A", input.KeyArrowUp},
		{"left arrow", "\x1b[D", input.KeyLeft},
		{"application right arrow", "\x1bOC", input.KeyRight},
		{"f5", "\x1b[15~", input.KeyF5},
		{"f9", "\x1b[20~", input.KeyF9},
		{"lone escape", "\x1b", input.KeyEscape},
		{"unknown function key", "\x1b[17~", input.KeyUnknown},
		{"unknown byte", "z", input.KeyUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := bufio.NewReader(strings.NewReader(tt.in))
			b, _ := reader.ReadByte()
			if got := decode(reader, b); got != tt.want {
				t.Fatalf("decode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRunQueuesPressesAndQuitsOnEOF(t *testing.T) {
	clk := clock.NewManual(epoch)
	r := NewReader(clk, 100*time.Millisecond, quietLogger())
	if err := r.Run(context.Background(), strings.NewReader("ww\x1b[Cz")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := r.Poll()
	want := []input.Raw{
		input.KeyDown(input.KeyW),
		input.KeyDown(input.KeyRight),
		{Kind: input.KindQuit},
	}
	if len(got) != len(want) {
		t.Fatalf("Poll() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Poll()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestReleaseIsSynthesizedAfterPulse(t *testing.T) {
	clk := clock.NewManual(epoch)
	r := NewReader(clk, 100*time.Millisecond, quietLogger())

	r.press(input.KeyLeft)
	if got := r.Poll(); len(got) != 1 || got[0] != input.KeyDown(input.KeyLeft) {
		t.Fatalf("Poll() = %v, want one key down", got)
	}

	clk.Advance(60 * time.Millisecond)
	r.press(input.KeyLeft) // auto-repeat extends the hold
	clk.Advance(60 * time.Millisecond)
	if got := r.Poll(); len(got) != 0 {
		t.Fatalf("Poll() during repeat = %v, want nothing", got)
	}

	clk.Advance(40 * time.Millisecond)
	if got := r.Poll(); len(got) != 1 || got[0] != input.KeyUp(input.KeyLeft) {
		t.Fatalf("Poll() = %v, want one key up", got)
	}
	if got := r.Poll(); len(got) != 0 {
		t.Fatalf("second Poll() = %v, want nothing", got)
	}
}

func TestCtrlCQuits(t *testing.T) {
	r := NewReader(clock.NewManual(epoch), 0, quietLogger())
	if err := r.Run(context.Background(), strings.NewReader("\x03")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got := r.Poll()
	if len(got) != 2 || got[0].Kind != input.KindQuit || got[1].Kind != input.KindQuit {
		t.Fatalf("Poll() = %v, want quit from ctrl-c and EOF", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewReader(nil, 0, quietLogger())
	if err := r.Run(ctx, strings.NewReader("www")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := r.Poll(); len(got) != 0 {
		t.Fatalf("Poll() = %v, want nothing after cancel", got)
	}
}
