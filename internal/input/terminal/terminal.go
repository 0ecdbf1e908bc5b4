// Package terminal reads game keys from a raw-mode terminal. Terminals only
// report key presses (and auto-repeat), so a key counts as held until no
// byte for it has arrived for one pulse window; its release is synthesized
// on the next Poll after that.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/Versifine/gravitation/internal/clock"
	"github.com/Versifine/gravitation/internal/input"
)

const DefaultPulse = 150 * time.Millisecond

const (
	ctrlC = 3
	esc   = 27
)

type Reader struct {
	clk    clock.Clock
	pulse  time.Duration
	logger *slog.Logger
	queue  *input.Queue

	mu   sync.Mutex
	held map[input.Key]time.Time
}

func NewReader(clk clock.Clock, pulse time.Duration, logger *slog.Logger) *Reader {
	if clk == nil {
		clk = clock.System{}
	}
	if pulse <= 0 {
		pulse = DefaultPulse
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		clk:    clk,
		pulse:  pulse,
		logger: logger,
		queue:  input.NewQueue(),
		held:   make(map[input.Key]time.Time),
	}
}

// Start switches stdin to raw mode and reads keys until ctx is done or
// stdin closes. The terminal state is restored on return.
func (r *Reader) Start(ctx context.Context) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Print("\r\n")
	}()
	return r.Run(ctx, os.Stdin)
}

// Run decodes keys from in. Reaching EOF queues a quit.
func (r *Reader) Run(ctx context.Context, in io.Reader) error {
	reader := bufio.NewReader(in)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				r.queue.Push(input.Raw{Kind: input.KindQuit})
				return nil
			}
			return fmt.Errorf("read terminal input: %w", err)
		}
		if b == ctrlC {
			r.queue.Push(input.Raw{Kind: input.KindQuit})
			continue
		}
		key := decode(reader, b)
		if key == input.KeyUnknown {
			r.logger.Debug("unrecognized terminal input", "byte", b)
			continue
		}
		r.press(key)
	}
}

// Poll implements input.Source.
func (r *Reader) Poll() []input.Raw {
	r.expire(r.clk.Now())
	return r.queue.Poll()
}

func (r *Reader) press(key input.Key) {
	now := r.clk.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, down := r.held[key]; !down {
		r.queue.Push(input.KeyDown(key))
	}
	r.held[key] = now.Add(r.pulse)
}

func (r *Reader) expire(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, until := range r.held {
		if !now.Before(until) {
			delete(r.held, key)
			r.queue.Push(input.KeyUp(key))
		}
	}
}

// decode maps one key press, reading the rest of an escape sequence from
// reader when b starts one.
func decode(reader *bufio.Reader, b byte) input.Key {
	switch b {
	case 'w', 'W':
		return input.KeyW
	case 'a', 'A':
		return input.KeyA
	case 's', 'S':
		return input.KeyS
	case 'd', 'D':
		return input.KeyD
	case 'q', 'Q':
		return input.KeyQ
	case ' ':
		return input.KeySpace
	case '+', '=':
		return input.KeyPlus
	case '-', '_':
		return input.KeyMinus
	case esc:
		return decodeEscape(reader)
	}
	return input.KeyUnknown
}

func decodeEscape(reader *bufio.Reader) input.Key {
	// A lone ESC arrives without a sequence behind it.
	if reader.Buffered() == 0 {
		return input.KeyEscape
	}
	next, err := reader.ReadByte()
	if err != nil || (next != '[' && next != 'O') {
		return input.KeyEscape
	}
	code, err := reader.ReadByte()
	if err != nil {
		return input.KeyUnknown
	}
	switch code {
	case 'A':
		return input.KeyArrowUp
	case 'B':
		return input.KeyArrowDown
	case 'C':
		return input.KeyRight
	case 'D':
		return input.KeyLeft
	}
	if code < '0' || code > '9' {
		return input.KeyUnknown
	}
	// ESC [ n n ~ function keys
	num := int(code - '0')
	for {
		c, err := reader.ReadByte()
		if err != nil {
			return input.KeyUnknown
		}
		if c == '~' {
			break
		}
		if c < '0' || c > '9' {
			return input.KeyUnknown
		}
		num = num*10 + int(c-'0')
	}
	switch num {
	case 15:
		return input.KeyF5
	case 20:
		return input.KeyF9
	}
	return input.KeyUnknown
}
