// Package input models raw platform input before it is translated into
// gameplay events.
package input

import (
	"fmt"
	"sync"

	"github.com/Versifine/gravitation/internal/geom"
)

type Kind int

const (
	KindKeyDown Kind = iota + 1
	KindKeyUp
	KindButtonDown
	KindButtonUp
	KindPointerMotion
	KindQuit
)

func (k Kind) String() string {
	switch k {
	case KindKeyDown:
		return "KeyDown"
	case KindKeyUp:
		return "KeyUp"
	case KindButtonDown:
		return "ButtonDown"
	case KindButtonUp:
		return "ButtonUp"
	case KindPointerMotion:
		return "PointerMotion"
	case KindQuit:
		return "Quit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyLeft
	KeyRight
	KeyArrowUp
	KeyArrowDown
	KeySpace
	KeyPlus
	KeyMinus
	KeyEscape
	KeyQ
	KeyF5
	KeyF9
)

type Button int

const (
	ButtonUnknown Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// Raw is one input occurrence as reported by the platform. Screen is only
// meaningful for button and pointer kinds.
type Raw struct {
	Kind   Kind
	Key    Key
	Button Button
	Screen geom.Vec2
}

func KeyDown(k Key) Raw { return Raw{Kind: KindKeyDown, Key: k} }

func KeyUp(k Key) Raw { return Raw{Kind: KindKeyUp, Key: k} }

func ButtonDown(b Button, screen geom.Vec2) Raw {
	return Raw{Kind: KindButtonDown, Button: b, Screen: screen}
}

func ButtonUp(b Button, screen geom.Vec2) Raw {
	return Raw{Kind: KindButtonUp, Button: b, Screen: screen}
}

func PointerMotion(screen geom.Vec2) Raw {
	return Raw{Kind: KindPointerMotion, Screen: screen}
}

// Source is polled once per frame for everything that happened since the
// previous poll.
type Source interface {
	Poll() []Raw
}

// Queue is a Source fed from other goroutines.
type Queue struct {
	mu      sync.Mutex
	pending []Raw
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(events ...Raw) {
	q.mu.Lock()
	q.pending = append(q.pending, events...)
	q.mu.Unlock()
}

func (q *Queue) Poll() []Raw {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}
