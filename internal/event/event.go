package event

import (
	"fmt"

	"github.com/Versifine/gravitation/internal/geom"
)

type Code int

const (
	CodeUnknown Code = iota
	WorldLeft
	WorldRight
	WorldUp
	WorldDown
	MoveLeft
	MoveRight
	Jump
	ZoomIn
	ZoomOut
	Dump
	Load
	Quit
	LeftButton
	MiddleButton
	RightButton
	MouseMotion
)

var codeNames = map[Code]string{
	WorldLeft:    "WorldLeft",
	WorldRight:   "WorldRight",
	WorldUp:      "WorldUp",
	WorldDown:    "WorldDown",
	MoveLeft:     "MoveLeft",
	MoveRight:    "MoveRight",
	Jump:         "Jump",
	ZoomIn:       "ZoomIn",
	ZoomOut:      "ZoomOut",
	Dump:         "Dump",
	Load:         "Load",
	Quit:         "Quit",
	LeftButton:   "LeftButton",
	MiddleButton: "MiddleButton",
	RightButton:  "RightButton",
	MouseMotion:  "MouseMotion",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Event is a semantic input. A nil Pressed matches both press and release.
// Position is in world coordinates and never takes part in matching.
type Event struct {
	Code     Code
	Pressed  *bool
	Position *geom.Vec2
}

func Press(c Code) Event {
	pressed := true
	return Event{Code: c, Pressed: &pressed}
}

func Release(c Code) Event {
	pressed := false
	return Event{Code: c, Pressed: &pressed}
}

func Any(c Code) Event {
	return Event{Code: c}
}

func (e Event) At(pos geom.Vec2) Event {
	e.Position = &pos
	return e
}

func (e Event) Matches(other Event) bool {
	if e.Code != other.Code {
		return false
	}
	if e.Pressed == nil || other.Pressed == nil {
		return true
	}
	return *e.Pressed == *other.Pressed
}

func (e Event) IsPress() bool {
	return e.Pressed != nil && *e.Pressed
}

func (e Event) String() string {
	state := "any"
	if e.Pressed != nil {
		state = "released"
		if *e.Pressed {
			state = "pressed"
		}
	}
	if e.Position != nil {
		return fmt.Sprintf("%s(%s @ %.2f,%.2f)", e.Code, state, e.Position.X(), e.Position.Y())
	}
	return fmt.Sprintf("%s(%s)", e.Code, state)
}
