package event

import "github.com/Versifine/gravitation/internal/input"

// Keymap is the fixed translation table from platform identifiers to
// semantic codes.
type Keymap struct {
	Keys    map[input.Key]Code
	Buttons map[input.Button]Code
}

func DefaultKeymap() Keymap {
	return Keymap{
		Keys: map[input.Key]Code{
			input.KeyW:       WorldUp,
			input.KeyS:       WorldDown,
			input.KeyD:       WorldLeft,
			input.KeyA:       WorldRight,
			input.KeyLeft:    MoveLeft,
			input.KeyRight:   MoveRight,
			input.KeyArrowUp: Jump,
			input.KeySpace:   Jump,
			input.KeyPlus:    ZoomIn,
			input.KeyMinus:   ZoomOut,
			input.KeyF5:      Dump,
			input.KeyF9:      Load,
			input.KeyQ:       Quit,
			input.KeyEscape:  Quit,
		},
		Buttons: map[input.Button]Code{
			input.ButtonLeft:   LeftButton,
			input.ButtonMiddle: MiddleButton,
			input.ButtonRight:  RightButton,
		},
	}
}
