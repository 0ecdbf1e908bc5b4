package event

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Versifine/gravitation/internal/geom"
	"github.com/Versifine/gravitation/internal/input"
)

var (
	ErrUnknownSubscription = errors.New("unknown subscription")
	ErrNilHandler          = errors.New("subscription handler is nil")
)

type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	event   Event
	handler Handler
}

// PositionMapper converts screen coordinates to world coordinates at the
// moment an input is translated.
type PositionMapper interface {
	ScreenToWorld(screen geom.Vec2) geom.Vec2
}

// Hub is the single registry turning input into gameplay callbacks. It is
// driven from the game loop and is not safe for concurrent use. Handlers
// may subscribe and unsubscribe while being dispatched.
type Hub struct {
	subs   map[SubscriptionID]*subscription
	nextID SubscriptionID

	source input.Source
	keymap Keymap
	mapper PositionMapper
	logger *slog.Logger
}

func NewHub(source input.Source, keymap Keymap, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[SubscriptionID]*subscription),
		source: source,
		keymap: keymap,
		logger: logger,
	}
}

func (h *Hub) SetPositionMapper(m PositionMapper) {
	h.mapper = m
}

func (h *Hub) Subscribe(ev Event, handler Handler) (SubscriptionID, error) {
	if !handler.valid() {
		return 0, ErrNilHandler
	}
	h.nextID++
	h.subs[h.nextID] = &subscription{id: h.nextID, event: ev, handler: handler}
	return h.nextID, nil
}

// Unsubscribe removes id. Removing an id that is not subscribed is a caller
// bug and is reported, never ignored.
func (h *Hub) Unsubscribe(id SubscriptionID) error {
	if _, ok := h.subs[id]; !ok {
		h.logger.Error("unsubscribe of unknown subscription", "subscription", id)
		return fmt.Errorf("unsubscribe %d: %w", id, ErrUnknownSubscription)
	}
	delete(h.subs, id)
	return nil
}

func (h *Hub) Len() int {
	return len(h.subs)
}

// Dispatch calls every subscription matching ev. Subscriptions are visited
// in id order; handlers must not depend on it.
func (h *Hub) Dispatch(ev Event) int {
	matched := make([]*subscription, 0, 4)
	for _, sub := range h.subs {
		if sub.event.Matches(ev) {
			matched = append(matched, sub)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })

	called := 0
	for _, sub := range matched {
		if h.subs[sub.id] != sub {
			continue
		}
		sub.handler.call(ev)
		called++
	}
	return called
}

// DispatchExternal drains the input source and dispatches every recognised
// occurrence. It returns the number of events dispatched.
func (h *Hub) DispatchExternal() int {
	if h.source == nil {
		return 0
	}
	n := 0
	for _, raw := range h.source.Poll() {
		ev, ok := h.translate(raw)
		if !ok {
			h.logger.Debug("ignoring unrecognised input", "kind", raw.Kind.String(), "key", raw.Key, "button", raw.Button)
			continue
		}
		h.Dispatch(ev)
		n++
	}
	return n
}

func (h *Hub) translate(raw input.Raw) (Event, bool) {
	switch raw.Kind {
	case input.KindKeyDown, input.KindKeyUp:
		code, ok := h.keymap.Keys[raw.Key]
		if !ok {
			return Event{}, false
		}
		if raw.Kind == input.KindKeyDown {
			return Press(code), true
		}
		return Release(code), true
	case input.KindButtonDown, input.KindButtonUp:
		code, ok := h.keymap.Buttons[raw.Button]
		if !ok {
			return Event{}, false
		}
		ev := Release(code)
		if raw.Kind == input.KindButtonDown {
			ev = Press(code)
		}
		return ev.At(h.toWorld(raw.Screen)), true
	case input.KindPointerMotion:
		return Any(MouseMotion).At(h.toWorld(raw.Screen)), true
	case input.KindQuit:
		return Press(Quit), true
	default:
		return Event{}, false
	}
}

func (h *Hub) toWorld(screen geom.Vec2) geom.Vec2 {
	if h.mapper == nil {
		return screen
	}
	return h.mapper.ScreenToWorld(screen)
}
