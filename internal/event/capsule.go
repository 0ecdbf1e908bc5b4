package event

import (
	"errors"
	"fmt"
)

var ErrCapsuleActive = errors.New("capsule already subscribed")

// Capsule groups bindings that are subscribed and torn down together, e.g.
// every control of one gameplay mode.
type Capsule struct {
	hub      *Hub
	bindings []Binding
	ids      []SubscriptionID
	active   bool
}

func NewCapsule(hub *Hub, bindings ...Binding) *Capsule {
	return &Capsule{
		hub:      hub,
		bindings: append([]Binding(nil), bindings...),
	}
}

// Add appends a binding. On an active capsule it is subscribed at once.
func (c *Capsule) Add(b Binding) error {
	if c.active {
		id, err := c.hub.Subscribe(b.Event, b.Handler)
		if err != nil {
			return err
		}
		c.ids = append(c.ids, id)
	}
	c.bindings = append(c.bindings, b)
	return nil
}

func (c *Capsule) Subscribe() error {
	if c.active {
		return ErrCapsuleActive
	}
	ids := make([]SubscriptionID, 0, len(c.bindings))
	for _, b := range c.bindings {
		id, err := c.hub.Subscribe(b.Event, b.Handler)
		if err != nil {
			for _, done := range ids {
				_ = c.hub.Unsubscribe(done)
			}
			return fmt.Errorf("subscribe %s: %w", b.Event, err)
		}
		ids = append(ids, id)
	}
	c.ids = ids
	c.active = true
	return nil
}

func (c *Capsule) Unsubscribe() error {
	if !c.active {
		return nil
	}
	var errs []error
	for _, id := range c.ids {
		if err := c.hub.Unsubscribe(id); err != nil {
			errs = append(errs, err)
		}
	}
	c.ids = nil
	c.active = false
	return errors.Join(errs...)
}

func (c *Capsule) Active() bool {
	return c.active
}

func (c *Capsule) Len() int {
	return len(c.bindings)
}
