package event

// Handler is either a plain callback or one that receives the triggering
// event. Build it with Plain or WithEvent.
type Handler struct {
	plain   func()
	payload func(Event)
}

func Plain(fn func()) Handler {
	return Handler{plain: fn}
}

func WithEvent(fn func(Event)) Handler {
	return Handler{payload: fn}
}

func (h Handler) WantsPayload() bool {
	return h.payload != nil
}

func (h Handler) valid() bool {
	return h.plain != nil || h.payload != nil
}

func (h Handler) call(ev Event) {
	if h.payload != nil {
		h.payload(ev)
		return
	}
	h.plain()
}

// Binding pairs an event pattern with its handler before it is subscribed.
type Binding struct {
	Event   Event
	Handler Handler
}

func Bind(ev Event, h Handler) Binding {
	return Binding{Event: ev, Handler: h}
}
