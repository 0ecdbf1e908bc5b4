package actor

// Interaction runs when two actors of a registered kind pair touch. The
// arguments arrive in the order the pair was registered.
type Interaction func(first, second Actor)

type pair struct {
	first, second Kind
}

// Interactions replaces per-type special cases with a lookup keyed by the
// kinds of both actors.
type Interactions struct {
	table map[pair]Interaction
}

func NewInteractions() *Interactions {
	return &Interactions{table: make(map[pair]Interaction)}
}

func (t *Interactions) Register(first, second Kind, fn Interaction) {
	t.table[pair{first, second}] = fn
}

// Resolve runs the interaction for x and y in either order. It reports
// whether one was found.
func (t *Interactions) Resolve(x, y Actor) bool {
	if x == nil || y == nil {
		return false
	}
	if fn, ok := t.table[pair{x.Kind(), y.Kind()}]; ok {
		fn(x, y)
		return true
	}
	if fn, ok := t.table[pair{y.Kind(), x.Kind()}]; ok {
		fn(y, x)
		return true
	}
	return false
}
