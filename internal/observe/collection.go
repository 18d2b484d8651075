package observe

// Reason tags a collection notification so one handler can cover membership
// and member-attribute changes without duplicated wiring.
type Reason int

const (
	// Added means a member joined the collection.
	Added Reason = iota + 1
	// Removed means a member left the collection.
	Removed
	// MemberChanged means an attribute changed on a current member.
	MemberChanged
)

// String renders the reason for logs and metric labels.
func (r Reason) String() string {
	switch r {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case MemberChanged:
		return "member-changed"
	default:
		return "unknown"
	}
}

// Member is the contract collection members satisfy: an observable whose
// attribute changes the collection can forward. Entities embedding *Bag get
// it for free.
type Member interface {
	comparable
	OnAny(Handler) *Subscription
	Off(*Subscription)
}

// Event is the single typed notification a collection emits. Attr and Value
// are populated only for MemberChanged.
type Event[T Member] struct {
	Reason Reason
	Member T
	Attr   string
	Value  any
}

// Watch is the deregistration handle for a collection subscriber.
type Watch[T Member] struct {
	fn func(Event[T])
	id uint64
}

// Collection is an ordered, duplicate-free set of observable entities. It
// emits Added/Removed on membership changes and re-emits attribute changes
// from current members as MemberChanged. Forwarding stops the moment a member
// is removed.
//
// Like Bag, a Collection is single-goroutine state.
type Collection[T Member] struct {
	members  []T
	forwards map[T]*Subscription
	watches  []*Watch[T]
	nextID   uint64
}

// NewCollection returns an empty collection.
func NewCollection[T Member]() *Collection[T] {
	return &Collection[T]{forwards: make(map[T]*Subscription)}
}

// Add appends m and emits Added. Adding a zero value or an entity already
// present is a no-op; the return value reports whether membership changed.
func (c *Collection[T]) Add(m T) bool {
	var zero T
	if m == zero {
		return false
	}
	if _, ok := c.forwards[m]; ok {
		return false
	}
	c.members = append(c.members, m)
	member := m
	c.forwards[m] = m.OnAny(func(ch Change) {
		// Guard against a change dispatched while removal was in flight.
		if _, held := c.forwards[member]; !held {
			return
		}
		c.emit(Event[T]{Reason: MemberChanged, Member: member, Attr: ch.Attr, Value: ch.Value})
	})
	c.emit(Event[T]{Reason: Added, Member: m})
	return true
}

// Remove detaches m, stops forwarding its changes, and emits Removed.
// Removing an absent entity is a no-op.
func (c *Collection[T]) Remove(m T) bool {
	fwd, ok := c.forwards[m]
	if !ok {
		return false
	}
	m.Off(fwd)
	delete(c.forwards, m)
	for i, held := range c.members {
		if held == m {
			c.members = append(c.members[:i:i], c.members[i+1:]...)
			break
		}
	}
	c.emit(Event[T]{Reason: Removed, Member: m})
	return true
}

// Contains reports whether m is currently a member.
func (c *Collection[T]) Contains(m T) bool {
	_, ok := c.forwards[m]
	return ok
}

// Len returns the current member count.
func (c *Collection[T]) Len() int { return len(c.members) }

// Members returns the members in insertion order. The slice is a copy;
// mutating it does not affect the collection.
func (c *Collection[T]) Members() []T {
	out := make([]T, len(c.members))
	copy(out, c.members)
	return out
}

// Subscribe registers fn for every collection event and returns its handle.
func (c *Collection[T]) Subscribe(fn func(Event[T])) *Watch[T] {
	c.nextID++
	w := &Watch[T]{fn: fn, id: c.nextID}
	c.watches = append(c.watches, w)
	return w
}

// Unsubscribe removes a watch. Unknown handles are ignored.
func (c *Collection[T]) Unsubscribe(w *Watch[T]) {
	if w == nil {
		return
	}
	for i, held := range c.watches {
		if held.id == w.id {
			c.watches = append(c.watches[:i:i], c.watches[i+1:]...)
			return
		}
	}
}

func (c *Collection[T]) emit(ev Event[T]) {
	if len(c.watches) == 0 {
		return
	}
	watches := make([]*Watch[T], len(c.watches))
	copy(watches, c.watches)
	for _, w := range watches {
		w.fn(ev)
	}
}
