package observe

import (
	"reflect"
	"sort"

	"github.com/shopspring/decimal"
)

// AnyAttr subscribes a handler to every attribute change on a bag.
const AnyAttr = "*"

// Change describes a single attribute transition on a bag.
type Change struct {
	Attr  string
	Value any
	Prev  any
}

// Handler receives attribute changes. Handlers run synchronously on the
// goroutine that performed the mutation.
type Handler func(Change)

// Subscription is the handle returned by On. Holding the handle is the only
// way to deregister, which also guarantees the same registration cannot
// double-fire: each On call yields a distinct handle.
type Subscription struct {
	attr string
	fn   Handler
	id   uint64
}

// Bag is an observable attribute store. Setting an attribute to a value equal
// to the current one is a no-op and notifies nobody, which is what keeps
// cascading recomputations finite.
//
// Bag is not safe for concurrent use; callers serialise access (the session
// layer holds a per-calculator mutex around every mutation).
type Bag struct {
	values map[string]any
	subs   map[string][]*Subscription
	nextID uint64
}

// NewBag returns an empty attribute bag.
func NewBag() *Bag {
	return &Bag{
		values: make(map[string]any),
		subs:   make(map[string][]*Subscription),
	}
}

// Get returns the current value of attr and whether it has ever been set.
func (b *Bag) Get(attr string) (any, bool) {
	v, ok := b.values[attr]
	return v, ok
}

// Set stores value under attr and notifies listeners when the value actually
// changed. It reports whether a notification was emitted.
func (b *Bag) Set(attr string, value any) bool {
	prev, ok := b.values[attr]
	if ok && equalValues(prev, value) {
		return false
	}
	b.values[attr] = value
	b.notify(Change{Attr: attr, Value: value, Prev: prev})
	return true
}

// SetMany stores all values first and only then notifies, one change per
// attribute whose value differed, in attribute-name order. Listeners observing
// any notified attribute therefore never see a partially applied batch.
func (b *Bag) SetMany(values map[string]any) []string {
	attrs := make([]string, 0, len(values))
	for attr := range values {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	changes := make([]Change, 0, len(attrs))
	for _, attr := range attrs {
		value := values[attr]
		prev, ok := b.values[attr]
		if ok && equalValues(prev, value) {
			continue
		}
		b.values[attr] = value
		changes = append(changes, Change{Attr: attr, Value: value, Prev: prev})
	}

	changed := make([]string, 0, len(changes))
	for _, ch := range changes {
		changed = append(changed, ch.Attr)
	}
	for _, ch := range changes {
		b.notify(ch)
	}
	return changed
}

// On registers fn for changes of attr and returns the deregistration handle.
func (b *Bag) On(attr string, fn Handler) *Subscription {
	b.nextID++
	sub := &Subscription{attr: attr, fn: fn, id: b.nextID}
	b.subs[attr] = append(b.subs[attr], sub)
	return sub
}

// OnAny registers fn for changes of every attribute.
func (b *Bag) OnAny(fn Handler) *Subscription {
	return b.On(AnyAttr, fn)
}

// Off removes a previously registered subscription. Removing an unknown or
// already removed handle is a no-op.
func (b *Bag) Off(sub *Subscription) {
	if sub == nil {
		return
	}
	list := b.subs[sub.attr]
	for i, s := range list {
		if s.id == sub.id {
			b.subs[sub.attr] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// OffAll drops every subscription on the bag. Called when the owning entity
// leaves its collection so no handler outlives the entity.
func (b *Bag) OffAll() {
	b.subs = make(map[string][]*Subscription)
}

func (b *Bag) notify(ch Change) {
	// Dispatch over snapshots: handlers may subscribe or unsubscribe while
	// the cascade is running.
	for _, sub := range snapshot(b.subs[ch.Attr]) {
		sub.fn(ch)
	}
	if ch.Attr != AnyAttr {
		for _, sub := range snapshot(b.subs[AnyAttr]) {
			sub.fn(ch)
		}
	}
}

func snapshot(subs []*Subscription) []*Subscription {
	if len(subs) == 0 {
		return nil
	}
	out := make([]*Subscription, len(subs))
	copy(out, subs)
	return out
}

// Value returns the attribute as T when it is set and has that type.
func Value[T any](b *Bag, attr string) (T, bool) {
	raw, ok := b.Get(attr)
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// ValueOr returns the attribute as T, or fallback when unset or mistyped.
func ValueOr[T any](b *Bag, attr string, fallback T) T {
	if v, ok := Value[T](b, attr); ok {
		return v
	}
	return fallback
}

// equalValues compares by value. Monetary amounts need Decimal.Equal since
// the zero-exponent representation of a number is not unique.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ad, ok := a.(decimal.Decimal); ok {
		bd, ok := b.(decimal.Decimal)
		return ok && ad.Equal(bd)
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
