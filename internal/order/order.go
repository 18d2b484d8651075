package order

import (
	"github.com/google/uuid"

	"github.com/jmdottavio/product-calculator/internal/observe"
)

// Order owns the line collection for one calculator. It watches its own
// collection for deletion flags and purges flagged lines, completing the
// two-phase removal: flag first (aggregation already excludes the line),
// physical removal immediately after.
type Order struct {
	lines *observe.Collection[*Line]
}

// NewOrder returns an order with an empty line collection.
func NewOrder() *Order {
	o := &Order{lines: observe.NewCollection[*Line]()}
	o.lines.Subscribe(o.onLineEvent)
	return o
}

// Lines exposes the underlying collection for subscribers (the calculator,
// the UI layer). Mutation goes through AddLine/RemoveLine.
func (o *Order) Lines() *observe.Collection[*Line] { return o.lines }

// AddLine appends a blank default line and returns it. This is how the UI
// requests a new row to fill in.
func (o *Order) AddLine() *Line {
	l := NewLine()
	o.lines.Add(l)
	return l
}

// RemoveLine detaches the line from the collection and tears down all of its
// listeners. Removing a line the order does not hold is a no-op.
func (o *Order) RemoveLine(l *Line) {
	if o.lines.Remove(l) {
		l.detach()
	}
}

// Line finds a held line by id.
func (o *Order) Line(id uuid.UUID) (*Line, bool) {
	for _, l := range o.lines.Members() {
		if l.ID() == id {
			return l, true
		}
	}
	return nil, false
}

func (o *Order) onLineEvent(ev observe.Event[*Line]) {
	if ev.Reason != observe.MemberChanged || ev.Attr != AttrMarkedForDeletion {
		return
	}
	if marked, ok := ev.Value.(bool); ok && marked {
		o.RemoveLine(ev.Member)
	}
}
