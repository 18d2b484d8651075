package order

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jmdottavio/product-calculator/internal/catalog"
	"github.com/jmdottavio/product-calculator/internal/observe"
	"github.com/jmdottavio/product-calculator/internal/pricing"
)

// Attribute names of a Line.
const (
	AttrProductID         = "productId"
	AttrPrice             = "price"
	AttrQuantity          = "quantity"
	AttrExtendedPrice     = "extendedPrice"
	AttrMarkedForDeletion = "markedForDeletion"
)

var (
	// ErrInvalidQuantity rejects quantities below one.
	ErrInvalidQuantity = errors.New("order: quantity must be a positive integer")
	// ErrInvalidPrice rejects negative prices.
	ErrInvalidPrice = errors.New("order: price must not be negative")
	// ErrLineNotFound is returned when a line id does not belong to the order.
	ErrLineNotFound = errors.New("order: line not found")
)

// Line is one order row: a product-derived price times a quantity. Its
// extended price is recomputed synchronously whenever price or quantity
// changes, so no observer ever sees the three attributes out of agreement.
type Line struct {
	*observe.Bag
	id uuid.UUID
}

// NewLine constructs a blank line: quantity 1, no product, price 0.
func NewLine() *Line {
	l := &Line{Bag: observe.NewBag(), id: uuid.New()}
	l.SetMany(map[string]any{
		AttrProductID:         "",
		AttrPrice:             decimal.Zero,
		AttrQuantity:          1,
		AttrExtendedPrice:     decimal.Zero,
		AttrMarkedForDeletion: false,
	})
	l.On(AttrPrice, l.extend)
	l.On(AttrQuantity, l.extend)
	return l
}

// ID returns the line's identity, assigned at creation.
func (l *Line) ID() uuid.UUID { return l.id }

// Price returns the current unit price; an unset product means zero.
func (l *Line) Price() decimal.Decimal {
	return observe.ValueOr(l.Bag, AttrPrice, decimal.Zero)
}

// Quantity returns the current quantity.
func (l *Line) Quantity() int {
	return observe.ValueOr(l.Bag, AttrQuantity, 1)
}

// ExtendedPrice returns price times quantity as of the last settled change.
func (l *Line) ExtendedPrice() decimal.Decimal {
	return observe.ValueOr(l.Bag, AttrExtendedPrice, decimal.Zero)
}

// ProductID returns the id of the selected product, empty when none is
// selected. The line holds the id only; the product itself stays owned by
// the catalog store.
func (l *Line) ProductID() string {
	return observe.ValueOr(l.Bag, AttrProductID, "")
}

// MarkedForDeletion reports whether the line has been flagged for removal.
func (l *Line) MarkedForDeletion() bool {
	return observe.ValueOr(l.Bag, AttrMarkedForDeletion, false)
}

// SetPrice validates and applies a new unit price. On rejection the prior
// state is untouched.
func (l *Line) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	l.Set(AttrPrice, price)
	return nil
}

// SetQuantity validates and applies a new quantity.
func (l *Line) SetQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	l.Set(AttrQuantity, quantity)
	return nil
}

// SelectProduct mirrors the chosen product's price onto the line and records
// the product reference.
func (l *Line) SelectProduct(p catalog.Product) error {
	if p.Price.IsNegative() {
		return ErrInvalidPrice
	}
	l.SetMany(map[string]any{
		AttrProductID: p.ID,
		AttrPrice:     p.Price,
	})
	return nil
}

// RequestDeletion flags the line for removal. The flag is terminal: the
// owning order reacts by purging the line, and aggregation already excludes
// it while it still sits in the collection.
func (l *Line) RequestDeletion() {
	l.Set(AttrMarkedForDeletion, true)
}

// detach deregisters every listener on the line, including its own recompute
// hooks. Called by the order after physical removal so nothing dangles.
func (l *Line) detach() {
	l.OffAll()
}

func (l *Line) extend(observe.Change) {
	l.Set(AttrExtendedPrice, pricing.Extend(l.Price(), l.Quantity()))
}
