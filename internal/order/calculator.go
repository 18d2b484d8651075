package order

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jmdottavio/product-calculator/internal/obs"
	"github.com/jmdottavio/product-calculator/internal/observe"
	"github.com/jmdottavio/product-calculator/internal/pricing"
)

// Attribute names of a Calculator.
const (
	AttrSubtotal       = "subtotal"
	AttrFeeAmount      = "feeAmount"
	AttrSalesTaxAmount = "salesTaxAmount"
	AttrTotal          = "total"
	AttrChargeFee      = "chargeFee"
	AttrChargeSales    = "chargeSales"
)

// CalculatorConfig carries the per-calculator knobs. Zero rates fall back to
// the engine defaults (4% fee, 8% sales tax).
type CalculatorConfig struct {
	FeeRate decimal.Decimal
	TaxRate decimal.Decimal
	Logger  *zerolog.Logger
}

// Calculator owns one order and keeps the four derived totals settled. Every
// relevant event (membership change, an extended price moving, a deletion
// flag, a fee/tax toggle) re-runs the aggregate scan and applies the result
// through Set, so unchanged totals emit nothing downstream.
type Calculator struct {
	*observe.Bag
	order   *Order
	feeRate decimal.Decimal
	taxRate decimal.Decimal
	logger  zerolog.Logger
}

// NewCalculator builds a calculator with a fresh, empty order and settles the
// initial zero totals.
func NewCalculator(cfg CalculatorConfig) *Calculator {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	c := &Calculator{
		Bag:     observe.NewBag(),
		order:   NewOrder(),
		feeRate: cfg.FeeRate,
		taxRate: cfg.TaxRate,
		logger:  logger,
	}
	c.SetMany(map[string]any{
		AttrChargeFee:   true,
		AttrChargeSales: true,
	})
	c.On(AttrChargeFee, func(observe.Change) { c.recompute("toggle") })
	c.On(AttrChargeSales, func(observe.Change) { c.recompute("toggle") })
	c.order.Lines().Subscribe(c.onCollectionEvent)
	c.recompute("init")
	return c
}

// Order returns the single order this calculator aggregates.
func (c *Calculator) Order() *Order { return c.order }

// Subtotal returns the sum of extended prices over active lines.
func (c *Calculator) Subtotal() decimal.Decimal {
	return observe.ValueOr(c.Bag, AttrSubtotal, decimal.Zero)
}

// FeeAmount returns the fee charge as of the last settled recompute.
func (c *Calculator) FeeAmount() decimal.Decimal {
	return observe.ValueOr(c.Bag, AttrFeeAmount, decimal.Zero)
}

// SalesTaxAmount returns the sales tax charge as of the last settled
// recompute.
func (c *Calculator) SalesTaxAmount() decimal.Decimal {
	return observe.ValueOr(c.Bag, AttrSalesTaxAmount, decimal.Zero)
}

// Total returns subtotal plus fee plus sales tax.
func (c *Calculator) Total() decimal.Decimal {
	return observe.ValueOr(c.Bag, AttrTotal, decimal.Zero)
}

// ChargeFee reports whether the fee toggle is on.
func (c *Calculator) ChargeFee() bool {
	return observe.ValueOr(c.Bag, AttrChargeFee, true)
}

// ChargeSales reports whether the sales tax toggle is on.
func (c *Calculator) ChargeSales() bool {
	return observe.ValueOr(c.Bag, AttrChargeSales, true)
}

// SetChargeFee flips the fee toggle; the change handler recomputes.
func (c *Calculator) SetChargeFee(on bool) { c.Set(AttrChargeFee, on) }

// SetChargeSales flips the sales tax toggle; the change handler recomputes.
func (c *Calculator) SetChargeSales(on bool) { c.Set(AttrChargeSales, on) }

func (c *Calculator) onCollectionEvent(ev observe.Event[*Line]) {
	switch ev.Reason {
	case observe.Added, observe.Removed:
		c.recompute(ev.Reason.String())
	case observe.MemberChanged:
		if ev.Attr == AttrExtendedPrice || ev.Attr == AttrMarkedForDeletion {
			c.recompute(ev.Reason.String())
		}
	}
}

// recompute re-scans all active lines and applies the four totals in one
// batch. Lines flagged for deletion are excluded even while they still sit in
// the collection; a line whose extended price is not a decimal contributes
// zero rather than aborting the scan.
func (c *Calculator) recompute(trigger string) {
	start := time.Now()

	members := c.order.Lines().Members()
	extended := make([]decimal.Decimal, 0, len(members))
	for _, l := range members {
		if l.MarkedForDeletion() {
			continue
		}
		amount, ok := observe.Value[decimal.Decimal](l.Bag, AttrExtendedPrice)
		if !ok {
			c.logger.Warn().Str("line_id", l.ID().String()).Msg("extended price unreadable, contributing zero")
			amount = decimal.Zero
		}
		extended = append(extended, amount)
	}

	summary := pricing.Compute(extended, pricing.Options{
		ChargeFee:      c.ChargeFee(),
		ChargeSalesTax: c.ChargeSales(),
		FeeRate:        c.feeRate,
		TaxRate:        c.taxRate,
	})

	changed := c.SetMany(map[string]any{
		AttrSubtotal:       summary.Subtotal,
		AttrFeeAmount:      summary.FeeAmount,
		AttrSalesTaxAmount: summary.SalesTaxAmount,
		AttrTotal:          summary.Total,
	})

	if obs.RecalcTotal != nil {
		obs.RecalcTotal.WithLabelValues(trigger).Inc()
	}
	if obs.RecalcDuration != nil {
		obs.RecalcDuration.Observe(obs.DurationMillis(time.Since(start)))
	}
	if obs.ActiveLines != nil {
		obs.ActiveLines.Set(float64(len(extended)))
	}
	if len(changed) > 0 {
		c.logger.Debug().
			Str("trigger", trigger).
			Str("subtotal", summary.Subtotal.String()).
			Str("total", summary.Total.String()).
			Msg("totals recomputed")
	}
}
