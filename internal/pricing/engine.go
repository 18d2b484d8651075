package pricing

import "github.com/shopspring/decimal"

// Default rates applied when the configuration does not override them.
var (
	DefaultFeeRate = decimal.New(4, -2)
	DefaultTaxRate = decimal.New(8, -2)
)

// Options selects which charges apply and at which rates.
type Options struct {
	ChargeFee      bool
	ChargeSalesTax bool
	FeeRate        decimal.Decimal
	TaxRate        decimal.Decimal
}

// Summary aggregates the computed order totals.
type Summary struct {
	Subtotal       decimal.Decimal
	FeeAmount      decimal.Decimal
	SalesTaxAmount decimal.Decimal
	Total          decimal.Decimal
}

// Extend returns the extended price of one line: unit price times quantity.
func Extend(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Compute derives the order totals from the extended prices of its active
// lines. Sales tax is charged on the fee-inclusive amount, not on the raw
// subtotal; that ordering is part of the contract. A negative contribution
// counts as zero so one bad line cannot corrupt the aggregate.
func Compute(extended []decimal.Decimal, opts Options) Summary {
	subtotal := decimal.Zero
	for _, amount := range extended {
		if amount.IsNegative() {
			continue
		}
		subtotal = subtotal.Add(amount)
	}

	fee := decimal.Zero
	if opts.ChargeFee {
		fee = subtotal.Mul(rateOrDefault(opts.FeeRate, DefaultFeeRate))
	}

	tax := decimal.Zero
	if opts.ChargeSalesTax {
		tax = subtotal.Add(fee).Mul(rateOrDefault(opts.TaxRate, DefaultTaxRate))
	}

	return Summary{
		Subtotal:       subtotal,
		FeeAmount:      fee,
		SalesTaxAmount: tax,
		Total:          subtotal.Add(fee).Add(tax),
	}
}

func rateOrDefault(rate, fallback decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return fallback
	}
	return rate
}
