package order

// LineSnapshot is the settled view of one line, shaped for JSON responses.
// Amounts are exact decimal strings; Display fields carry the two-decimal
// rendering the UI shows.
type LineSnapshot struct {
	ID                   string `json:"id"`
	ProductID            string `json:"productId,omitempty"`
	Price                string `json:"price"`
	PriceDisplay         string `json:"priceDisplay"`
	Quantity             int    `json:"quantity"`
	ExtendedPrice        string `json:"extendedPrice"`
	ExtendedPriceDisplay string `json:"extendedPriceDisplay"`
}

// Snapshot is the settled view of a whole calculator.
type Snapshot struct {
	Subtotal              string         `json:"subtotal"`
	SubtotalDisplay       string         `json:"subtotalDisplay"`
	FeeAmount             string         `json:"feeAmount"`
	FeeAmountDisplay      string         `json:"feeAmountDisplay"`
	SalesTaxAmount        string         `json:"salesTaxAmount"`
	SalesTaxAmountDisplay string         `json:"salesTaxAmountDisplay"`
	Total                 string         `json:"total"`
	TotalDisplay          string         `json:"totalDisplay"`
	ChargeFee             bool           `json:"chargeFee"`
	ChargeSales           bool           `json:"chargeSales"`
	Lines                 []LineSnapshot `json:"lines"`
}

// Snapshot captures the calculator's current settled state. Callers hold the
// session lock, so the view is consistent: no cascade is in flight.
func (c *Calculator) Snapshot() Snapshot {
	members := c.order.Lines().Members()
	lines := make([]LineSnapshot, 0, len(members))
	for _, l := range members {
		lines = append(lines, LineSnapshot{
			ID:                   l.ID().String(),
			ProductID:            l.ProductID(),
			Price:                l.Price().String(),
			PriceDisplay:         l.Price().StringFixed(2),
			Quantity:             l.Quantity(),
			ExtendedPrice:        l.ExtendedPrice().String(),
			ExtendedPriceDisplay: l.ExtendedPrice().StringFixed(2),
		})
	}
	return Snapshot{
		Subtotal:              c.Subtotal().String(),
		SubtotalDisplay:       c.Subtotal().StringFixed(2),
		FeeAmount:             c.FeeAmount().String(),
		FeeAmountDisplay:      c.FeeAmount().StringFixed(2),
		SalesTaxAmount:        c.SalesTaxAmount().String(),
		SalesTaxAmountDisplay: c.SalesTaxAmount().StringFixed(2),
		Total:                 c.Total().String(),
		TotalDisplay:          c.Total().StringFixed(2),
		ChargeFee:             c.ChargeFee(),
		ChargeSales:           c.ChargeSales(),
		Lines:                 lines,
	}
}
