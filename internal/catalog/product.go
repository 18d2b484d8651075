package catalog

import "github.com/shopspring/decimal"

// Product is immutable reference data loaded once from the catalog document.
// Lines reference products by ID; nothing mutates a product after load.
type Product struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name" validate:"required"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

// Document is the wire shape of the catalog fetch: a list of product records
// under a top-level "products" key.
type Document struct {
	Products []Product `json:"products"`
}
