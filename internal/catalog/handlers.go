package catalog

import (
	"net/http"

	"github.com/jmdottavio/product-calculator/internal/common"
)

// Handler exposes the read-only product endpoints consumed by the UI's
// product selector.
type Handler struct {
	Store *Store
}

// productDTO is the public product payload. Prices carry the exact decimal
// plus a two-decimal display string.
type productDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Price        string `json:"price"`
	PriceDisplay string `json:"priceDisplay"`
}

// List handles GET /api/v1/products.
func (h *Handler) List(w http.ResponseWriter, _ *http.Request) {
	products := h.Store.List()
	items := make([]productDTO, 0, len(products))
	for _, p := range products {
		items = append(items, productDTO{
			ID:           p.ID,
			Name:         p.Name,
			Category:     p.Category,
			Price:        p.Price.String(),
			PriceDisplay: p.Price.StringFixed(2),
		})
	}
	common.JSON(w, http.StatusOK, map[string]any{"products": items})
}
