package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jmdottavio/product-calculator/internal/catalog"
	"github.com/jmdottavio/product-calculator/internal/common"
	"github.com/jmdottavio/product-calculator/internal/order"
)

// Handler exposes the calculator session API. Every mutation returns the
// settled snapshot so the UI can repaint without computing anything itself.
type Handler struct {
	Registry *Registry
	Catalog  *catalog.Store
	Validate *validator.Validate
	Logger   zerolog.Logger
}

type sessionDTO struct {
	ID string `json:"id"`
	order.Snapshot
}

type createLineDTO struct {
	LineID string `json:"lineId"`
	order.Snapshot
}

type updateSessionRequest struct {
	ChargeFee   *bool `json:"chargeFee"`
	ChargeSales *bool `json:"chargeSales"`
}

type updateLineRequest struct {
	ProductID *string `json:"productId"`
	Price     *string `json:"price"`
	Quantity  *int    `json:"quantity" validate:"omitempty,gte=1"`
}

// Create handles POST /api/v1/sessions.
func (h *Handler) Create(w http.ResponseWriter, _ *http.Request) {
	s := h.Registry.Create()
	h.Logger.Info().Str("session_id", s.ID.String()).Msg("session created")
	common.JSON(w, http.StatusCreated, sessionDTO{ID: s.ID.String(), Snapshot: s.Snapshot()})
}

// Get handles GET /api/v1/sessions/{sessionID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, sessionDTO{ID: s.ID.String(), Snapshot: s.Snapshot()})
}

// Update handles PATCH /api/v1/sessions/{sessionID}: the fee and sales tax
// toggles.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req updateSessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	_ = s.Do(func(c *order.Calculator) error {
		if req.ChargeFee != nil {
			c.SetChargeFee(*req.ChargeFee)
		}
		if req.ChargeSales != nil {
			c.SetChargeSales(*req.ChargeSales)
		}
		return nil
	})
	common.JSON(w, http.StatusOK, sessionDTO{ID: s.ID.String(), Snapshot: s.Snapshot()})
}

// Delete handles DELETE /api/v1/sessions/{sessionID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid session id", nil)
		return
	}
	h.Registry.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// AddLine handles POST /api/v1/sessions/{sessionID}/lines.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var lineID uuid.UUID
	_ = s.Do(func(c *order.Calculator) error {
		lineID = c.Order().AddLine().ID()
		return nil
	})
	common.JSON(w, http.StatusCreated, createLineDTO{LineID: lineID.String(), Snapshot: s.Snapshot()})
}

// UpdateLine handles PATCH /api/v1/sessions/{sessionID}/lines/{lineID}:
// product selection, direct price edits, and quantity edits.
func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid line id", nil)
		return
	}
	var req updateLineRequest
	if !h.decode(w, r, &req) {
		return
	}

	var price *decimal.Decimal
	if req.Price != nil {
		parsed, err := decimal.NewFromString(*req.Price)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "price must be a decimal number", nil)
			return
		}
		price = &parsed
	}

	var product *catalog.Product
	if req.ProductID != nil {
		p, ok := h.Catalog.Get(*req.ProductID)
		if !ok {
			common.JSONError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", nil)
			return
		}
		product = &p
	}

	err = s.Do(func(c *order.Calculator) error {
		l, ok := c.Order().Line(lineID)
		if !ok {
			return order.ErrLineNotFound
		}
		if product != nil {
			if err := l.SelectProduct(*product); err != nil {
				return err
			}
		}
		if price != nil {
			if err := l.SetPrice(*price); err != nil {
				return err
			}
		}
		if req.Quantity != nil {
			if err := l.SetQuantity(*req.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.respondLineError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, sessionDTO{ID: s.ID.String(), Snapshot: s.Snapshot()})
}

// DeleteLine handles DELETE /api/v1/sessions/{sessionID}/lines/{lineID}. The
// line is flagged for deletion; the order purges it within the same cascade.
// Deleting a line the order no longer holds is a no-op.
func (h *Handler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid line id", nil)
		return
	}
	_ = s.Do(func(c *order.Calculator) error {
		if l, ok := c.Order().Line(lineID); ok {
			l.RequestDeletion()
		}
		return nil
	})
	common.JSON(w, http.StatusOK, sessionDTO{ID: s.ID.String(), Snapshot: s.Snapshot()})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid session id", nil)
		return nil, false
	}
	s, err := h.Registry.Get(id)
	if err != nil {
		common.JSONError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found", nil)
		return nil, false
	}
	return s, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(dst); err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_VALUE", err.Error(), nil)
			return false
		}
	}
	return true
}

func (h *Handler) respondLineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrLineNotFound):
		common.JSONError(w, http.StatusNotFound, "LINE_NOT_FOUND", "line not found", nil)
	case errors.Is(err, order.ErrInvalidQuantity), errors.Is(err, order.ErrInvalidPrice):
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_VALUE", err.Error(), nil)
	default:
		common.Respond(w, err)
	}
}
