package session_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jmdottavio/product-calculator/internal/catalog"
	"github.com/jmdottavio/product-calculator/internal/order"
	"github.com/jmdottavio/product-calculator/internal/session"
)

type snapshotBody struct {
	ID     string `json:"id"`
	LineID string `json:"lineId"`
	order.Snapshot
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := catalog.NewStore()
	store.Replace(testProducts())
	registry := session.NewRegistry(func() *order.Calculator {
		return order.NewCalculator(order.CalculatorConfig{})
	})
	handler := &session.Handler{
		Registry: registry,
		Catalog:  store,
		Validate: validator.New(),
		Logger:   zerolog.Nop(),
	}

	r := chi.NewRouter()
	r.Route("/api/v1/sessions", func(v chi.Router) {
		v.Post("/", handler.Create)
		v.Route("/{sessionID}", func(s chi.Router) {
			s.Get("/", handler.Get)
			s.Patch("/", handler.Update)
			s.Delete("/", handler.Delete)
			s.Post("/lines", handler.AddLine)
			s.Patch("/lines/{lineID}", handler.UpdateLine)
			s.Delete("/lines/{lineID}", handler.DeleteLine)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "p-1", Name: "Widget", Category: "tools", Price: decimal.RequireFromString("10.00")},
		{ID: "p-2", Name: "Gadget", Category: "tools", Price: decimal.RequireFromString("5.00")},
	}
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, snapshotBody) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var decoded snapshotBody
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func TestCreateSessionStartsWithBlankLine(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, body.ID)
	require.Len(t, body.Lines, 1)
	require.Equal(t, 1, body.Lines[0].Quantity)
	require.Equal(t, "0.00", body.Lines[0].PriceDisplay)
	require.Equal(t, "0.00", body.TotalDisplay)
	require.True(t, body.ChargeFee)
	require.True(t, body.ChargeSales)
}

func TestFullEditFlow(t *testing.T) {
	srv := newTestServer(t)

	_, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions", nil)
	base := fmt.Sprintf("%s/api/v1/sessions/%s", srv.URL, created.ID)
	lineID := created.Lines[0].ID

	// Select a product: price mirrors the catalog.
	resp, body := doJSON(t, http.MethodPatch, base+"/lines/"+lineID, map[string]any{"productId": "p-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "10.00", body.Lines[0].PriceDisplay)
	require.Equal(t, "p-1", body.Lines[0].ProductID)

	// Quantity edit settles the whole cascade before responding.
	resp, body = doJSON(t, http.MethodPatch, base+"/lines/"+lineID, map[string]any{"quantity": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "20.00", body.Lines[0].ExtendedPriceDisplay)
	require.Equal(t, "20.00", body.SubtotalDisplay)
	require.Equal(t, "0.80", body.FeeAmountDisplay)
	require.Equal(t, "1.664", body.SalesTaxAmount)
	require.Equal(t, "22.464", body.Total)
}

func TestSecondLineAndDeletion(t *testing.T) {
	srv := newTestServer(t)

	_, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions", nil)
	base := fmt.Sprintf("%s/api/v1/sessions/%s", srv.URL, created.ID)
	first := created.Lines[0].ID

	_, _ = doJSON(t, http.MethodPatch, base+"/lines/"+first, map[string]any{"productId": "p-1"})

	resp, added := doJSON(t, http.MethodPost, base+"/lines", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, added.LineID)
	require.Len(t, added.Lines, 2)

	_, body := doJSON(t, http.MethodPatch, base+"/lines/"+added.LineID, map[string]any{"productId": "p-2", "quantity": 3})
	require.Equal(t, "25.00", body.SubtotalDisplay)
	require.Equal(t, "28.08", body.TotalDisplay)

	// Deleting the first line flags and purges it in one settled step.
	resp, body = doJSON(t, http.MethodDelete, base+"/lines/"+first, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Lines, 1)
	require.Equal(t, "15.00", body.SubtotalDisplay)

	// Deleting it again is a no-op.
	resp, body = doJSON(t, http.MethodDelete, base+"/lines/"+first, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body.Lines, 1)
	require.Equal(t, "15.00", body.SubtotalDisplay)
}

func TestToggleUpdates(t *testing.T) {
	srv := newTestServer(t)

	_, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions", nil)
	base := fmt.Sprintf("%s/api/v1/sessions/%s", srv.URL, created.ID)
	lineID := created.Lines[0].ID

	_, _ = doJSON(t, http.MethodPatch, base+"/lines/"+lineID, map[string]any{"price": "100", "quantity": 1})

	off := false
	resp, body := doJSON(t, http.MethodPatch, base, map[string]any{"chargeFee": &off, "chargeSales": &off})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.False(t, body.ChargeFee)
	require.False(t, body.ChargeSales)
	require.Equal(t, "0.00", body.FeeAmountDisplay)
	require.Equal(t, "0.00", body.SalesTaxAmountDisplay)
	require.Equal(t, body.SubtotalDisplay, body.TotalDisplay)
}

func TestValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	_, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions", nil)
	base := fmt.Sprintf("%s/api/v1/sessions/%s", srv.URL, created.ID)
	lineID := created.Lines[0].ID

	resp, _ := doJSON(t, http.MethodPatch, base+"/lines/"+lineID, map[string]any{"quantity": 0})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPatch, base+"/lines/"+lineID, map[string]any{"price": "-5"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPatch, base+"/lines/"+lineID, map[string]any{"price": "not-a-number"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPatch, base+"/lines/"+lineID, map[string]any{"productId": "ghost"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Rejected edits leave the previous state untouched.
	resp, body := doJSON(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, body.Lines[0].Quantity)
	require.Equal(t, "0.00", body.Lines[0].PriceDisplay)
}

func TestUnknownSessionAndLine(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/v1/sessions/1b671a64-40d5-491e-99b0-da01ff1f3341", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/sessions/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions", nil)
	base := fmt.Sprintf("%s/api/v1/sessions/%s", srv.URL, created.ID)
	resp, _ = doJSON(t, http.MethodPatch, base+"/lines/1b671a64-40d5-491e-99b0-da01ff1f3341", map[string]any{"quantity": 2})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t)

	_, created := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions", nil)
	base := fmt.Sprintf("%s/api/v1/sessions/%s", srv.URL, created.ID)

	req, err := http.NewRequest(http.MethodDelete, base, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, _ := doJSON(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusNotFound, getResp.StatusCode)
}
