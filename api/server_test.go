package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"fencecost/adapters/storage"
	"fencecost/core/bom"
	"fencecost/core/catalog"
	"fencecost/core/cost"
	"fencecost/core/types"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testServer(t *testing.T, store storage.Store) *Server {
	t.Helper()
	c := catalog.New(
		types.CatalogItem{SKU: "A", Description: "Widget", Unit: "ea", UnitPrice: d("10.00")},
		types.CatalogItem{SKU: "B", Description: "Gadget", Unit: "box", UnitPrice: d("2.50")},
		types.CatalogItem{SKU: "POST", Unit: "ea", UnitPrice: d("20.00"), Category: "post"},
		types.CatalogItem{SKU: "RAIL", Unit: "ea", UnitPrice: d("8.00"), Category: "rail"},
		types.CatalogItem{SKU: "PICKET", Unit: "ea", UnitPrice: d("3.00"), Category: "picket"},
		types.CatalogItem{SKU: "CONCRETE", Unit: "bag", UnitPrice: d("6.00"), Category: "concrete"},
		types.CatalogItem{SKU: "SCREWS", Unit: "box", UnitPrice: d("25.00"), Category: "fastener"},
		types.CatalogItem{SKU: "GATE", Unit: "ea", UnitPrice: d("150.00"), Category: "gate"},
	)
	return NewServer(Options{
		Version: "test",
		Engine:  cost.NewEngine(c, bom.DefaultRatios(), nil),
		Store:   store,
	})
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestEstimate(t *testing.T) {
	s := testServer(t, nil)

	rec := do(t, s, http.MethodPost, "/estimate", `{
		"line_items": [{"sku": "A", "quantity": 3}, {"sku": "B", "quantity": 4}],
		"labor_hours": 2, "labor_rate": 50, "margin_pct": 10
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, rec.Header().Get(inputHashHeader), 64)

	var resp EstimateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 40.0, resp.MaterialsSubtotal)
	require.Equal(t, 100.0, resp.LaborTotal)
	require.Equal(t, 140.0, resp.Subtotal)
	require.Equal(t, 14.0, resp.MarginAmount)
	require.Equal(t, 154.0, resp.Total)
	require.Len(t, resp.LineItems, 2)
	require.Equal(t, "Widget", resp.LineItems[0].Description)
	require.Empty(t, resp.PDFBase64)
	require.Empty(t, resp.QuoteID)
}

func TestEstimateIncludesDocument(t *testing.T) {
	s := testServer(t, nil)

	tests := []struct {
		name   string
		format string
		prefix string
	}{
		{name: "default pdf", format: "", prefix: "%PDF-"},
		{name: "text", format: "text", prefix: "FENCE QUOTE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"line_items": [{"sku": "A", "quantity": 1}], "include_pdf": true, "format": "` + tt.format + `"}`
			rec := do(t, s, http.MethodPost, "/estimate", body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp EstimateResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			doc, err := base64.StdEncoding.DecodeString(resp.PDFBase64)
			require.NoError(t, err)
			require.True(t, bytes.HasPrefix(doc, []byte(tt.prefix)))
		})
	}
}

func TestEstimateFence(t *testing.T) {
	s := testServer(t, nil)

	rec := do(t, s, http.MethodPost, "/estimate_fence", `{
		"fence_length_ft": 100, "gates": 1,
		"labor_hours": 10, "labor_rate": 50, "margin_pct": 20
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp EstimateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.LineItems, 6)
	require.Equal(t, 1125.0, resp.MaterialsSubtotal)
	require.Equal(t, 1950.0, resp.Total)
}

func TestEstimateErrors(t *testing.T) {
	s := testServer(t, nil)

	tests := []struct {
		name    string
		path    string
		body    string
		code    string
		message string
	}{
		{
			name:    "empty line items",
			path:    "/estimate",
			body:    `{"line_items": []}`,
			code:    "VALIDATION_ERROR",
			message: "At least one line item is required",
		},
		{
			name: "zero quantity",
			path: "/estimate",
			body: `{"line_items": [{"sku": "A", "quantity": 0}]}`,
			code: "VALIDATION_ERROR",
		},
		{
			name: "negative margin",
			path: "/estimate",
			body: `{"line_items": [{"sku": "A", "quantity": 1}], "margin_pct": -5}`,
			code: "VALIDATION_ERROR",
		},
		{
			name:    "unknown sku",
			path:    "/estimate",
			body:    `{"line_items": [{"sku": "NOPE", "quantity": 1}]}`,
			code:    "NOT_FOUND",
			message: "SKU not found in pricebook: NOPE",
		},
		{
			name: "malformed json",
			path: "/estimate",
			body: `{"line_items": [`,
			code: codeInvalidJSON,
		},
		{
			name: "unsupported format",
			path: "/estimate",
			body: `{"line_items": [{"sku": "A", "quantity": 1}], "include_pdf": true, "format": "docx"}`,
			code: "VALIDATION_ERROR",
		},
		{
			name: "zero fence length",
			path: "/estimate_fence",
			body: `{"fence_length_ft": 0}`,
			code: "VALIDATION_ERROR",
		},
		{
			name:    "po without lines",
			path:    "/po",
			body:    `{}`,
			code:    "VALIDATION_ERROR",
			message: "At least one line item is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			body := decodeBody(t, rec)
			require.Equal(t, tt.code, body["error"])
			require.EqualValues(t, http.StatusBadRequest, body["status"])
			require.NotEmpty(t, body["request_id"])
			if tt.message != "" {
				require.Equal(t, tt.message, body["message"])
			}
		})
	}
}

func TestPurchaseOrder(t *testing.T) {
	s := testServer(t, nil)

	rec := do(t, s, http.MethodPost, "/po", `{"line_items": [{"sku": "A", "quantity": 2}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="po.pdf"`, rec.Header().Get("Content-Disposition"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = do(t, s, http.MethodPost, "/po?format=text", `{"line_items": [{"sku": "A", "quantity": 2}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "PURCHASE ORDER")
	require.Contains(t, rec.Body.String(), "TOTAL:")
	require.Contains(t, rec.Body.String(), "20.00")
}

func TestSavedQuotes(t *testing.T) {
	s := testServer(t, storage.NewMemoryStore())

	rec := do(t, s, http.MethodPost, "/estimate", `{
		"line_items": [{"sku": "A", "quantity": 3}],
		"customer_name": "Acme", "project_name": "Back yard", "save": true
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp EstimateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.QuoteID)

	rec = do(t, s, http.MethodGet, "/quotes?customer=Acme", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)
	require.EqualValues(t, 1, list["count"])

	rec = do(t, s, http.MethodGet, "/quotes?since=2000-01-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, decodeBody(t, rec)["count"])

	rec = do(t, s, http.MethodGet, "/quotes?until=2000-01-01T00:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 0, decodeBody(t, rec)["count"])

	rec = do(t, s, http.MethodGet, "/quotes/"+resp.QuoteID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, resp.QuoteID, got.ID)
	require.Equal(t, "Acme", got.Customer)
	require.Equal(t, 30.0, got.Total)
	require.NotNil(t, got.Estimate)
	require.Len(t, got.Estimate.LineItems, 1)

	rec = do(t, s, http.MethodGet, "/quotes/"+resp.QuoteID+"?format=markdown", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), ".md")
	require.Contains(t, rec.Body.String(), "| SKU |")

	rec = do(t, s, http.MethodDelete, "/quotes/"+resp.QuoteID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/quotes/"+resp.QuoteID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", decodeBody(t, rec)["error"])
}

func TestQuotesWithoutStore(t *testing.T) {
	s := testServer(t, nil)

	rec := do(t, s, http.MethodGet, "/quotes", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, s, http.MethodPost, "/estimate", `{"line_items": [{"sku": "A", "quantity": 1}], "save": true}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListQuotesRejectsBadParams(t *testing.T) {
	s := testServer(t, storage.NewMemoryStore())

	tests := []struct {
		query string
		field string
	}{
		{query: "limit=-1", field: "limit"},
		{query: "offset=x", field: "offset"},
		{query: "since=yesterday", field: "since"},
		{query: "until=2025-13-01", field: "until"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/quotes?"+tt.query, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, tt.field, decodeBody(t, rec)["field"])
		})
	}
}

func TestCatalogHealthVersion(t *testing.T) {
	s := testServer(t, nil)

	rec := do(t, s, http.MethodGet, "/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var catalogResp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalogResp))
	require.Equal(t, 8, catalogResp.Count)
	require.Equal(t, "A", catalogResp.Items[0].SKU)
	require.Contains(t, catalogResp.Categories, "gate")

	rec = do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody(t, rec)["status"])

	rec = do(t, s, http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "test", decodeBody(t, rec)["version"])
}
