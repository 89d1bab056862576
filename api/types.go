// Package api - API types for fence estimates
// These types define the wire contract for the estimate endpoints.
// Requests decode numbers exactly; responses carry plain JSON numbers.
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"fencecost/adapters/storage"
	"fencecost/core/catalog"
	"fencecost/core/output"
	"fencecost/core/types"
)

// LineItemRequest is one requested SKU
type LineItemRequest struct {
	SKU      string          `json:"sku"`
	Quantity decimal.Decimal `json:"quantity"`
}

// QuoteOptions are the presentation fields shared by every request
type QuoteOptions struct {
	CustomerName string `json:"customer_name,omitempty"`
	ProjectName  string `json:"project_name,omitempty"`

	// IncludePDF adds the rendered document as base64
	IncludePDF bool `json:"include_pdf,omitempty"`

	// Format selects the embedded document format; defaults to pdf
	Format string `json:"format,omitempty"`

	// Save stores the quote and returns its ID
	Save bool `json:"save,omitempty"`
}

// EstimateRequest is the input to POST /estimate
type EstimateRequest struct {
	LineItems  []LineItemRequest `json:"line_items"`
	LaborHours decimal.Decimal   `json:"labor_hours"`
	LaborRate  decimal.Decimal   `json:"labor_rate"`
	MarginPct  decimal.Decimal   `json:"margin_pct"`
	QuoteOptions
}

// FenceEstimateRequest is the input to POST /estimate_fence
type FenceEstimateRequest struct {
	FenceLengthFt decimal.Decimal  `json:"fence_length_ft"`
	Style         string           `json:"style,omitempty"`
	PostsPerFt    *decimal.Decimal `json:"posts_per_ft,omitempty"`
	Gates         int              `json:"gates"`
	LaborHours    decimal.Decimal  `json:"labor_hours"`
	LaborRate     decimal.Decimal  `json:"labor_rate"`
	MarginPct     decimal.Decimal  `json:"margin_pct"`
	QuoteOptions
}

// PORequest is the input to POST /po
type PORequest struct {
	LineItems    []LineItemRequest `json:"line_items"`
	CustomerName string            `json:"customer_name,omitempty"`
	ProjectName  string            `json:"project_name,omitempty"`
}

// LineItemResponse is a priced line on the wire
type LineItemResponse struct {
	SKU           string  `json:"sku"`
	Description   string  `json:"description"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	UnitPrice     float64 `json:"unit_price"`
	ExtendedPrice float64 `json:"extended_price"`
}

// EstimateResponse is the output of both estimate endpoints
type EstimateResponse struct {
	MaterialsSubtotal float64            `json:"materials_subtotal"`
	LaborHours        float64            `json:"labor_hours"`
	LaborRate         float64            `json:"labor_rate"`
	LaborTotal        float64            `json:"labor_total"`
	Subtotal          float64            `json:"subtotal"`
	MarginPct         float64            `json:"margin_pct"`
	MarginAmount      float64            `json:"margin_amount"`
	Total             float64            `json:"total"`
	LineItems         []LineItemResponse `json:"line_items"`

	// QuoteID is set when the quote was saved
	QuoteID string `json:"quote_id,omitempty"`

	// PDFBase64 holds the rendered document when include_pdf was set
	PDFBase64 string `json:"pdf_base64,omitempty"`
}

// CatalogItemResponse is a pricebook entry on the wire
type CatalogItemResponse struct {
	SKU         string   `json:"sku"`
	Description string   `json:"description"`
	Unit        string   `json:"unit"`
	UnitPrice   float64  `json:"unit_price"`
	UnitCost    *float64 `json:"unit_cost,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// CatalogResponse is the output of GET /catalog
type CatalogResponse struct {
	Items      []CatalogItemResponse `json:"items"`
	Count      int                   `json:"count"`
	Categories []string              `json:"categories"`
}

// QuoteSummary is one entry of GET /quotes
type QuoteSummary struct {
	ID        string      `json:"id"`
	Customer  string      `json:"customer,omitempty"`
	Project   string      `json:"project,omitempty"`
	Kind      output.Kind `json:"kind"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
}

// money converts a currency amount for the wire
func money(d decimal.Decimal) float64 {
	return types.RoundMoney(d).InexactFloat64()
}

// NewEstimateResponse converts a breakdown for the wire
func NewEstimateResponse(b *types.EstimateBreakdown) *EstimateResponse {
	resp := &EstimateResponse{
		MaterialsSubtotal: money(b.MaterialsSubtotal),
		LaborHours:        b.LaborHours.InexactFloat64(),
		LaborRate:         b.LaborRate.InexactFloat64(),
		LaborTotal:        money(b.LaborTotal),
		Subtotal:          money(b.Subtotal),
		MarginPct:         b.MarginPct.InexactFloat64(),
		MarginAmount:      money(b.MarginAmount),
		Total:             money(b.Total),
		LineItems:         make([]LineItemResponse, 0, len(b.LineItems)),
	}
	for _, line := range b.LineItems {
		resp.LineItems = append(resp.LineItems, LineItemResponse{
			SKU:           line.SKU,
			Description:   line.Description,
			Quantity:      line.Quantity.InexactFloat64(),
			Unit:          line.Unit,
			UnitPrice:     line.UnitPrice.InexactFloat64(),
			ExtendedPrice: money(line.ExtendedPrice),
		})
	}
	return resp
}

// NewCatalogResponse lists the catalog in pricebook order
func NewCatalogResponse(c *catalog.Catalog) *CatalogResponse {
	items := c.Items()
	resp := &CatalogResponse{
		Items:      make([]CatalogItemResponse, 0, len(items)),
		Count:      len(items),
		Categories: c.Categories(),
	}
	for _, item := range items {
		entry := CatalogItemResponse{
			SKU:         item.SKU,
			Description: item.Description,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice.InexactFloat64(),
			Category:    item.Category,
		}
		if item.UnitCost != nil {
			cost := item.UnitCost.InexactFloat64()
			entry.UnitCost = &cost
		}
		resp.Items = append(resp.Items, entry)
	}
	return resp
}

// NewQuoteSummary converts a stored quote for listing
func NewQuoteSummary(q *storage.StoredQuote) QuoteSummary {
	return QuoteSummary{
		ID:        q.ID,
		Customer:  q.Customer,
		Project:   q.Project,
		Kind:      q.Kind,
		Total:     money(q.Total),
		CreatedAt: q.CreatedAt,
	}
}

// QuoteResponse is the output of GET /quotes/{id}
type QuoteResponse struct {
	QuoteSummary
	Currency types.Currency    `json:"currency"`
	Estimate *EstimateResponse `json:"estimate,omitempty"`
}

// NewQuoteResponse converts a stored quote with its breakdown
func NewQuoteResponse(q *storage.StoredQuote) *QuoteResponse {
	resp := &QuoteResponse{QuoteSummary: NewQuoteSummary(q)}
	if q.Quote != nil {
		resp.Currency = q.Quote.Currency
		if q.Quote.Breakdown != nil {
			resp.Estimate = NewEstimateResponse(q.Quote.Breakdown)
		}
	}
	return resp
}
