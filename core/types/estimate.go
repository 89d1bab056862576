package types

import "github.com/shopspring/decimal"

// LineItem is a demand for some quantity of one SKU
type LineItem struct {
	SKU      string          `json:"sku"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewLineItem is a convenience constructor for integral quantities.
func NewLineItem(sku string, quantity int64) LineItem {
	return LineItem{SKU: sku, Quantity: decimal.NewFromInt(quantity)}
}

// PricedLine is a line item priced against the pricebook
type PricedLine struct {
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`

	// ExtendedPrice is Quantity * UnitPrice rounded to currency precision
	ExtendedPrice decimal.Decimal `json:"extended_price"`
}

// Labor is the labor component of a job
type Labor struct {
	Hours decimal.Decimal `json:"hours"`
	Rate  decimal.Decimal `json:"rate"`
}

// EstimateBreakdown is the full priced result of an estimate.
// Every money field is rounded independently from unrounded intermediates,
// so the sum of displayed line prices can drift from MaterialsSubtotal by
// up to half a cent per line.
type EstimateBreakdown struct {
	MaterialsSubtotal decimal.Decimal `json:"materials_subtotal"`
	LaborHours        decimal.Decimal `json:"labor_hours"`
	LaborRate         decimal.Decimal `json:"labor_rate"`
	LaborTotal        decimal.Decimal `json:"labor_total"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	MarginPct         decimal.Decimal `json:"margin_pct"`
	MarginAmount      decimal.Decimal `json:"margin_amount"`
	Total             decimal.Decimal `json:"total"`
	LineItems         []PricedLine    `json:"line_items"`
}
