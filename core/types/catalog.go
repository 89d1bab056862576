package types

import "github.com/shopspring/decimal"

// Category tags used when deriving a fence bill of materials
const (
	CategoryPost     = "post"
	CategoryRail     = "rail"
	CategoryPicket   = "picket"
	CategoryConcrete = "concrete"
	CategoryFastener = "fastener"
	CategoryGate     = "gate"
)

// CatalogItem is one priced SKU from the pricebook
type CatalogItem struct {
	// SKU uniquely identifies the item
	SKU string `json:"sku"`

	// Description is shown on quotes
	Description string `json:"description"`

	// Unit is the selling unit (e.g., "ea", "bag")
	Unit string `json:"unit"`

	// UnitPrice is the sell price per unit
	UnitPrice decimal.Decimal `json:"unit_price"`

	// UnitCost is the optional purchase cost per unit
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`

	// Category is the optional tag used for BOM selection
	Category string `json:"category,omitempty"`
}

// HasCategory reports whether the item is tagged exactly with category.
func (i CatalogItem) HasCategory(category string) bool {
	return i.Category != "" && i.Category == category
}
