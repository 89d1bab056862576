// Package cost prices line items against the pricebook.
// Money is kept unrounded through every intermediate step and rounded to
// currency precision only when the breakdown is assembled.
package cost

import (
	"github.com/shopspring/decimal"

	"fencecost/core/catalog"
	"fencecost/core/types"
	"fencecost/internal/errors"
)

var hundred = decimal.NewFromInt(100)

// Calculate prices lines against c and applies labor and a margin markup on
// materials plus labor. It fails on the first invalid input and never returns
// a partial breakdown. An empty line list yields a zero materials subtotal.
func Calculate(c *catalog.Catalog, lines []types.LineItem, labor types.Labor, marginPct decimal.Decimal) (*types.EstimateBreakdown, error) {
	if err := validateInputs(labor, marginPct); err != nil {
		return nil, err
	}

	priced := make([]types.PricedLine, 0, len(lines))
	materials := decimal.Zero

	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			return nil, errors.Validation("quantity", "Quantity must be positive for SKU %s", line.SKU).
				WithContext("sku", line.SKU)
		}

		item, err := c.Lookup(line.SKU)
		if err != nil {
			return nil, err
		}

		extended := line.Quantity.Mul(item.UnitPrice)
		materials = materials.Add(extended)

		priced = append(priced, types.PricedLine{
			SKU:           item.SKU,
			Description:   item.Description,
			Quantity:      line.Quantity,
			Unit:          item.Unit,
			UnitPrice:     item.UnitPrice,
			ExtendedPrice: types.RoundMoney(extended),
		})
	}

	laborTotal := labor.Hours.Mul(labor.Rate)
	subtotal := materials.Add(laborTotal)
	margin := subtotal.Mul(marginPct.Div(hundred))
	total := subtotal.Add(margin)

	return &types.EstimateBreakdown{
		MaterialsSubtotal: types.RoundMoney(materials),
		LaborHours:        types.RoundMoney(labor.Hours),
		LaborRate:         types.RoundMoney(labor.Rate),
		LaborTotal:        types.RoundMoney(laborTotal),
		Subtotal:          types.RoundMoney(subtotal),
		MarginPct:         types.RoundMoney(marginPct),
		MarginAmount:      types.RoundMoney(margin),
		Total:             types.RoundMoney(total),
		LineItems:         priced,
	}, nil
}

// PurchaseOrder prices materials only, with no labor and no margin.
func PurchaseOrder(c *catalog.Catalog, lines []types.LineItem) (*types.EstimateBreakdown, error) {
	return Calculate(c, lines, types.Labor{}, decimal.Zero)
}

func validateInputs(labor types.Labor, marginPct decimal.Decimal) error {
	switch {
	case labor.Hours.IsNegative():
		return errors.Validation("labor_hours", "labor_hours must be non-negative, got %s", labor.Hours)
	case labor.Rate.IsNegative():
		return errors.Validation("labor_rate", "labor_rate must be non-negative, got %s", labor.Rate)
	case marginPct.IsNegative():
		return errors.Validation("margin_pct", "margin_pct must be non-negative, got %s", marginPct)
	}
	return nil
}
