package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fencecost/core/types"
	"fencecost/internal/errors"
)

// canonical pricebook columns
const (
	fieldSKU         = "sku"
	fieldDescription = "description"
	fieldUnit        = "unit"
	fieldUnitPrice   = "unit_price"
	fieldUnitCost    = "unit_cost"
	fieldCategory    = "category"
)

var fieldOrder = []string{fieldSKU, fieldDescription, fieldUnit, fieldUnitPrice, fieldUnitCost, fieldCategory}

var fieldAliases = map[string][]string{
	fieldSKU:         {"sku", "item", "item_code"},
	fieldDescription: {"description", "desc", "name"},
	fieldUnit:        {"unit", "uom"},
	fieldUnitPrice:   {"unit_price", "price", "sell_price"},
	fieldUnitCost:    {"unit_cost", "cost"},
	fieldCategory:    {"category", "group"},
}

var requiredFields = []string{fieldSKU, fieldDescription, fieldUnit, fieldUnitPrice}

// headerMap maps canonical fields to column positions
type headerMap map[string]int

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

func buildHeaderMap(headers []string) (headerMap, error) {
	// a repeated header resolves to its last column
	positions := make(map[string]int, len(headers))
	for i, h := range headers {
		positions[normalizeHeader(h)] = i
	}

	m := make(headerMap)
	for _, field := range fieldOrder {
		for _, alias := range fieldAliases[field] {
			if pos, ok := positions[alias]; ok {
				m[field] = pos
				break
			}
		}
	}

	var missing []string
	for _, field := range requiredFields {
		if _, ok := m[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Newf(errors.TypeParsing, "pricebook is missing required columns: %s", strings.Join(missing, ", "))
	}
	return m, nil
}

func (m headerMap) get(row []string, field string) string {
	pos, ok := m[field]
	if !ok || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseRows converts a header row plus data rows into catalog items. rowNum
// is the 1-based sheet row of the first data row, for error messages.
func parseRows(headers []string, rows [][]string, rowNum int) ([]types.CatalogItem, error) {
	m, err := buildHeaderMap(headers)
	if err != nil {
		return nil, err
	}

	items := make([]types.CatalogItem, 0, len(rows))
	for i, row := range rows {
		n := rowNum + i

		sku := m.get(row, fieldSKU)
		if sku == "" {
			if blankRow(row) {
				continue
			}
			return nil, errors.Newf(errors.TypeParsing, "row %d: missing SKU", n)
		}

		rawPrice := m.get(row, fieldUnitPrice)
		if rawPrice == "" {
			return nil, errors.Newf(errors.TypeParsing, "row %d (SKU %s): missing unit_price/price", n, sku)
		}
		price, err := decimal.NewFromString(rawPrice)
		if err != nil {
			return nil, errors.Parsing(fmt.Sprintf("row %d (SKU %s): invalid unit_price '%s'", n, sku, rawPrice), err)
		}
		if price.IsNegative() {
			return nil, errors.Newf(errors.TypeParsing, "row %d (SKU %s): unit_price must be non-negative, got %s", n, sku, rawPrice)
		}

		item := types.CatalogItem{
			SKU:         sku,
			Description: m.get(row, fieldDescription),
			Unit:        m.get(row, fieldUnit),
			UnitPrice:   price,
			Category:    m.get(row, fieldCategory),
		}
		if rawCost := m.get(row, fieldUnitCost); rawCost != "" {
			// unparseable costs are dropped; cost is informational only
			if c, err := decimal.NewFromString(rawCost); err == nil {
				item.UnitCost = &c
			}
		}
		items = append(items, item)
	}
	return items, nil
}
