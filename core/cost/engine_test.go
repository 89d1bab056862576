package cost

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"fencecost/core/bom"
	"fencecost/core/catalog"
	"fencecost/core/types"
	"fencecost/internal/logging"
)

func fenceEngine(buf *bytes.Buffer) *Engine {
	c := catalog.New(
		types.CatalogItem{SKU: "POST", Unit: "ea", UnitPrice: d("20.00"), Category: "post"},
		types.CatalogItem{SKU: "RAIL", Unit: "ea", UnitPrice: d("8.00"), Category: "rail"},
		types.CatalogItem{SKU: "PICKET", Unit: "ea", UnitPrice: d("3.00"), Category: "picket"},
		types.CatalogItem{SKU: "CONCRETE", Unit: "bag", UnitPrice: d("6.00"), Category: "concrete"},
		types.CatalogItem{SKU: "SCREWS", Unit: "box", UnitPrice: d("25.00"), Category: "fastener"},
		types.CatalogItem{SKU: "GATE", Unit: "ea", UnitPrice: d("150.00"), Category: "gate"},
	)
	logger := logging.NewWithWriter(logging.Config{Level: "debug", Format: "json"}, buf)
	return NewEngine(c, bom.DefaultRatios(), logger)
}

func TestEngineEstimateFence(t *testing.T) {
	var buf bytes.Buffer
	e := fenceEngine(&buf)

	params := types.NewFenceParams(d("100"))
	params.Gates = 1

	got, err := e.EstimateFence(params, types.Labor{Hours: d("10"), Rate: d("50")}, d("20"))
	require.NoError(t, err)
	require.Len(t, got.LineItems, 6)

	// 9*20 + 16*8 + 200*3 + 7*6 + 1*25 + 1*150
	requireMoney(t, "1125.00", got.MaterialsSubtotal)
	requireMoney(t, "1625.00", got.Subtotal)
	requireMoney(t, "325.00", got.MarginAmount)
	requireMoney(t, "1950.00", got.Total)
	require.Contains(t, buf.String(), "estimate calculated")
}

func TestEngineRejectionIsLogged(t *testing.T) {
	var buf bytes.Buffer
	e := fenceEngine(&buf)

	_, err := e.Estimate([]types.LineItem{line("NOPE", "1")}, types.Labor{}, d("0"))
	require.Error(t, err)
	require.Contains(t, buf.String(), "estimate rejected")
}

func TestEnginePurchaseOrder(t *testing.T) {
	e := NewEngine(pricebook(map[string]string{"A": "10.00"}), bom.DefaultRatios(), nil)

	got, err := e.PurchaseOrder([]types.LineItem{line("A", "3")})
	require.NoError(t, err)
	requireMoney(t, "30.00", got.Total)
	require.Equal(t, 1, e.Catalog().Len())
}
