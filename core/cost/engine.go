package cost

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fencecost/core/bom"
	"fencecost/core/catalog"
	"fencecost/core/types"
)

// Engine binds a pricebook and fence ratios for repeated estimates.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	builder *bom.Builder
	logger  *zap.Logger
}

// NewEngine creates an engine over c
func NewEngine(c *catalog.Catalog, ratios bom.Ratios, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog: c,
		builder: bom.NewBuilder(ratios),
		logger:  logger,
	}
}

// Catalog returns the bound pricebook
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Estimate prices explicit line items
func (e *Engine) Estimate(lines []types.LineItem, labor types.Labor, marginPct decimal.Decimal) (*types.EstimateBreakdown, error) {
	breakdown, err := Calculate(e.catalog, lines, labor, marginPct)
	if err != nil {
		e.logger.Debug("estimate rejected", zap.Int("lines", len(lines)), zap.Error(err))
		return nil, err
	}
	e.logger.Debug("estimate calculated",
		zap.Int("lines", len(lines)),
		zap.String("total", breakdown.Total.StringFixed(types.MoneyPlaces)))
	return breakdown, nil
}

// BuildFence returns the bill of materials for fence
func (e *Engine) BuildFence(fence types.FenceParams) ([]types.LineItem, error) {
	return e.builder.Build(e.catalog, fence)
}

// EstimateFence sizes a fence and prices the resulting BOM
func (e *Engine) EstimateFence(fence types.FenceParams, labor types.Labor, marginPct decimal.Decimal) (*types.EstimateBreakdown, error) {
	lines, err := e.BuildFence(fence)
	if err != nil {
		e.logger.Debug("fence bom rejected", zap.Error(err))
		return nil, err
	}
	return e.Estimate(lines, labor, marginPct)
}

// PurchaseOrder prices materials only
func (e *Engine) PurchaseOrder(lines []types.LineItem) (*types.EstimateBreakdown, error) {
	return e.Estimate(lines, types.Labor{}, decimal.Zero)
}
