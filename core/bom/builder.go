// Package bom derives a fence bill of materials from coarse job parameters.
package bom

import (
	"github.com/shopspring/decimal"

	"fencecost/core/catalog"
	"fencecost/core/types"
	"fencecost/internal/errors"
)

// RequiredCategories must each resolve to a pricebook item, in output order.
var RequiredCategories = []string{
	types.CategoryPost,
	types.CategoryRail,
	types.CategoryPicket,
	types.CategoryConcrete,
	types.CategoryFastener,
}

// Quantities are the computed material counts for a fence
type Quantities struct {
	Posts     int64
	Rails     int64
	Pickets   int64
	Concrete  int64
	Fasteners int64
	Gates     int64
}

// Builder sizes fences using a fixed set of ratios
type Builder struct {
	ratios Ratios
}

// NewBuilder creates a builder with ratios
func NewBuilder(ratios Ratios) *Builder {
	return &Builder{ratios: ratios}
}

// BuildFence sizes a fence with the default ratios.
func BuildFence(c *catalog.Catalog, fence types.FenceParams) ([]types.LineItem, error) {
	return NewBuilder(DefaultRatios()).Build(c, fence)
}

// Validate checks fence parameters before sizing
func Validate(fence types.FenceParams) error {
	if !fence.LengthFt.IsPositive() {
		return errors.Validation("fence_length_ft", "fence_length_ft must be positive, got %s", fence.LengthFt)
	}
	if !fence.PostsPerFt.IsPositive() {
		return errors.Validation("posts_per_ft", "posts_per_ft must be positive, got %s", fence.PostsPerFt)
	}
	if fence.Gates < 0 {
		return errors.Validation("gates", "gates must be non-negative, got %d", fence.Gates)
	}
	return nil
}

// Quantities computes material counts for fence without touching the pricebook.
func (b *Builder) Quantities(fence types.FenceParams) Quantities {
	r := b.ratios

	// Required lines never drop below one unit, whatever the ratios.
	posts := max(2, r.MinPosts, ceil(fence.LengthFt.Mul(fence.PostsPerFt)))
	rails := max(1, (posts-1)*r.RailsPerSection)
	pickets := max(1, ceil(fence.LengthFt.Mul(r.PicketDensity(fence.Style))))
	concrete := max(1, ceil(decimal.NewFromInt(posts).Mul(r.ConcreteBagsPerPost)))
	fasteners := max(1, r.MinFastenerBoxes)
	if r.PicketsPerFastenerBox.IsPositive() {
		fasteners = max(fasteners, ceil(decimal.NewFromInt(pickets).Div(r.PicketsPerFastenerBox)))
	}

	return Quantities{
		Posts:     posts,
		Rails:     rails,
		Pickets:   pickets,
		Concrete:  concrete,
		Fasteners: fasteners,
		Gates:     max(0, int64(fence.Gates)),
	}
}

// Build returns the fence demands in the order post, rail, picket, concrete,
// fastener and, when requested and stocked, gate. A missing required category
// aborts the whole BOM; a missing gate item only drops the gate line.
func (b *Builder) Build(c *catalog.Catalog, fence types.FenceParams) ([]types.LineItem, error) {
	if err := Validate(fence); err != nil {
		return nil, err
	}

	q := b.Quantities(fence)
	counts := []int64{q.Posts, q.Rails, q.Pickets, q.Concrete, q.Fasteners}

	lines := make([]types.LineItem, 0, len(RequiredCategories)+1)
	for i, category := range RequiredCategories {
		item, err := c.FirstByCategory(category)
		if err != nil {
			return nil, err
		}
		lines = append(lines, types.NewLineItem(item.SKU, counts[i]))
	}

	if q.Gates > 0 {
		if gate, err := c.FirstByCategory(types.CategoryGate); err == nil {
			lines = append(lines, types.NewLineItem(gate.SKU, q.Gates))
		}
	}

	return lines, nil
}

func ceil(d decimal.Decimal) int64 {
	return d.Ceil().IntPart()
}
