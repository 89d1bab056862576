package bom

import (
	"github.com/shopspring/decimal"

	"fencecost/internal/errors"
)

// Ratios are the per-unit material ratios used to size a fence
type Ratios struct {
	// MinPosts is the floor on post count
	MinPosts int64 `json:"min_posts"`

	// RailsPerSection is rails between each pair of posts
	RailsPerSection int64 `json:"rails_per_section"`

	// PicketsPerFt is the picket density used for every style not listed below
	PicketsPerFt decimal.Decimal `json:"pickets_per_ft"`

	// PicketsPerFtByStyle overrides PicketsPerFt for specific styles
	PicketsPerFtByStyle map[string]decimal.Decimal `json:"pickets_per_ft_by_style,omitempty"`

	// ConcreteBagsPerPost is bags of concrete set per post
	ConcreteBagsPerPost decimal.Decimal `json:"concrete_bags_per_post"`

	// PicketsPerFastenerBox is how many pickets one box of fasteners covers
	PicketsPerFastenerBox decimal.Decimal `json:"pickets_per_fastener_box"`

	// MinFastenerBoxes is the floor on fastener boxes
	MinFastenerBoxes int64 `json:"min_fastener_boxes"`
}

// DefaultRatios returns the standard fence ratios
func DefaultRatios() Ratios {
	return Ratios{
		MinPosts:              2,
		RailsPerSection:       2,
		PicketsPerFt:          decimal.NewFromFloat(2.0),
		ConcreteBagsPerPost:   decimal.RequireFromString("0.75"),
		PicketsPerFastenerBox: decimal.NewFromInt(200),
		MinFastenerBoxes:      1,
	}
}

// PicketDensity returns pickets per foot for style.
func (r Ratios) PicketDensity(style string) decimal.Decimal {
	if d, ok := r.PicketsPerFtByStyle[style]; ok {
		return d
	}
	return r.PicketsPerFt
}

// Validate rejects ratios that could size a required line at zero.
func (r Ratios) Validate() error {
	if r.MinPosts < 2 {
		return errors.Config("estimate.ratios.min_posts must be at least 2", nil)
	}
	if r.RailsPerSection < 1 {
		return errors.Config("estimate.ratios.rails_per_section must be at least 1", nil)
	}
	if r.MinFastenerBoxes < 1 {
		return errors.Config("estimate.ratios.min_fastener_boxes must be at least 1", nil)
	}
	if !r.PicketsPerFt.IsPositive() || !r.PicketsPerFastenerBox.IsPositive() || !r.ConcreteBagsPerPost.IsPositive() {
		return errors.Config("estimate.ratios densities must be positive", nil)
	}
	for style, density := range r.PicketsPerFtByStyle {
		if !density.IsPositive() {
			return errors.Config("estimate.ratios.pickets_per_ft_by_style."+style+" must be positive", nil)
		}
	}
	return nil
}
