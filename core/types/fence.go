package types

import "github.com/shopspring/decimal"

// DefaultStyle is the fence style assumed when none is given
const DefaultStyle = "wood"

// DefaultPostsPerFt is roughly one post every 12 feet
var DefaultPostsPerFt = decimal.RequireFromString("0.0833")

// FenceParams are the coarse inputs for a fence job
type FenceParams struct {
	LengthFt   decimal.Decimal `json:"fence_length_ft"`
	Style      string          `json:"style"`
	PostsPerFt decimal.Decimal `json:"posts_per_ft"`
	Gates      int             `json:"gates"`
}

// NewFenceParams returns params for a wood fence with default post spacing.
func NewFenceParams(lengthFt decimal.Decimal) FenceParams {
	return FenceParams{
		LengthFt:   lengthFt,
		Style:      DefaultStyle,
		PostsPerFt: DefaultPostsPerFt,
	}
}
