// Package envelope - Input normalization and envelope creation
// Handlers never pass raw request fields to the engine, only normalized
// envelopes, so equal requests hash and price identically.
package envelope

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fencecost/core/output"
	"fencecost/core/types"
	"fencecost/internal/errors"
)

// Envelope is the normalized, hashed representation of an API request
type Envelope struct {
	Kind output.Kind `json:"kind"`

	// Lines are explicit demands; empty for fence requests
	Lines []types.LineItem `json:"lines,omitempty"`

	// Fence is set for fence requests
	Fence *types.FenceParams `json:"fence,omitempty"`

	Labor     types.Labor     `json:"labor"`
	MarginPct decimal.Decimal `json:"margin_pct"`

	Customer string `json:"customer,omitempty"`
	Project  string `json:"project,omitempty"`

	// InputHash identifies the pricing inputs
	InputHash string `json:"input_hash"`

	NormalizedAt time.Time `json:"normalized_at"`
}

// RawLine is an unnormalized line item
type RawLine struct {
	SKU      string
	Quantity decimal.Decimal
}

// RawFence is unnormalized fence input
type RawFence struct {
	LengthFt   decimal.Decimal
	Style      string
	PostsPerFt *decimal.Decimal
	Gates      int
}

// RawInput represents unnormalized API input
type RawInput struct {
	Kind       output.Kind
	Lines      []RawLine
	Fence      *RawFence
	LaborHours decimal.Decimal
	LaborRate  decimal.Decimal
	MarginPct  decimal.Decimal
	Customer   string
	Project    string
}

// Normalizer normalizes raw input into envelopes
type Normalizer struct {
	// DefaultPostsPerFt fills fence requests that omit posts_per_ft
	DefaultPostsPerFt decimal.Decimal
}

// NewNormalizer creates a normalizer
func NewNormalizer(defaultPostsPerFt decimal.Decimal) *Normalizer {
	if !defaultPostsPerFt.IsPositive() {
		defaultPostsPerFt = types.DefaultPostsPerFt
	}
	return &Normalizer{DefaultPostsPerFt: defaultPostsPerFt}
}

// Normalize validates raw input and transforms it into a deterministic envelope
func (n *Normalizer) Normalize(raw RawInput) (*Envelope, error) {
	env := &Envelope{
		Kind:         raw.Kind,
		Labor:        types.Labor{Hours: raw.LaborHours, Rate: raw.LaborRate},
		MarginPct:    raw.MarginPct,
		Customer:     strings.TrimSpace(raw.Customer),
		Project:      strings.TrimSpace(raw.Project),
		NormalizedAt: time.Now().UTC(),
	}
	if env.Kind == "" {
		env.Kind = output.KindEstimate
	}

	if raw.Fence != nil {
		fence, err := n.normalizeFence(raw.Fence)
		if err != nil {
			return nil, err
		}
		env.Fence = fence
	} else {
		if len(raw.Lines) == 0 {
			return nil, errors.Validation("line_items", "At least one line item is required")
		}
		lines, err := normalizeLines(raw.Lines)
		if err != nil {
			return nil, err
		}
		env.Lines = lines
	}

	if env.Kind == output.KindPurchaseOrder {
		env.Labor = types.Labor{Hours: decimal.Zero, Rate: decimal.Zero}
		env.MarginPct = decimal.Zero
	}
	if env.Labor.Hours.IsNegative() {
		return nil, errors.Validation("labor_hours", "labor_hours must be greater than or equal to 0")
	}
	if env.Labor.Rate.IsNegative() {
		return nil, errors.Validation("labor_rate", "labor_rate must be greater than or equal to 0")
	}
	if env.MarginPct.IsNegative() {
		return nil, errors.Validation("margin_pct", "margin_pct must be greater than or equal to 0")
	}

	env.InputHash = computeInputHash(env)
	return env, nil
}

func normalizeLines(raw []RawLine) ([]types.LineItem, error) {
	lines := make([]types.LineItem, 0, len(raw))
	for i, line := range raw {
		sku := strings.TrimSpace(line.SKU)
		if sku == "" {
			return nil, errors.Validation(fmt.Sprintf("line_items[%d].sku", i), "line_items[%d].sku is required", i)
		}
		if !line.Quantity.IsPositive() {
			return nil, errors.Validation(fmt.Sprintf("line_items[%d].quantity", i),
				"line_items[%d].quantity must be greater than 0", i)
		}
		lines = append(lines, types.LineItem{SKU: sku, Quantity: line.Quantity})
	}
	return lines, nil
}

func (n *Normalizer) normalizeFence(raw *RawFence) (*types.FenceParams, error) {
	fence := types.NewFenceParams(raw.LengthFt)
	fence.PostsPerFt = n.DefaultPostsPerFt
	if style := strings.TrimSpace(raw.Style); style != "" {
		fence.Style = style
	}
	if raw.PostsPerFt != nil {
		fence.PostsPerFt = *raw.PostsPerFt
	}
	fence.Gates = raw.Gates

	if !fence.LengthFt.IsPositive() {
		return nil, errors.Validation("fence_length_ft", "fence_length_ft must be greater than 0")
	}
	if !fence.PostsPerFt.IsPositive() {
		return nil, errors.Validation("posts_per_ft", "posts_per_ft must be greater than 0")
	}
	if fence.Gates < 0 {
		return nil, errors.Validation("gates", "gates must be greater than or equal to 0")
	}
	return &fence, nil
}

func computeInputHash(env *Envelope) string {
	// Hash only the fields that affect pricing; decimals marshal without
	// trailing zeros so 2 and 2.00 hash alike
	hashData := struct {
		Kind      output.Kind
		Lines     []types.LineItem
		Fence     *types.FenceParams
		Labor     types.Labor
		MarginPct decimal.Decimal
	}{
		Kind:      env.Kind,
		Lines:     env.Lines,
		Fence:     env.Fence,
		Labor:     env.Labor,
		MarginPct: env.MarginPct,
	}

	data, _ := json.Marshal(hashData)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash returns first 12 characters of hash
func (e *Envelope) ShortHash() string {
	if len(e.InputHash) >= 12 {
		return e.InputHash[:12]
	}
	return e.InputHash
}

// IsFence returns true for fence requests
func (e *Envelope) IsFence() bool {
	return e.Fence != nil
}
