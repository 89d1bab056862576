// Package catalog - Catalog validation
package catalog

import (
	"fmt"

	"fencecost/core/types"
)

// ValidationRule is a catalog validation rule
type ValidationRule func(types.CatalogItem) error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateSKU,
		validateUnitPrice,
		validateUnitCost,
	}
}

// Validate checks every item against rules and returns all violations
func (c *Catalog) Validate(rules []ValidationRule) []error {
	var errs []error
	for _, item := range c.items {
		for _, rule := range rules {
			if err := rule(item); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", item.SKU, err))
			}
		}
	}
	return errs
}

// MissingCategories lists required fence categories with no matching item.
func (c *Catalog) MissingCategories(required []string) []string {
	var missing []string
	for _, category := range required {
		if _, err := c.FirstByCategory(category); err != nil {
			missing = append(missing, category)
		}
	}
	return missing
}

func validateSKU(item types.CatalogItem) error {
	if item.SKU == "" {
		return fmt.Errorf("empty SKU")
	}
	return nil
}

func validateUnitPrice(item types.CatalogItem) error {
	if item.UnitPrice.IsNegative() {
		return fmt.Errorf("unit_price must be non-negative, got %s", item.UnitPrice)
	}
	return nil
}

func validateUnitCost(item types.CatalogItem) error {
	if item.UnitCost != nil && item.UnitCost.IsNegative() {
		return fmt.Errorf("unit_cost must be non-negative, got %s", item.UnitCost)
	}
	return nil
}
