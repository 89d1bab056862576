// Package catalog - Read-only pricebook lookup table
// A Catalog is built once at startup and shared by every estimate; nothing
// in this module mutates it after New returns.
package catalog

import (
	"fencecost/core/types"
	"fencecost/internal/errors"
)

// Catalog is an ordered, immutable SKU table
type Catalog struct {
	items []types.CatalogItem
	index map[string]int
}

// New builds a catalog from items in load order. A repeated SKU replaces the
// earlier record but keeps its original position.
func New(items ...types.CatalogItem) *Catalog {
	c := &Catalog{
		items: make([]types.CatalogItem, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		if pos, ok := c.index[item.SKU]; ok {
			c.items[pos] = item
			continue
		}
		c.index[item.SKU] = len(c.items)
		c.items = append(c.items, item)
	}
	return c
}

// Lookup returns the item for sku
func (c *Catalog) Lookup(sku string) (types.CatalogItem, error) {
	pos, ok := c.index[sku]
	if !ok {
		return types.CatalogItem{}, errors.Lookup("sku", sku, "SKU not found in pricebook: %s", sku)
	}
	return c.items[pos], nil
}

// Has reports whether sku is present
func (c *Catalog) Has(sku string) bool {
	_, ok := c.index[sku]
	return ok
}

// FirstByCategory returns the first item, in load order, tagged exactly with category.
func (c *Catalog) FirstByCategory(category string) (types.CatalogItem, error) {
	for _, item := range c.items {
		if item.HasCategory(category) {
			return item, nil
		}
	}
	return types.CatalogItem{}, errors.Lookup("category", category,
		"no pricebook item with category '%s'", category)
}

// Items returns a copy of all items in load order
func (c *Catalog) Items() []types.CatalogItem {
	out := make([]types.CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct SKUs
func (c *Catalog) Len() int {
	return len(c.items)
}

// Categories returns the distinct category tags in first-seen order
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range c.items {
		if item.Category == "" || seen[item.Category] {
			continue
		}
		seen[item.Category] = true
		out = append(out, item.Category)
	}
	return out
}
