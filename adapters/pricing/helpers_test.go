package pricing

import "fencecost/core/types"

func skus(items []types.CatalogItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.SKU
	}
	return out
}
