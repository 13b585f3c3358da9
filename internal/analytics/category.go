package analytics

import (
	"strings"

	"github.com/newhope/newhope-admin/internal/masterdata/categories"
	"github.com/newhope/newhope-admin/internal/masterdata/products"
)

// UnclassifiedLabel names the bucket for products without a known category.
const UnclassifiedLabel = "unclassified"

// ByCategory counts products per category label. Every category gets a
// bucket, in category order, even when empty; duplicate labels share one.
// Products whose type matches no category land in UnclassifiedLabel, which
// is appended last and only when used.
func ByCategory(items []products.Product, cats []categories.Category) Series[int] {
	out := make(Series[int], 0, len(cats)+1)
	index := make(map[string]int, len(cats))
	for _, c := range cats {
		label := strings.TrimSpace(c.Type)
		if label == "" {
			continue
		}
		if _, seen := index[label]; seen {
			continue
		}
		index[label] = len(out)
		out = append(out, Point[int]{Label: label})
	}
	unclassified := -1
	for _, p := range items {
		if i, ok := index[p.Category()]; ok {
			out[i].Value++
			continue
		}
		if unclassified < 0 {
			unclassified = len(out)
			out = append(out, Point[int]{Label: UnclassifiedLabel})
		}
		out[unclassified].Value++
	}
	return out
}
