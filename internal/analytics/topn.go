package analytics

import (
	"sort"
	"strings"

	"github.com/newhope/newhope-admin/internal/orders"
)

// TopServices returns the n most demanded line item titles across records,
// weighting each line by its quantity. Ties keep first-encounter order.
func TopServices(records []orders.Order, n int) Series[int] {
	if n <= 0 {
		return Series[int]{}
	}
	var tally Series[int]
	index := make(map[string]int)
	for _, rec := range records {
		for _, item := range rec.Services {
			title := strings.TrimSpace(item.Title)
			if title == "" {
				continue
			}
			i, ok := index[title]
			if !ok {
				i = len(tally)
				index[title] = i
				tally = append(tally, Point[int]{Label: title})
			}
			tally[i].Value += item.Quantity.Int()
		}
	}
	sort.SliceStable(tally, func(i, j int) bool { return tally[i].Value > tally[j].Value })
	if len(tally) > n {
		tally = tally[:n]
	}
	if tally == nil {
		return Series[int]{}
	}
	return tally
}
