package analytics

import "github.com/newhope/newhope-admin/internal/orders"

// ByStatus counts records per vocabulary entry after alias resolution.
// States outside the vocabulary, empty ones included, count under
// vocabulary[0].
func ByStatus(records []orders.Order, vocabulary []orders.Status, aliases orders.AliasTable) Series[int] {
	out := make(Series[int], len(vocabulary))
	if len(vocabulary) == 0 {
		return out
	}
	index := make(map[orders.Status]int, len(vocabulary))
	for i, s := range vocabulary {
		out[i] = Point[int]{Label: string(s)}
		if _, dup := index[s]; !dup {
			index[s] = i
		}
	}
	for _, rec := range records {
		i, ok := index[aliases.Resolve(rec.State)]
		if !ok {
			i = 0
		}
		out[i].Value++
	}
	return out
}
