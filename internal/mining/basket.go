package mining

import (
	"sort"

	"github.com/segmint/segmint/internal/model"
)

// BuildBaskets groups transactions by transaction ID and collapses each
// to its set of distinct categories. Quantity and repetition within a
// transaction reduce to presence. Only baskets with at least two
// distinct categories survive: single-item baskets carry no association
// signal and are excluded before mining.
//
// When customers is non-nil, only transactions by those customers are
// considered. Baskets are returned in transaction-ID order with sorted
// items, so mining is deterministic.
func BuildBaskets(txns []model.Transaction, customers map[int64]bool) [][]string {
	sets := make(map[int64]map[string]bool)
	for _, t := range txns {
		if customers != nil && !customers[t.CustomerID] {
			continue
		}
		s, ok := sets[t.TransactionID]
		if !ok {
			s = make(map[string]bool)
			sets[t.TransactionID] = s
		}
		s[t.Category] = true
	}

	ids := make([]int64, 0, len(sets))
	for id, s := range sets {
		if len(s) >= 2 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	baskets := make([][]string, 0, len(ids))
	for _, id := range ids {
		items := make([]string, 0, len(sets[id]))
		for c := range sets[id] {
			items = append(items, c)
		}
		sort.Strings(items)
		baskets = append(baskets, items)
	}
	return baskets
}
