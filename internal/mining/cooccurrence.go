package mining

import (
	"sort"

	"github.com/segmint/segmint/internal/model"
)

// Cooccurrence counts, for every category pair, how many multi-item
// baskets contain both. It is the unfiltered diagnostic substitute used
// when mining surfaces no rules at all: pair counts are not rules and
// carry no confidence or lift.
func Cooccurrence(baskets [][]string) []model.CooccurrencePair {
	if len(baskets) == 0 {
		return nil
	}

	type pair struct{ a, b string }
	counts := make(map[pair]int)
	for _, items := range baskets {
		for i := 0; i < len(items); i++ {
			for j := i + 1; j < len(items); j++ {
				counts[pair{items[i], items[j]}]++
			}
		}
	}

	out := make([]model.CooccurrencePair, 0, len(counts))
	for p, c := range counts {
		out = append(out, model.CooccurrencePair{
			CategoryA: p.a,
			CategoryB: p.b,
			Count:     c,
			Percent:   float64(c) / float64(len(baskets)) * 100,
		})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		if out[a].CategoryA != out[b].CategoryA {
			return out[a].CategoryA < out[b].CategoryA
		}
		return out[a].CategoryB < out[b].CategoryB
	})
	return out
}
