package rfm

import (
	"sort"

	"github.com/segmint/segmint/internal/model"
)

// quintileScores assigns each value a score in 1..5 using equal-population
// bins over first-occurrence ranks, so duplicate values never collide on a
// bin boundary. When the metric has fewer than five distinct values the
// rank split would separate equal values arbitrarily, so it falls back to
// equal-width bins over the value range; the returned policy records
// which path was taken.
//
// With invert set, smaller values score higher (recency).
func quintileScores(values []float64, invert bool) ([]int, model.BinningPolicy) {
	n := len(values)
	scores := make([]int, n)

	distinct := make(map[float64]bool, n)
	for _, v := range values {
		distinct[v] = true
	}

	if len(distinct) < 5 {
		equalWidthScores(values, invert, scores)
		return scores, model.BinningWidth
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})

	for rank, idx := range order {
		bin := rank * 5 / n
		if invert {
			scores[idx] = 5 - bin
		} else {
			scores[idx] = bin + 1
		}
	}
	return scores, model.BinningQuantile
}

func equalWidthScores(values []float64, invert bool, scores []int) {
	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	span := maxV - minV
	if span == 0 {
		// Degenerate metric: every customer sits in the middle bin.
		for i := range scores {
			scores[i] = 3
		}
		return
	}

	for i, v := range values {
		bin := int((v - minV) / span * 5)
		if bin > 4 {
			bin = 4
		}
		if invert {
			scores[i] = 5 - bin
		} else {
			scores[i] = bin + 1
		}
	}
}
