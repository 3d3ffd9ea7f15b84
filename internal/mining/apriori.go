package mining

import (
	"sort"
	"strings"
)

// itemsetKey joins a sorted itemset into a map key.
const keySeparator = "\x1f"

func itemsetKey(items []string) string {
	return strings.Join(items, keySeparator)
}

func keyItems(key string) []string {
	return strings.Split(key, keySeparator)
}

// frequentItemsets enumerates all itemsets whose support meets
// minSupport, level by level. Candidate generation joins frequent
// (k-1)-itemsets sharing a prefix and prunes any candidate with an
// infrequent subset, so supersets of infrequent sets are never counted
// (support is anti-monotone).
//
// Returns itemset key -> support over the given baskets.
func frequentItemsets(baskets [][]string, minSupport float64) map[string]float64 {
	supports := make(map[string]float64)
	n := float64(len(baskets))
	if n == 0 {
		return supports
	}

	sets := make([]map[string]bool, len(baskets))
	for i, b := range baskets {
		s := make(map[string]bool, len(b))
		for _, item := range b {
			s[item] = true
		}
		sets[i] = s
	}

	// Level 1.
	counts := make(map[string]int)
	for _, b := range baskets {
		for _, item := range b {
			counts[item]++
		}
	}
	var level [][]string
	for item, c := range counts {
		if sup := float64(c) / n; sup >= minSupport {
			supports[item] = sup
			level = append(level, []string{item})
		}
	}
	sortItemsets(level)

	for len(level) > 0 {
		candidates := join(level)
		var next [][]string
		for _, candidate := range candidates {
			if !allSubsetsFrequent(candidate, supports) {
				continue
			}
			c := 0
			for _, s := range sets {
				if containsAll(s, candidate) {
					c++
				}
			}
			if sup := float64(c) / n; sup >= minSupport {
				supports[itemsetKey(candidate)] = sup
				next = append(next, candidate)
			}
		}
		level = next
	}

	return supports
}

// join merges sorted k-itemsets sharing their first k-1 items into
// (k+1)-candidates. Input and output are lexicographically ordered.
func join(level [][]string) [][]string {
	var out [][]string
	for i := 0; i < len(level); i++ {
		for j := i + 1; j < len(level); j++ {
			a, b := level[i], level[j]
			k := len(a)
			if !equalPrefix(a, b, k-1) {
				break
			}
			candidate := make([]string, k+1)
			copy(candidate, a)
			candidate[k] = b[k-1]
			out = append(out, candidate)
		}
	}
	return out
}

func equalPrefix(a, b []string, n int) bool {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// allSubsetsFrequent checks every (k-1)-subset of the candidate.
func allSubsetsFrequent(candidate []string, supports map[string]float64) bool {
	sub := make([]string, 0, len(candidate)-1)
	for skip := range candidate {
		sub = sub[:0]
		for i, item := range candidate {
			if i != skip {
				sub = append(sub, item)
			}
		}
		if _, ok := supports[itemsetKey(sub)]; !ok {
			return false
		}
	}
	return true
}

func containsAll(set map[string]bool, items []string) bool {
	for _, item := range items {
		if !set[item] {
			return false
		}
	}
	return true
}

func sortItemsets(level [][]string) {
	sort.Slice(level, func(a, b int) bool {
		return itemsetKey(level[a]) < itemsetKey(level[b])
	})
}
