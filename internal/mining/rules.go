package mining

import (
	"sort"

	"github.com/segmint/segmint/internal/model"
)

// generateRules derives association rules from frequent itemsets: every
// non-trivial split of each itemset of size >= 2 becomes a candidate
// (antecedent -> consequent), kept when it clears the confidence and
// lift thresholds. Antecedent and consequent are disjoint by
// construction.
//
// Rules are ranked by lift descending, confidence breaking ties.
func generateRules(supports map[string]float64, cluster int, minConfidence, minLift float64) []model.AssociationRule {
	var rules []model.AssociationRule

	keys := make([]string, 0, len(supports))
	for key := range supports {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		items := keyItems(key)
		if len(items) < 2 {
			continue
		}
		itemsetSupport := supports[key]

		// Enumerate proper, non-empty subsets by bitmask.
		for mask := 1; mask < (1<<len(items))-1; mask++ {
			antecedent := make([]string, 0, len(items))
			consequent := make([]string, 0, len(items))
			for i, item := range items {
				if mask&(1<<i) != 0 {
					antecedent = append(antecedent, item)
				} else {
					consequent = append(consequent, item)
				}
			}

			// Subsets of a frequent itemset are always frequent, so both
			// supports are present.
			antSupport := supports[itemsetKey(antecedent)]
			conSupport := supports[itemsetKey(consequent)]
			if antSupport == 0 || conSupport == 0 {
				continue
			}

			confidence := itemsetSupport / antSupport
			lift := confidence / conSupport
			if confidence < minConfidence || lift < minLift {
				continue
			}

			rules = append(rules, model.AssociationRule{
				Cluster:        cluster,
				Antecedent:     antecedent,
				Consequent:     consequent,
				Support:        itemsetSupport,
				Confidence:     confidence,
				Lift:           lift,
				Interpretation: model.InterpretLift(lift),
			})
		}
	}

	sort.SliceStable(rules, func(a, b int) bool {
		if rules[a].Lift != rules[b].Lift {
			return rules[a].Lift > rules[b].Lift
		}
		return rules[a].Confidence > rules[b].Confidence
	})
	return rules
}
