// Package strategy maps cluster profiles and mined rules to concrete
// promotional recommendations.
package strategy

import (
	"fmt"

	"github.com/segmint/segmint/internal/mining"
	"github.com/segmint/segmint/internal/model"
)

// topRulesPerType bounds how many bundling and cross-sell entries each
// cluster receives.
const topRulesPerType = 3

// Synthesize builds the ordered strategy list for every profiled
// cluster: bundling entries from the highest-lift rules, cross-sell
// entries from the highest-confidence rules (never repeating a rule
// already used for bundling), and an RFM-baseline entry that guarantees
// the list is never empty.
func Synthesize(profiles []model.ClusterProfile, rules []model.AssociationRule) []model.Strategy {
	var out []model.Strategy
	for _, p := range profiles {
		out = append(out, forCluster(p, rules)...)
	}
	return out
}

func forCluster(p model.ClusterProfile, rules []model.AssociationRule) []model.Strategy {
	var strategies []model.Strategy
	seen := make(map[string]bool)
	ruleKey := func(r model.AssociationRule) string {
		return fmt.Sprintf("%v->%v", r.Antecedent, r.Consequent)
	}

	for _, r := range mining.TopRules(rules, p.ID, topRulesPerType, "lift") {
		strategies = append(strategies, model.Strategy{
			Cluster: p.ID,
			Type:    model.StrategyBundling,
			Description: fmt.Sprintf("Bundle offer: %s + %s",
				model.HumanizeCategories(r.Antecedent), model.HumanizeCategories(r.Consequent)),
			Rationale: fmt.Sprintf("Customers buying %s are %.1fx as likely to also buy %s",
				model.HumanizeCategories(r.Antecedent), r.Lift, model.HumanizeCategories(r.Consequent)),
			Lift:       &r.Lift,
			Confidence: &r.Confidence,
		})
		seen[ruleKey(r)] = true
	}

	// Cross-sell entries reuse the confidence ranking but never repeat a
	// rule already surfaced as a bundle.
	for _, r := range mining.TopRules(rules, p.ID, topRulesPerType, "confidence") {
		if seen[ruleKey(r)] {
			continue
		}
		strategies = append(strategies, model.Strategy{
			Cluster: p.ID,
			Type:    model.StrategyCrossSelling,
			Description: fmt.Sprintf("When customers buy %s, recommend %s",
				model.HumanizeCategories(r.Antecedent), model.HumanizeCategories(r.Consequent)),
			Rationale: fmt.Sprintf("%.0f%% of customers buying %s also buy %s",
				r.Confidence*100, model.HumanizeCategories(r.Antecedent), model.HumanizeCategories(r.Consequent)),
			Lift:       &r.Lift,
			Confidence: &r.Confidence,
		})
		seen[ruleKey(r)] = true
	}

	// The RFM baseline always applies, so every cluster ends up with at
	// least one strategy.
	strategies = append(strategies, baseline(p))
	return strategies
}

// baseline picks exactly one strategy category from the cluster's mean
// RFM scores using a fixed, total decision table.
func baseline(p model.ClusterProfile) model.Strategy {
	switch {
	case p.MeanRScore >= 4 && p.MeanFScore >= 4:
		return model.Strategy{
			Cluster:     p.ID,
			Type:        model.StrategyLoyalty,
			Description: "VIP program for high-value customers",
			Rationale:   "Recent and frequent buyers; reward to retain",
		}
	case p.MeanRScore <= 2:
		return model.Strategy{
			Cluster:     p.ID,
			Type:        model.StrategyReengagement,
			Description: "Win-back campaign with targeted discounts",
			Rationale:   "Long since last purchase; needs reactivation",
		}
	case p.MeanFScore <= 2:
		return model.Strategy{
			Cluster:     p.ID,
			Type:        model.StrategyRetention,
			Description: "Purchase-frequency program with reminders and launches",
			Rationale:   "Infrequent buyers; nudge toward regular purchases",
		}
	default:
		return model.Strategy{
			Cluster:     p.ID,
			Type:        model.StrategyEngagement,
			Description: "Personalized recommendations and loyalty points",
			Rationale:   "Growth-potential cluster; deepen engagement",
		}
	}
}
