package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segmint/segmint/internal/model"
)

func profile(id int, meanR, meanF float64) model.ClusterProfile {
	return model.ClusterProfile{ID: id, MeanRScore: meanR, MeanFScore: meanF}
}

func rule(cluster int, antecedent, consequent string, lift, confidence float64) model.AssociationRule {
	return model.AssociationRule{
		Cluster:    cluster,
		Antecedent: []string{antecedent},
		Consequent: []string{consequent},
		Lift:       lift,
		Confidence: confidence,
		Support:    0.2,
	}
}

func TestBaselineTable(t *testing.T) {
	tests := []struct {
		name         string
		want         model.StrategyType
		meanR, meanF float64
	}{
		{name: "loyalty for recent frequent buyers", meanR: 4.5, meanF: 4.2, want: model.StrategyLoyalty},
		{name: "re-engagement for stale clusters", meanR: 1.8, meanF: 4.5, want: model.StrategyReengagement},
		{name: "retention for infrequent buyers", meanR: 3.5, meanF: 1.5, want: model.StrategyRetention},
		{name: "engagement for the middle", meanR: 3.0, meanF: 3.0, want: model.StrategyEngagement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseline(profile(0, tt.meanR, tt.meanF))
			assert.Equal(t, tt.want, s.Type)
			assert.NotEmpty(t, s.Description)
			assert.NotEmpty(t, s.Rationale)
			assert.Nil(t, s.Lift, "baseline entries carry no rule metrics")
			assert.Nil(t, s.Confidence)
		})
	}
}

func TestSynthesizeNeverEmpty(t *testing.T) {
	// No rules at all: the baseline still gives every cluster one entry.
	profiles := []model.ClusterProfile{
		profile(0, 4.5, 4.5),
		profile(1, 1.0, 1.0),
	}

	strategies := Synthesize(profiles, nil)
	require.Len(t, strategies, 2)
	assert.Equal(t, 0, strategies[0].Cluster)
	assert.Equal(t, model.StrategyLoyalty, strategies[0].Type)
	assert.Equal(t, 1, strategies[1].Cluster)
	assert.Equal(t, model.StrategyReengagement, strategies[1].Type)
}

func TestSynthesizeFromRules(t *testing.T) {
	profiles := []model.ClusterProfile{profile(0, 3.0, 3.0)}
	rules := []model.AssociationRule{
		rule(0, "apparel", "drinkware", 3.0, 0.4),
		rule(0, "drinkware", "apparel", 2.0, 0.9),
		rule(0, "bags_more", "nest_usa", 1.5, 0.6),
		rule(0, "nest_usa", "bags_more", 1.2, 0.5),
	}

	strategies := Synthesize(profiles, rules)
	require.NotEmpty(t, strategies)

	var bundling, crossSell, baselines int
	for _, s := range strategies {
		assert.Equal(t, 0, s.Cluster)
		switch s.Type {
		case model.StrategyBundling:
			bundling++
			require.NotNil(t, s.Lift)
			assert.Contains(t, s.Description, "Bundle offer")
		case model.StrategyCrossSelling:
			crossSell++
			require.NotNil(t, s.Confidence)
		default:
			baselines++
		}
	}

	assert.Equal(t, 3, bundling, "top three rules by lift")
	assert.Equal(t, 1, crossSell, "only the confidence pick not already bundled")
	assert.Equal(t, 1, baselines, "exactly one baseline entry")

	// Baseline comes last for each cluster.
	last := strategies[len(strategies)-1]
	assert.Equal(t, model.StrategyEngagement, last.Type)
}

func TestSynthesizeRulesFromOtherClustersIgnored(t *testing.T) {
	profiles := []model.ClusterProfile{profile(0, 3.0, 3.0)}
	rules := []model.AssociationRule{rule(5, "apparel", "drinkware", 3.0, 0.9)}

	strategies := Synthesize(profiles, rules)
	require.Len(t, strategies, 1)
	assert.Equal(t, model.StrategyEngagement, strategies[0].Type)
}

func TestSynthesizeHumanizesCategories(t *testing.T) {
	profiles := []model.ClusterProfile{profile(0, 3.0, 3.0)}
	rules := []model.AssociationRule{rule(0, "office_supplies", "nest_usa", 2.5, 0.7)}

	strategies := Synthesize(profiles, rules)
	require.NotEmpty(t, strategies)
	assert.Contains(t, strategies[0].Description, "Office Supplies")
	assert.Contains(t, strategies[0].Description, "Nest Usa")
}
