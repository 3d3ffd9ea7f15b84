package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segmint/segmint/internal/model"
	"github.com/segmint/segmint/internal/pipeline"
)

func fixtureResult() *pipeline.Result {
	lift := 2.5
	confidence := 0.8
	return &pipeline.Result{
		Report: model.RunReport{
			RunID:         "run-1",
			ReferenceDate: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			Customers:     2,
			Transactions:  5,
			Categories:    2,
			SelectedK:     2,
			TotalRevenue:  123.45,
			Stages: []model.StageCount{
				{Stage: "coerce", Before: 6, After: 5, Dropped: 1},
			},
			Binning: map[string]model.BinningPolicy{
				"recency":   model.BinningWidth,
				"frequency": model.BinningQuantile,
				"monetary":  model.BinningQuantile,
			},
			SkippedClusters: []model.SkippedCluster{
				{Cluster: 1, Baskets: 0, Reason: "0 multi-item baskets, need 5"},
			},
		},
		Manifest: model.FeatureManifest{
			ScoreColumns:      []string{"r_score", "f_score", "m_score"},
			ProportionColumns: []string{"prop_apparel", "prop_drinkware"},
		},
		Features: []*model.CustomerFeatures{
			{
				CustomerID: 1, Length: 30, Recency: 2, Frequency: 5, Monetary: 100,
				RScore: 5, FScore: 4, MScore: 4, RFMScore: "544",
				Segment: model.SegmentChampions, Cluster: 0, CLV: 0.9,
				Proportions: map[string]float64{"apparel": 0.75, "drinkware": 0.25},
			},
			{
				CustomerID: 2, Length: 2, Recency: 60, Frequency: 1, Monetary: 23.45,
				RScore: 1, FScore: 1, MScore: 1, RFMScore: "111",
				Segment: model.SegmentHibernating, Cluster: 1, CLV: 0.1,
				Proportions: map[string]float64{"apparel": 0, "drinkware": 1},
			},
		},
		Profiles: []model.ClusterProfile{
			{
				ID: 0, Archetype: model.ArchetypeChampions, Description: "Recent, frequent, high-spend customers",
				Count: 1, Percent: 50, MeanRScore: 5, MeanFScore: 4, MeanMScore: 4,
				TopCategories: []model.CategoryShare{{Category: "apparel", Share: 0.75}},
			},
		},
		Rules: []model.AssociationRule{
			{
				Cluster:    0,
				Antecedent: []string{"apparel"}, Consequent: []string{"drinkware"},
				Support: 0.4, Confidence: confidence, Lift: lift,
				Interpretation: model.InterpretLift(lift),
			},
		},
		Strategies: []model.Strategy{
			{Cluster: 0, Type: model.StrategyBundling, Description: "Bundle offer: Apparel + Drinkware",
				Rationale: "Customers buying Apparel are 2.5x as likely to also buy Drinkware",
				Lift:      &lift, Confidence: &confidence},
		},
		K: 2,
	}
}

func TestWriteFeatureTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFeatureTable(&buf, fixtureResult()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	assert.Equal(t, "customer_id", header[0])
	// Proportion columns follow the manifest order.
	assert.Equal(t, "prop_apparel", header[len(header)-2])
	assert.Equal(t, "prop_drinkware", header[len(header)-1])

	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "544", rows[1][8])
	assert.Equal(t, model.SegmentChampions, rows[1][9])
	assert.Equal(t, "0.75", rows[1][len(header)-2])
	assert.Equal(t, "1", rows[2][len(header)-1])
}

func TestWriteFeatureTableDeterministic(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, WriteFeatureTable(&first, fixtureResult()))
	require.NoError(t, WriteFeatureTable(&second, fixtureResult()))
	assert.Equal(t, first.Bytes(), second.Bytes(), "identical runs produce byte-identical output")
}

func TestWriteProfiles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteProfiles(&buf, fixtureResult().Profiles))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "0", rows[1][0])
	assert.Equal(t, model.ArchetypeChampions, rows[1][1])
	assert.Contains(t, rows[1][len(rows[1])-1], "apparel")
}

func TestWriteRules(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRules(&buf, fixtureResult().Rules))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"cluster", "antecedent", "consequent", "support", "confidence", "lift", "interpretation"}, rows[0])
	assert.Equal(t, "apparel", rows[1][1])
	assert.Equal(t, "drinkware", rows[1][2])
	assert.Equal(t, "2.5", rows[1][5])
	assert.Equal(t, string(model.LiftStrong), rows[1][6])
}

func TestWriteStrategies(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStrategies(&buf, fixtureResult().Strategies))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, string(model.StrategyBundling), rows[1][1])
	assert.Equal(t, "2.5", rows[1][4])
	assert.Equal(t, "0.8", rows[1][5])
}

func TestWriteStrategiesBaselineWithoutMetrics(t *testing.T) {
	var buf bytes.Buffer
	strategies := []model.Strategy{
		{Cluster: 1, Type: model.StrategyReengagement, Description: "Win-back", Rationale: "stale"},
	}
	require.NoError(t, WriteStrategies(&buf, strategies))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[1][4], "baseline entries have no lift")
	assert.Equal(t, "", rows[1][5])
}
