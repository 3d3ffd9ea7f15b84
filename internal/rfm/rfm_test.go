package rfm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segmint/segmint/internal/common"
	"github.com/segmint/segmint/internal/model"
)

func txn(customer, id int64, date time.Time, category string, quantity, total float64) model.Transaction {
	return model.Transaction{
		CustomerID:    customer,
		TransactionID: id,
		Date:          date,
		Category:      category,
		Quantity:      quantity,
		TotalPrice:    total,
	}
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildFeaturesRecencyRanking(t *testing.T) {
	// Three customers whose last purchases were 1, 5 and 10 days before
	// the reference date. R scores must rank most recent highest.
	reference := day(11)
	txns := []model.Transaction{
		txn(1, 101, day(10), "apparel", 1, 10),
		txn(2, 102, day(6), "apparel", 1, 10),
		txn(3, 103, day(1), "apparel", 1, 10),
	}

	features, manifest, err := BuildFeatures(txns, reference)
	require.NoError(t, err)
	require.Len(t, features, 3)

	assert.Equal(t, 1, features[0].Recency)
	assert.Equal(t, 5, features[1].Recency)
	assert.Equal(t, 10, features[2].Recency)

	assert.Greater(t, features[0].RScore, features[1].RScore)
	assert.Greater(t, features[1].RScore, features[2].RScore)

	// Three distinct recency values cannot fill five population bins.
	assert.Equal(t, model.BinningWidth, manifest.Binning["recency"])
}

func TestBuildFeaturesAggregation(t *testing.T) {
	reference := day(11)
	txns := []model.Transaction{
		// Customer 1: two transactions, one spanning two categories.
		txn(1, 101, day(2), "apparel", 3, 30),
		txn(1, 101, day(2), "drinkware", 1, 5),
		txn(1, 102, day(8), "apparel", 2, 20),
		// Customer 2: a single transaction.
		txn(2, 201, day(5), "office_supplies", 4, 8),
	}

	features, manifest, err := BuildFeatures(txns, reference)
	require.NoError(t, err)
	require.Len(t, features, 2)

	c1 := features[0]
	assert.Equal(t, int64(1), c1.CustomerID)
	assert.Equal(t, 2, c1.Frequency, "distinct transactions, not rows")
	assert.InDelta(t, 55.0, c1.Monetary, 1e-9)
	assert.Equal(t, 3, c1.Recency)
	assert.InDelta(t, 6.0, c1.Length, 1e-9, "span between first and last purchase in days")

	c2 := features[1]
	assert.Equal(t, 1, c2.Frequency)
	assert.InDelta(t, 8.0, c2.Monetary, 1e-9)
	assert.InDelta(t, 0.0, c2.Length, 1e-9)

	// Proportions are quantity shares and sum to 1.
	assert.InDelta(t, 5.0/6.0, c1.Proportions["apparel"], 1e-9)
	assert.InDelta(t, 1.0/6.0, c1.Proportions["drinkware"], 1e-9)
	assert.InDelta(t, 1.0, c2.Proportions["office_supplies"], 1e-9)

	for _, f := range features {
		sum := 0.0
		for _, p := range f.Proportions {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 0.01)
	}

	assert.Equal(t, []string{"r_score", "f_score", "m_score"}, manifest.ScoreColumns)
	assert.Equal(t, []string{"prop_apparel", "prop_drinkware", "prop_office_supplies"}, manifest.ProportionColumns)
}

func TestBuildFeaturesScoreFields(t *testing.T) {
	reference := day(11)
	var txns []model.Transaction
	for i := int64(1); i <= 10; i++ {
		txns = append(txns, txn(i, 100+i, day(int(i)), "apparel", 1, float64(i)*10))
	}

	features, _, err := BuildFeatures(txns, reference)
	require.NoError(t, err)
	require.Len(t, features, 10)

	for _, f := range features {
		assert.GreaterOrEqual(t, f.RScore, 1)
		assert.LessOrEqual(t, f.RScore, 5)
		assert.Len(t, f.RFMScore, 3)
		assert.Equal(t, f.RScore+f.FScore+f.MScore, f.RFMTotal)
		assert.NotEmpty(t, f.Segment)
		assert.Equal(t, -1, f.Cluster, "cluster unassigned until the clustering stage")
	}

	// Ten distinct monetary values support true quintiles: exactly two
	// customers per score.
	counts := make(map[int]int)
	for _, f := range features {
		counts[f.MScore]++
	}
	for s := 1; s <= 5; s++ {
		assert.Equal(t, 2, counts[s], "m_score %d", s)
	}
}

func TestBuildFeaturesTenureWins(t *testing.T) {
	reference := day(11)
	rows := []model.Transaction{
		txn(1, 101, day(1), "apparel", 1, 10),
		txn(1, 102, day(9), "apparel", 1, 10),
	}
	rows[0].TenureMonths = 24

	features, _, err := BuildFeatures(rows, reference)
	require.NoError(t, err)
	assert.InDelta(t, 24.0, features[0].Length, 1e-9, "supplied tenure beats the observed span")
}

func TestBuildFeaturesInvariants(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, _, err := BuildFeatures(nil, day(11))
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrDataQuality))
	})

	t.Run("negative recency", func(t *testing.T) {
		// Reference date before the last transaction.
		_, _, err := BuildFeatures([]model.Transaction{
			txn(1, 101, day(10), "apparel", 1, 10),
		}, day(5))
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrDataQuality))
	})

	t.Run("non-positive monetary", func(t *testing.T) {
		_, _, err := BuildFeatures([]model.Transaction{
			txn(1, 101, day(10), "apparel", 1, 0),
		}, day(11))
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrDataQuality))
	})
}
