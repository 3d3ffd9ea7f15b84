package mining

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segmint/segmint/internal/common"
	"github.com/segmint/segmint/internal/model"
)

func customer(id int64, cluster int) *model.CustomerFeatures {
	return &model.CustomerFeatures{CustomerID: id, Cluster: cluster}
}

func TestMinePerCluster(t *testing.T) {
	// Cluster 0 customers always buy apparel with drinkware; cluster 1
	// has only single-item transactions and must be skipped, not fail.
	var txns []model.Transaction
	txnID := int64(100)
	for c := int64(1); c <= 3; c++ {
		for i := 0; i < 3; i++ {
			txns = append(txns,
				basketTxn(c, txnID, "apparel"),
				basketTxn(c, txnID, "drinkware"),
			)
			txnID++
		}
	}
	for c := int64(4); c <= 5; c++ {
		txns = append(txns, basketTxn(c, txnID, "office_supplies"))
		txnID++
	}

	features := []*model.CustomerFeatures{
		customer(1, 0), customer(2, 0), customer(3, 0),
		customer(4, 1), customer(5, 1),
	}

	cfg := DefaultConfig()
	cfg.MinBaskets = 5

	result, err := Mine(context.Background(), txns, features, 2, cfg)
	require.NoError(t, err)

	require.NotEmpty(t, result.Rules)
	for _, r := range result.Rules {
		assert.Equal(t, 0, r.Cluster, "rules only from the minable cluster")
	}

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 1, result.Skipped[0].Cluster)
	assert.Equal(t, 0, result.Skipped[0].Baskets)
	assert.NotEmpty(t, result.Skipped[0].Reason)

	// Rules exist, so no co-occurrence fallback.
	assert.Empty(t, result.Cooccurrence)
}

func TestMineCooccurrenceFallback(t *testing.T) {
	// Every pair is unique, so nothing clears a 90% support floor and the
	// run falls back to the diagnostic pair counts instead of crashing.
	txns := []model.Transaction{
		basketTxn(1, 10, "a"), basketTxn(1, 10, "b"),
		basketTxn(1, 11, "c"), basketTxn(1, 11, "d"),
		basketTxn(2, 12, "e"), basketTxn(2, 12, "f"),
	}
	features := []*model.CustomerFeatures{customer(1, 0), customer(2, 0)}

	cfg := DefaultConfig()
	cfg.MinSupport = 0.9
	cfg.MinBaskets = 1

	result, err := Mine(context.Background(), txns, features, 1, cfg)
	require.NoError(t, err)
	assert.Empty(t, result.Rules)
	require.NotEmpty(t, result.Cooccurrence)
	for _, p := range result.Cooccurrence {
		assert.Equal(t, 1, p.Count)
	}
}

func TestMineSingleItemBasketsOnly(t *testing.T) {
	txns := []model.Transaction{
		basketTxn(1, 10, "a"),
		basketTxn(1, 11, "b"),
		basketTxn(2, 12, "c"),
	}
	features := []*model.CustomerFeatures{customer(1, 0), customer(2, 0)}

	result, err := Mine(context.Background(), txns, features, 1, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, result.Rules)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 0, result.Skipped[0].Baskets)
}

func TestMineCancelledContext(t *testing.T) {
	txns := []model.Transaction{
		basketTxn(1, 10, "apparel"), basketTxn(1, 10, "drinkware"),
		basketTxn(2, 11, "apparel"), basketTxn(2, 11, "drinkware"),
	}
	features := []*model.CustomerFeatures{customer(1, 0), customer(2, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Every spawned cluster must be drained before Mine returns, so a
	// caller tearing down its progress UI never sees a late callback.
	var returned atomic.Bool
	cfg := DefaultConfig()
	cfg.MinBaskets = 1
	cfg.Progress = func(_, _ int) {
		if returned.Load() {
			t.Error("progress callback fired after Mine returned")
		}
	}

	_, err := Mine(ctx, txns, features, 2, cfg)
	returned.Store(true)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMineValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero support", mutate: func(c *Config) { c.MinSupport = 0 }},
		{name: "support above one", mutate: func(c *Config) { c.MinSupport = 1.5 }},
		{name: "negative confidence", mutate: func(c *Config) { c.MinConfidence = -0.1 }},
		{name: "confidence above one", mutate: func(c *Config) { c.MinConfidence = 1.1 }},
		{name: "negative lift", mutate: func(c *Config) { c.MinLift = -1 }},
		{name: "zero min baskets", mutate: func(c *Config) { c.MinBaskets = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := Mine(context.Background(), nil, nil, 1, cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrInvalidConfig))
		})
	}
}

func TestTopRules(t *testing.T) {
	rules := []model.AssociationRule{
		{Cluster: 0, Antecedent: []string{"a"}, Consequent: []string{"b"}, Lift: 2.0, Confidence: 0.5},
		{Cluster: 0, Antecedent: []string{"b"}, Consequent: []string{"c"}, Lift: 1.2, Confidence: 0.9},
		{Cluster: 0, Antecedent: []string{"c"}, Consequent: []string{"d"}, Lift: 3.0, Confidence: 0.3},
		{Cluster: 1, Antecedent: []string{"x"}, Consequent: []string{"y"}, Lift: 9.9, Confidence: 0.99},
	}

	byLift := TopRules(rules, 0, 2, "lift")
	require.Len(t, byLift, 2)
	assert.Equal(t, 3.0, byLift[0].Lift)
	assert.Equal(t, 2.0, byLift[1].Lift)

	byConfidence := TopRules(rules, 0, 2, "confidence")
	require.Len(t, byConfidence, 2)
	assert.Equal(t, 0.9, byConfidence[0].Confidence)
	assert.Equal(t, 0.5, byConfidence[1].Confidence)

	assert.Empty(t, TopRules(rules, 7, 3, "lift"))
}
