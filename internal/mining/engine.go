// Package mining builds per-cluster transaction baskets, mines frequent
// itemsets with Apriori and derives ranked association rules.
package mining

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/segmint/segmint/internal/common"
	"github.com/segmint/segmint/internal/model"
)

// Config holds the mining thresholds.
type Config struct {
	// Progress, when set, is called as each cluster finishes.
	Progress      func(done, total int)
	MinSupport    float64
	MinConfidence float64
	MinLift       float64
	// MinBaskets is the minimum multi-item basket count a cluster needs
	// to be mined; below it the cluster is skipped, not failed.
	MinBaskets int
}

// DefaultConfig mirrors the canonical thresholds: 1% support, 20%
// confidence, positive lift, at least 5 baskets per cluster.
func DefaultConfig() Config {
	return Config{
		MinSupport:    0.01,
		MinConfidence: 0.2,
		MinLift:       1.0,
		MinBaskets:    5,
	}
}

// Result aggregates mining output across clusters.
type Result struct {
	// Rules is the combined rule table, ordered by cluster then rank.
	Rules []model.AssociationRule
	// Skipped lists clusters excluded from mining and why.
	Skipped []model.SkippedCluster
	// Cooccurrence is populated only when no cluster yielded any rule:
	// a diagnostic pair-count table over all multi-item baskets.
	Cooccurrence []model.CooccurrencePair
}

// Mine runs Apriori independently for every cluster and merges the
// results. Clusters are embarrassingly parallel: each goroutine works on
// its own basket set and writes to its own slot. A per-cluster failure
// (including too few baskets) skips that cluster and never aborts the
// run.
func Mine(ctx context.Context, txns []model.Transaction, features []*model.CustomerFeatures, k int, cfg Config) (Result, error) {
	if err := validate(cfg); err != nil {
		return Result{}, err
	}

	customersByCluster := make([]map[int64]bool, k)
	for c := range customersByCluster {
		customersByCluster[c] = make(map[int64]bool)
	}
	for _, f := range features {
		if f.Cluster >= 0 && f.Cluster < k {
			customersByCluster[f.Cluster][f.CustomerID] = true
		}
	}

	outcomes := make([]clusterOutcome, k)

	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0
	for c := 0; c < k; c++ {
		if err := ctx.Err(); err != nil {
			// Drain in-flight clusters so no Progress callback fires
			// after we hand control back.
			wg.Wait()
			return Result{}, err
		}
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			outcomes[c] = mineCluster(txns, customersByCluster[c], c, cfg)
			if cfg.Progress != nil {
				mu.Lock()
				done++
				cfg.Progress(done, k)
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()

	var result Result
	for c := 0; c < k; c++ {
		result.Rules = append(result.Rules, outcomes[c].rules...)
		if outcomes[c].skipped != nil {
			result.Skipped = append(result.Skipped, *outcomes[c].skipped)
		}
	}

	if len(result.Rules) == 0 {
		slog.Warn("no association rules in any cluster; producing co-occurrence diagnostic")
		result.Cooccurrence = Cooccurrence(BuildBaskets(txns, nil))
	}

	slog.Info("mining complete",
		"clusters", k,
		"rules", len(result.Rules),
		"skipped_clusters", len(result.Skipped))

	return result, nil
}

// clusterOutcome is one cluster's mining result: either rules or a skip
// record, never both.
type clusterOutcome struct {
	skipped *model.SkippedCluster
	rules   []model.AssociationRule
}

func mineCluster(txns []model.Transaction, customers map[int64]bool, cluster int, cfg Config) (out clusterOutcome) {
	// A mining failure is contained to this cluster.
	defer func() {
		if r := recover(); r != nil {
			common.LogError(fmt.Errorf("panic: %v", r), "cluster mining failed", common.Fields{"cluster": cluster})
			out.rules = nil
			out.skipped = &model.SkippedCluster{Cluster: cluster, Reason: fmt.Sprintf("mining error: %v", r)}
		}
	}()

	baskets := BuildBaskets(txns, customers)
	if len(baskets) < cfg.MinBaskets {
		err := &common.InsufficientDataError{
			Scope:     common.ScopeCluster,
			Cluster:   cluster,
			Condition: fmt.Sprintf("%d multi-item baskets, need %d", len(baskets), cfg.MinBaskets),
		}
		slog.Warn("skipping cluster", "cluster", cluster, "reason", err.Condition)
		out.skipped = &model.SkippedCluster{
			Cluster: cluster,
			Baskets: len(baskets),
			Reason:  err.Condition,
		}
		return out
	}

	supports := frequentItemsets(baskets, cfg.MinSupport)
	out.rules = generateRules(supports, cluster, cfg.MinConfidence, cfg.MinLift)

	slog.Debug("cluster mined",
		"cluster", cluster,
		"baskets", len(baskets),
		"frequent_itemsets", len(supports),
		"rules", len(out.rules))
	return out
}

func validate(cfg Config) error {
	switch {
	case cfg.MinSupport <= 0 || cfg.MinSupport > 1:
		return &common.ConfigError{Field: "min_support", Reason: "must be in (0, 1]"}
	case cfg.MinConfidence < 0 || cfg.MinConfidence > 1:
		return &common.ConfigError{Field: "min_confidence", Reason: "must be in [0, 1]"}
	case cfg.MinLift < 0:
		return &common.ConfigError{Field: "min_lift", Reason: "must be >= 0"}
	case cfg.MinBaskets < 1:
		return &common.ConfigError{Field: "min_baskets", Reason: "must be >= 1"}
	}
	return nil
}

// TopRules returns the n highest-ranked rules for a cluster by the given
// metric ("lift" or "confidence").
func TopRules(rules []model.AssociationRule, cluster, n int, metric string) []model.AssociationRule {
	var mine []model.AssociationRule
	for _, r := range rules {
		if r.Cluster == cluster {
			mine = append(mine, r)
		}
	}
	sort.SliceStable(mine, func(a, b int) bool {
		if metric == "confidence" {
			if mine[a].Confidence != mine[b].Confidence {
				return mine[a].Confidence > mine[b].Confidence
			}
			return mine[a].Lift > mine[b].Lift
		}
		if mine[a].Lift != mine[b].Lift {
			return mine[a].Lift > mine[b].Lift
		}
		return mine[a].Confidence > mine[b].Confidence
	})
	if n > len(mine) {
		n = len(mine)
	}
	return mine[:n]
}
