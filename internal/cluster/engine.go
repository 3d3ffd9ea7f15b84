// Package cluster normalizes customer features, selects a cluster count
// via multiple validity indices, fits K-Means and profiles the result.
package cluster

import (
	"fmt"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/segmint/segmint/internal/common"
	"github.com/segmint/segmint/internal/model"
)

// Config controls feature selection, the k sweep and the final fit.
type Config struct {
	// Progress, when set, is called after each candidate k in the sweep.
	Progress func(done, total int)
	// K fixes the cluster count and bypasses the sweep. 0 means auto.
	K int
	// KMin and KMax bound the sweep (inclusive).
	KMin, KMax int
	// TopCategoryFeatures is how many category-proportion columns, by
	// variance, join the score features. 0 disables category signal.
	TopCategoryFeatures int
	Restarts            int
	MaxIterations       int
	Seed                int64
	Tolerance           float64
}

// DefaultConfig mirrors the canonical sweep: k in 2..10, seeded k-means++
// with 10 restarts, 300 iterations, and 5 category features.
func DefaultConfig() Config {
	return Config{
		KMin:                2,
		KMax:                10,
		TopCategoryFeatures: 5,
		Restarts:            10,
		MaxIterations:       300,
		Seed:                42,
		Tolerance:           1e-4,
	}
}

// Result is the outcome of a clustering run.
type Result struct {
	Selected  model.FeatureManifest // columns actually clustered on
	Labels    []int
	Centroids [][]float64
	Sweep     model.SweepResult
	K         int
	Metrics   model.KMetrics // validity metrics of the final fit
}

// Run selects features, standardizes them, picks k (unless fixed),
// fits the final model and writes assignments into the feature rows.
func Run(features []*model.CustomerFeatures, manifest model.FeatureManifest, cfg Config) (*Result, error) {
	n := len(features)
	requested := cfg.K
	if requested == 0 {
		requested = cfg.KMin
	}
	if n < requested {
		return nil, &common.InsufficientDataError{
			Scope:     common.ScopeRun,
			Condition: fmt.Sprintf("%d customers for k=%d", n, requested),
		}
	}

	selected := selectFeatures(features, manifest, cfg.TopCategoryFeatures)
	X := buildMatrix(features, selected)
	X = FitScaler(X).Transform(X)

	result := &Result{Selected: selected}

	if cfg.K > 0 {
		result.K = cfg.K
		result.Sweep = model.SweepResult{SelectedK: cfg.K}
	} else {
		sweep, err := sweep(X, cfg)
		if err != nil {
			return nil, err
		}
		result.Sweep = sweep
		result.K = sweep.SelectedK
	}

	final := runKMeans(X, result.K, cfg.Seed, cfg.Restarts, cfg.MaxIterations, cfg.Tolerance)
	result.Labels = final.labels
	result.Centroids = final.centroids
	result.Metrics = evaluate(X, final, result.K)

	for i, f := range features {
		f.Cluster = final.labels[i]
	}

	slog.Info("clustering complete",
		"k", result.K,
		"silhouette", result.Metrics.Silhouette,
		"davies_bouldin", result.Metrics.DaviesBouldin,
		"features", len(selected.Columns()))

	return result, nil
}

// sweep evaluates every candidate k and picks the silhouette maximizer,
// breaking ties with the lower Davies-Bouldin index. Candidates with
// k >= n are excluded rather than failing the sweep.
func sweep(X [][]float64, cfg Config) (model.SweepResult, error) {
	var out model.SweepResult
	total := cfg.KMax - cfg.KMin + 1

	for k := cfg.KMin; k <= cfg.KMax; k++ {
		if k >= len(X) {
			slog.Debug("excluding k from sweep", "k", k, "customers", len(X))
			continue
		}
		f := runKMeans(X, k, cfg.Seed, cfg.Restarts, cfg.MaxIterations, cfg.Tolerance)
		out.Metrics = append(out.Metrics, evaluate(X, f, k))
		if cfg.Progress != nil {
			cfg.Progress(k-cfg.KMin+1, total)
		}
	}

	if len(out.Metrics) == 0 {
		return out, &common.InsufficientDataError{
			Scope:     common.ScopeRun,
			Condition: fmt.Sprintf("no candidate k in [%d,%d] is below the customer count %d", cfg.KMin, cfg.KMax, len(X)),
		}
	}

	best := out.Metrics[0]
	for _, m := range out.Metrics[1:] {
		if m.Silhouette > best.Silhouette ||
			(m.Silhouette == best.Silhouette && m.DaviesBouldin < best.DaviesBouldin) {
			best = m
		}
	}
	out.SelectedK = best.K

	lowestDB := out.Metrics[0]
	for _, m := range out.Metrics[1:] {
		if m.DaviesBouldin < lowestDB.DaviesBouldin {
			lowestDB = m
		}
	}
	if lowestDB.K != best.K {
		out.AlternateK = lowestDB.K
		slog.Info("validity indices disagree on k",
			"silhouette_k", best.K, "davies_bouldin_k", lowestDB.K)
	}

	return out, nil
}

func evaluate(X [][]float64, f fit, k int) model.KMetrics {
	return model.KMetrics{
		K:                k,
		Inertia:          f.inertia,
		Silhouette:       silhouette(X, f.labels, k),
		DaviesBouldin:    daviesBouldin(X, f.labels, f.centroids),
		CalinskiHarabasz: calinskiHarabasz(X, f.labels, f.centroids),
	}
}

// selectFeatures keeps the score columns and the topN highest-variance
// proportion columns, preserving manifest order for the scores and
// ranking order for the proportions.
func selectFeatures(features []*model.CustomerFeatures, manifest model.FeatureManifest, topN int) model.FeatureManifest {
	selected := model.FeatureManifest{
		ScoreColumns: manifest.ScoreColumns,
		Binning:      manifest.Binning,
	}
	if topN <= 0 || len(manifest.ProportionColumns) == 0 {
		return selected
	}

	type ranked struct {
		column   string
		variance float64
	}
	values := make([]float64, len(features))
	rankings := make([]ranked, 0, len(manifest.ProportionColumns))
	for _, col := range manifest.ProportionColumns {
		category := col[len("prop_"):]
		for i, f := range features {
			values[i] = f.Proportions[category]
		}
		rankings = append(rankings, ranked{column: col, variance: stat.PopVariance(values, nil)})
	}

	sort.SliceStable(rankings, func(a, b int) bool {
		if rankings[a].variance != rankings[b].variance {
			return rankings[a].variance > rankings[b].variance
		}
		return rankings[a].column < rankings[b].column
	})

	if topN > len(rankings) {
		topN = len(rankings)
	}
	for _, r := range rankings[:topN] {
		selected.ProportionColumns = append(selected.ProportionColumns, r.column)
	}
	return selected
}

func buildMatrix(features []*model.CustomerFeatures, manifest model.FeatureManifest) [][]float64 {
	X := make([][]float64, len(features))
	for i, f := range features {
		row := make([]float64, 0, len(manifest.ScoreColumns)+len(manifest.ProportionColumns))
		for _, col := range manifest.ScoreColumns {
			switch col {
			case "r_score":
				row = append(row, float64(f.RScore))
			case "f_score":
				row = append(row, float64(f.FScore))
			case "m_score":
				row = append(row, float64(f.MScore))
			}
		}
		for _, col := range manifest.ProportionColumns {
			row = append(row, f.Proportions[col[len("prop_"):]])
		}
		X[i] = row
	}
	return X
}
